package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PersonaID identifies a selectable character.
type PersonaID string

const (
	PersonaAnn    PersonaID = "Ann"
	PersonaRyuji  PersonaID = "Ryuji"
	PersonaYusuke PersonaID = "Yusuke"
	// PersonaNarrator is the generic assistant identity. Stored as "Ren" for
	// compatibility with existing chat history records.
	PersonaNarrator PersonaID = "Ren"
)

// Persona is the static description of a character.
type Persona struct {
	ID           PersonaID
	DisplayName  string
	InformalName string
	AccentColor  string // "#RRGGBB", empty when unspecified
	Avatar       string // empty when the persona has no avatar
	SystemPrompt string
}

// DisplayName upper-cases the first letter and lower-cases the rest.
func DisplayName(name string) string {
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}
