package usecase

import (
	"strings"

	"persona-chat/internal/domain/model"
)

// FallbackReply replaces a completion that carried no text.
const FallbackReply = "I'm sorry, I couldn't generate a response."

var nameQueries = []string{"name", "who are you", "what's your name", "who is this", "introduce yourself"}

func isNameQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, q := range nameQueries {
		if strings.Contains(lower, q) {
			return true
		}
	}
	return false
}

func nameReply(p model.Persona) string {
	return "Hi! My name is " + p.InformalName + ". Nice to meet you!"
}

func buildPrompt(context, text string) string {
	return context + "\n\nUser: " + text
}
