// Package persona holds the static table of selectable characters.
package persona

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"persona-chat/internal/domain/model"
)

const narratorPrompt = "You are a helpful AI assistant."

var builtin = []model.Persona{
	{
		ID:           model.PersonaAnn,
		DisplayName:  "Ann",
		InformalName: "Ann",
		AccentColor:  "#FE93C9",
		Avatar:       "ann",
		SystemPrompt: "You are Ann Takamaki from Persona 5. You're a kind, confident, and fashionable girl who cares deeply about your friends. Respond as Ann would, with her personality and speaking style.",
	},
	{
		ID:           model.PersonaRyuji,
		DisplayName:  "Ryuji",
		InformalName: "Ryuji",
		AccentColor:  "#F0EA40",
		Avatar:       "ryuji",
		SystemPrompt: "You are Ryuji Sakamoto from Persona 5. You're energetic, loyal, and sometimes hot-headed but always have your friends' backs. Respond as Ryuji would, with his casual and enthusiastic speaking style.",
	},
	{
		ID:           model.PersonaYusuke,
		DisplayName:  "Yusuke",
		InformalName: "Yusuke",
		AccentColor:  "#1BC8F9",
		Avatar:       "yusuke",
		SystemPrompt: "You are Yusuke Kitagawa from Persona 5. You're an artistic, eccentric, and thoughtful person who often speaks in a refined manner. Respond as Yusuke would, with his elegant and sometimes dramatic speaking style.",
	},
	{
		ID:           model.PersonaNarrator,
		DisplayName:  "Ren",
		InformalName: "Ann", // the generic assistant introduces itself as Ann
		SystemPrompt: narratorPrompt,
	},
}

// Catalog is an immutable PersonaID -> Persona table.
type Catalog struct {
	order    []model.PersonaID
	byID     map[model.PersonaID]model.Persona
	fallback model.PersonaID
	def      model.PersonaID
}

// NewCatalog returns the built-in table.
func NewCatalog() *Catalog {
	c := &Catalog{
		byID:     make(map[model.PersonaID]model.Persona, len(builtin)),
		fallback: model.PersonaNarrator,
		def:      model.PersonaAnn,
	}
	for _, p := range builtin {
		c.put(p)
	}
	return c
}

func (c *Catalog) put(p model.Persona) {
	if _, ok := c.byID[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	p.DisplayName = model.DisplayName(p.DisplayName)
	c.byID[p.ID] = p
}

// All returns every persona in catalog order.
func (c *Catalog) All() []model.Persona {
	out := make([]model.Persona, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Get never fails: ids without an entry resolve to the narrator.
func (c *Catalog) Get(id model.PersonaID) model.Persona {
	if p, ok := c.byID[id]; ok {
		return p
	}
	return c.byID[c.fallback]
}

func (c *Catalog) ContextPromptFor(id model.PersonaID) string {
	return c.Get(id).SystemPrompt
}

// Default is the persona a fresh conversation starts with.
func (c *Catalog) Default() model.PersonaID { return c.def }

// Parse resolves a case-insensitive persona id or display name.
func (c *Catalog) Parse(name string) (model.PersonaID, bool) {
	name = strings.TrimSpace(name)
	for _, id := range c.order {
		p := c.byID[id]
		if strings.EqualFold(string(id), name) || strings.EqualFold(p.DisplayName, name) {
			return id, true
		}
	}
	return "", false
}

// ---- YAML overlay ----

type personaFile struct {
	Default  string         `yaml:"default"`
	Personas []personaEntry `yaml:"personas"`
}

type personaEntry struct {
	ID           string `yaml:"id"`
	DisplayName  string `yaml:"display_name"`
	InformalName string `yaml:"informal_name"`
	AccentColor  string `yaml:"accent_color"`
	Avatar       string `yaml:"avatar"`
	SystemPrompt string `yaml:"system_prompt"`
}

// LoadCatalog reads an optional YAML overlay on top of the built-in table.
// Entries with a known id override non-empty fields; new ids are appended.
// An empty path returns the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	c := NewCatalog()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas: %w", err)
	}
	var f personaFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse personas: %w", err)
	}
	for _, e := range f.Personas {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("parse personas: entry without id")
		}
		id := model.PersonaID(e.ID)
		p, ok := c.byID[id]
		if !ok {
			p = model.Persona{ID: id, DisplayName: e.ID, InformalName: e.ID}
		}
		overlay(&p, e)
		if p.SystemPrompt == "" {
			p.SystemPrompt = narratorPrompt
		}
		c.put(p)
	}
	if f.Default != "" {
		id, ok := c.Parse(f.Default)
		if !ok {
			return nil, fmt.Errorf("parse personas: unknown default %q", f.Default)
		}
		c.def = id
	}
	return c, nil
}

func overlay(p *model.Persona, e personaEntry) {
	if e.DisplayName != "" {
		p.DisplayName = e.DisplayName
	}
	if e.InformalName != "" {
		p.InformalName = e.InformalName
	}
	if e.AccentColor != "" {
		p.AccentColor = e.AccentColor
	}
	if e.Avatar != "" {
		p.Avatar = e.Avatar
	}
	if e.SystemPrompt != "" {
		p.SystemPrompt = e.SystemPrompt
	}
}

// IDs lists ids sorted alphabetically; handy for help output.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, string(id))
	}
	sort.Strings(out)
	return out
}
