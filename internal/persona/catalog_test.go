package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain/model"
)

func TestCatalog_IsTotal(t *testing.T) {
	c := NewCatalog()
	for _, id := range []model.PersonaID{model.PersonaAnn, model.PersonaRyuji, model.PersonaYusuke, model.PersonaNarrator} {
		p := c.Get(id)
		assert.Equal(t, id, p.ID)
		assert.NotEmpty(t, p.SystemPrompt)
		assert.NotEmpty(t, p.InformalName)
	}

	unknown := c.Get("Morgana")
	assert.Equal(t, model.PersonaNarrator, unknown.ID)
	assert.Len(t, c.All(), 4)
}

func TestCatalog_NarratorIsGeneric(t *testing.T) {
	c := NewCatalog()
	n := c.Get(model.PersonaNarrator)
	assert.Empty(t, n.Avatar)
	assert.Equal(t, "Ren", n.DisplayName)
	assert.Equal(t, "Ann", n.InformalName)
	assert.Equal(t, "You are a helpful AI assistant.", c.ContextPromptFor(model.PersonaNarrator))
	assert.True(t, strings.HasPrefix(c.ContextPromptFor(model.PersonaRyuji), "You are Ryuji Sakamoto"))
	assert.Equal(t, model.PersonaAnn, c.Default())
}

func TestCatalog_Parse(t *testing.T) {
	c := NewCatalog()
	id, ok := c.Parse("  yusuke ")
	require.True(t, ok)
	assert.Equal(t, model.PersonaYusuke, id)

	_, ok = c.Parse("makoto")
	assert.False(t, ok)
	assert.Equal(t, []string{"Ann", "Ren", "Ryuji", "Yusuke"}, c.IDs())
}

func TestLoadCatalog_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	body := `
default: ryuji
personas:
  - id: Ann
    system_prompt: "You are Panther."
  - id: Makoto
    display_name: MAKOTO
    accent_color: "#B33A3A"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, "You are Panther.", c.ContextPromptFor(model.PersonaAnn))
	assert.Equal(t, "#FE93C9", c.Get(model.PersonaAnn).AccentColor)

	mk := c.Get("Makoto")
	assert.Equal(t, "Makoto", mk.DisplayName)
	assert.Equal(t, "Makoto", mk.InformalName)
	assert.Equal(t, narratorPrompt, mk.SystemPrompt)
	assert.Equal(t, model.PersonaRyuji, c.Default())
	assert.Len(t, c.All(), 5)
}

func TestLoadCatalog_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("personas:\n  - display_name: x\n"), 0o600))
	_, err = LoadCatalog(bad)
	assert.Error(t, err)

	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, c.All(), 4)
}
