package main

import (
	"github.com/charmbracelet/lipgloss"

	"persona-chat/internal/domain/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E60012")).
			MarginBottom(1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ADD8"))
)

// personaStyle renders a speaker label in the persona's accent color.
func personaStyle(p model.Persona) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	if p.AccentColor != "" {
		s = s.Foreground(lipgloss.Color(p.AccentColor))
	}
	return s
}
