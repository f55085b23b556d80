package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"persona-chat/internal/config"
	"persona-chat/internal/domain/model"
	"persona-chat/internal/persona"
)

func newPersonasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List selectable personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := persona.NewCatalog()
			// an invalid config still lists the built-in table
			if cfg, err := config.LoadConfig(cfgPath, devMode); err == nil && cfg.PersonasFile != "" {
				if catalog, err = persona.LoadCatalog(cfg.PersonasFile); err != nil {
					return err
				}
			}
			printPersonas(cmd.OutOrStdout(), catalog, catalog.Default())
			return nil
		},
	}
}

func printPersonas(w io.Writer, catalog *persona.Catalog, current model.PersonaID) {
	for _, p := range catalog.All() {
		mark := " "
		if p.ID == current {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s %s\n", mark, personaStyle(p).Render(p.DisplayName), dimStyle.Render("("+string(p.ID)+")"))
	}
}
