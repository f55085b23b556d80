package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"persona-chat/internal/domain/model"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect stored conversations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())
			sessions, err := a.chat.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			printSessions(cmd.OutOrStdout(), sessions, "")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())
			if err := a.chat.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return nil
		},
	})
	return cmd
}

func printSessions(w io.Writer, sessions []*model.ConversationSession, active string) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No stored conversations."))
		return
	}
	for i, s := range sessions {
		mark := " "
		if s.ID == active {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%2d. %s  %s  %s %s\n",
			mark, i+1,
			idStyle.Render(s.ID),
			dimStyle.Render(s.FormatTimestamp()),
			s.Title,
			dimStyle.Render(fmt.Sprintf("(%s, %d messages)", s.SelectedPersona, len(s.Messages))),
		)
	}
}
