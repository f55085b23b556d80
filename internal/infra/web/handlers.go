package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type sessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Persona      string    `json:"persona"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	Display      string    `json:"display_time"`
}

// sessionsListHandler serves stored sessions, most recent first.
func sessionsListHandler(sessions SessionAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := sessions.ListSessions(r.Context())
		if err != nil {
			http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
			return
		}
		out := make([]sessionSummary, 0, len(list))
		for _, s := range list {
			out = append(out, sessionSummary{
				ID:           s.ID,
				Title:        s.Title,
				Persona:      string(s.SelectedPersona),
				MessageCount: len(s.Messages),
				CreatedAt:    s.CreatedAt,
				Display:      s.FormatTimestamp(),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func sessionsDeleteHandler(sessions SessionAdmin, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := sessions.DeleteSession(r.Context(), id); err != nil {
			log.Error().Err(err).Str("session_id", id).Msg("admin delete session")
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
