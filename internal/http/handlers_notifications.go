package http

import (
	"net/http"

	"facturi/internal/core"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.payments.UnreadNotifications(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notifications == nil {
		notifications = []core.PaymentNotification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.payments.MarkNotificationRead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
