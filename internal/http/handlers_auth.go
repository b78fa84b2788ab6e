package http

import (
	"encoding/base64"
	"net/http"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// handleLogin validates credentials and hands back the basic token the
// client sends on subsequent requests.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.verifier.Verify(req.Username, req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	token := base64.StdEncoding.EncodeToString([]byte(req.Username + ":" + req.Password))
	writeJSON(w, http.StatusOK, loginResponse{
		Token:    token,
		Username: req.Username,
	})
}
