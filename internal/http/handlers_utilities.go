package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"facturi/internal/core"
)

type utilityRequest struct {
	CategoryID  int64           `json:"categoryId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UtilityType string          `json:"utilityType"`
	Config      json.RawMessage `json:"config"`
}

type utilityUpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// utilityWithStats enriches a utility with its transaction history.
type utilityWithStats struct {
	core.Utility
	Transactions []core.Transaction `json:"transactions"`
	TotalAmount  float64            `json:"totalAmount"`
}

func (s *Server) handleCreateUtility(w http.ResponseWriter, r *http.Request) {
	var req utilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	// Type defaults to simple when omitted.
	utype := core.UtilityType(req.UtilityType)
	if req.UtilityType == "" {
		utype = core.UtilitySimple
	}

	cfg, err := core.ParseConfig(utype, req.Config)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utility := core.Utility{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Type:        utype,
		Config:      cfg,
	}
	if err := utility.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.repo.CreateUtility(r.Context(), utility)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListUtilities(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := s.repo.GetCategory(r.Context(), categoryID); err != nil {
		writeError(w, r, err)
		return
	}

	utilities, err := s.repo.ListUtilitiesByCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	enriched := make([]utilityWithStats, 0, len(utilities))
	for _, utility := range utilities {
		transactions, err := s.repo.ListTransactionsByUtility(r.Context(), utility.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if transactions == nil {
			transactions = []core.Transaction{}
		}
		total, err := s.repo.SumTransactionsByUtility(r.Context(), utility.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		enriched = append(enriched, utilityWithStats{
			Utility:      utility,
			Transactions: transactions,
			TotalAmount:  total,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"utilities": enriched})
}

func (s *Server) handleUpdateUtility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req utilityUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == "" {
		writeError(w, r, fmt.Errorf("%w: utility name cannot be empty", core.ErrInvalidArgument))
		return
	}

	updated, err := s.repo.UpdateUtility(r.Context(), id, req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteUtility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Drop the logo file alongside the cascading delete.
	utility, err := s.repo.GetUtility(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.repo.DeleteUtility(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	if utility.LogoURL != "" {
		if err := s.logoStore.Remove(utility.LogoURL); err != nil {
			writeError(w, r, err)
			return
		}
	}

	s.reports.Invalidate()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type logoRequest struct {
	LogoData string `json:"logoData"`
}

func (s *Server) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req logoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	utility, err := s.repo.GetUtility(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logoURL, err := s.logoStore.Save(id, req.LogoData)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.repo.SetUtilityLogo(r.Context(), id, logoURL); err != nil {
		writeError(w, r, err)
		return
	}

	// Replaced logos don't pile up on disk.
	if utility.LogoURL != "" && utility.LogoURL != logoURL {
		if err := s.logoStore.Remove(utility.LogoURL); err != nil {
			writeError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"logoUrl": logoURL})
}

func (s *Server) handleDeleteLogo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utility, err := s.repo.GetUtility(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if utility.LogoURL != "" {
		if err := s.logoStore.Remove(utility.LogoURL); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.repo.SetUtilityLogo(r.Context(), id, ""); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
