package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kjannette/coinchat/internal/chat"
	"github.com/kjannette/coinchat/internal/models"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type portfolioResponse struct {
	SessionID string           `json:"sessionId"`
	Holdings  []models.Holding `json:"holdings"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("Welcome to the backend server!"))
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"status":  "error",
		"message": "Route not found",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := s.chat.Handle(r.Context(), req.Message, req.SessionID)
	switch {
	case errors.Is(err, chat.ErrMessageRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrServerError):
		writeJSON(w, http.StatusInternalServerError, resp)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	writeJSON(w, http.StatusOK, portfolioResponse{
		SessionID: sessionID,
		Holdings:  s.store.GetPortfolio(sessionID),
	})
}

func (s *Server) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.store.RemoveHolding(vars["sessionId"], vars["coin"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearPortfolio(w http.ResponseWriter, r *http.Request) {
	s.store.ClearPortfolio(mux.Vars(r)["sessionId"])
	w.WriteHeader(http.StatusNoContent)
}
