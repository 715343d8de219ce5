package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wonder-codes/echo-repo/internal/apperr"
	"github.com/wonder-codes/echo-repo/internal/models"
	"github.com/wonder-codes/echo-repo/internal/services"
)

const (
	msgInvalidBody      = "Invalid request body"
	msgBodyTooLarge     = "Request body too large"
	msgNoInput          = "No code or repository URL provided"
	msgInvalidReference = "Invalid repository URL"
	msgGenerateFailed   = "Failed to generate README"
	msgHistoryFailed    = "Failed to fetch history"
	msgInvalidHistory   = "Invalid chat history"
	msgChatFailed       = "Failed to process chat"
)

type generateRequest struct {
	Code                string `json:"code"`
	RepositoryReference string `json:"repositoryReference"`
	// RepoURL is the field name older clients send.
	RepoURL string `json:"repoUrl"`
}

type generateResponse struct {
	Readme string `json:"readme"`
	ID     string `json:"id"`
}

type chatRequest struct {
	Message string               `json:"message"`
	Code    string               `json:"code"`
	History []models.ChatMessage `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("EchoRepo API is running"))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}
	ref := req.RepositoryReference
	if ref == "" {
		ref = req.RepoURL
	}

	readme, err := s.readmes.Generate(r.Context(), services.GenerateRequest{
		Code:                req.Code,
		RepositoryReference: ref,
	})
	if err != nil {
		msg := msgGenerateFailed
		switch apperr.KindOf(err) {
		case apperr.ErrInvalidInput:
			msg = msgNoInput
		case apperr.ErrInvalidRepositoryReference:
			msg = msgInvalidReference
		}
		s.fail(w, r, err, msg)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Readme: readme.Content, ID: readme.ID})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	readmes, err := s.readmes.History(r.Context(), 0)
	if err != nil {
		s.fail(w, r, err, msgHistoryFailed)
		return
	}
	out := make([]models.ReadmeSummary, 0, len(readmes))
	for _, readme := range readmes {
		out = append(out, readme.Summary())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	reply, err := s.readmes.Chat(r.Context(), services.ChatRequest{
		Message: req.Message,
		Code:    req.Code,
		History: req.History,
	})
	if err != nil {
		msg := msgChatFailed
		if apperr.KindOf(err) == apperr.ErrInvalidInput {
			msg = msgInvalidHistory
		}
		s.fail(w, r, err, msg)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// decode reads a JSON body into dst, answering the request itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			zerolog.Ctx(r.Context()).Warn().Int64("limit", tooLarge.Limit).Msg("request body too large")
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: msgBodyTooLarge})
			return false
		}
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("malformed request body")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return false
	}
	return true
}

// fail logs the cause and answers with the route's generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := apperr.HTTPStatus(err)
	event := zerolog.Ctx(r.Context()).Error()
	if status < http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Warn()
	}
	event.Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
