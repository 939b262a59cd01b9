package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/michaelbrown/crucible/internal/runner"
	"github.com/michaelbrown/crucible/internal/storage"
)

// --- JSON envelope helpers ---

// envelope is the uniform response shape: success plus either data or error.
// Sandbox internals never reach it; errors carry the service-level message
// only.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: v})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// --- Code execution handlers ---

type executeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Input    string `json:"input"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	res := s.svc.Execute(r.Context(), runner.ExecutionRequest{
		Code:     req.Code,
		Language: runner.Language(req.Language),
		Input:    req.Input,
	})

	s.recordRun(r.Context(), res)
	writeData(w, http.StatusOK, res)
}

// recordRun appends an execution audit entry. Audit failures are logged, not
// surfaced: the execution result already belongs to the caller.
func (s *Server) recordRun(ctx context.Context, res runner.ExecutionResult) {
	err := s.store.RecordRun(ctx, &storage.Run{
		ID:         uuid.New().String(),
		Language:   res.Language,
		Success:    res.Success,
		DurationMs: res.ExecutionTimeMs,
	})
	if err != nil {
		s.logger.WithError(err).Warn("recording run")
	}
}

type validateRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res := s.svc.Validate(req.Code, runner.Language(req.Language))
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, err := s.svc.Format(req.Code, runner.Language(req.Language))
	if err != nil {
		// Format is the one hard-failing operation (malformed JSON,
		// unsupported language); the parser message is surfaced verbatim.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.svc.ListLanguages())
}

type templateResponse struct {
	Language runner.Language `json:"language"`
	Template string          `json:"template"`
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	lang, err := runner.ParseLanguage(chi.URLParam(r, "language"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	snippet, err := s.svc.Template(lang)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runner.ErrTemplateNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	writeData(w, http.StatusOK, templateResponse{Language: lang, Template: snippet})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeData(w, http.StatusOK, runs)
}
