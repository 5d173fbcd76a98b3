package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/finchat/internal/assistant"
	"github.com/sells-group/finchat/internal/model"
	"github.com/sells-group/finchat/internal/prompt"
	"github.com/sells-group/finchat/internal/resilience"
)

type questionRequest struct {
	Question string `json:"question"`
}

type promptRequest struct {
	Category model.Category `json:"category"`
	Tier     model.Tier     `json:"tier"`
	Question string         `json:"question,omitempty"`
	Fields   prompt.Fields  `json:"fields"`
}

type askRequest struct {
	Question      string        `json:"question"`
	Tier          model.Tier    `json:"tier"`
	Fields        prompt.Fields `json:"fields"`
	IncludePrompt bool          `json:"include_prompt"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": s.assistant.Catalog().Templates()})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decode(w, r, &req) {
		return
	}
	cat, err := s.assistant.Classify(r.Context(), req.Question)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": cat})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decode(w, r, &req) {
		return
	}
	entity, err := s.assistant.Extract(r.Context(), req.Question)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !decode(w, r, &req) {
		return
	}
	fields := req.Fields.Merge(nil)
	if req.Question != "" {
		fields["question"] = model.NormalizeQuestion(req.Question)
	}
	filled, err := s.assistant.BuildPrompt(req.Category, req.Tier, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, _ := s.assistant.Catalog().Select(req.Category, req.Tier)
	writeJSON(w, http.StatusOK, map[string]any{
		"template_id": t.ID,
		"version":     t.Version,
		"prompt":      filled,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decode(w, r, &req) {
		return
	}
	ans, err := s.assistant.Answer(r.Context(), assistant.AnswerRequest{
		Question: req.Question,
		Tier:     req.Tier,
		Fields:   req.Fields,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !req.IncludePrompt {
		ans.Prompt = ""
	}
	writeJSON(w, http.StatusOK, ans)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, model.ErrUnknownTier) {
			writeError(w, r, err)
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:     "invalid request body",
			Kind:      "bad_request",
			RequestID: RequestID(r.Context()),
		})
		return false
	}
	return true
}

// classify maps an error to an HTTP status and a stable kind string.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrUnknownCategory):
		return http.StatusBadRequest, "unknown_category"
	case errors.Is(err, model.ErrUnknownTier):
		return http.StatusBadRequest, "unknown_tier"
	case errors.Is(err, prompt.ErrMissingPlaceholder):
		return http.StatusBadRequest, "missing_placeholder"
	case errors.Is(err, assistant.ErrEmptyQuestion):
		return http.StatusBadRequest, "empty_question"
	case errors.Is(err, assistant.ErrMalformedClassification):
		return http.StatusBadGateway, "malformed_classification"
	case errors.Is(err, assistant.ErrMalformedExtraction):
		return http.StatusBadGateway, "malformed_extraction"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case resilience.IsTransient(err):
		return http.StatusBadGateway, "upstream"
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Kind:      kind,
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}
