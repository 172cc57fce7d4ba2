package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/assessment-relay/internal/assessment"
	"github.com/ashureev/assessment-relay/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ResultService is the subset of assessment.Service the handlers need.
type ResultService interface {
	SaveResult(ctx context.Context, req assessment.SaveRequest) (*domain.StoredResult, error)
	FetchResult(ctx context.Context, email string) (*domain.StoredResult, error)
}

// ResultsHandler serves the save and lookup endpoints.
type ResultsHandler struct {
	svc ResultService
	ttl time.Duration
}

// NewResultsHandler creates a results handler. ttl is only used to report expires_at.
func NewResultsHandler(svc ResultService, ttl time.Duration) *ResultsHandler {
	return &ResultsHandler{svc: svc, ttl: ttl}
}

// RegisterRoutes registers result routes.
func (h *ResultsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/save-result", h.SaveResult)
	r.Get("/api/get-result", h.GetResult)
}

// answerList accepts answer tokens as strings or booleans.
type answerList []string

func (a *answerList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("answers must be an array: %w", err)
	}
	out := make([]string, 0, len(raw))
	for i, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var b bool
		if err := json.Unmarshal(item, &b); err != nil {
			return fmt.Errorf("answers[%d] must be a string or boolean", i)
		}
		if b {
			out = append(out, "yes")
		} else {
			out = append(out, "no")
		}
	}
	*a = out
	return nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("must be a string or number")
	}
	*f = flexString(n.String())
	return nil
}

type saveResultRequest struct {
	Email        string     `json:"email"`
	GuardianName string     `json:"guardian_name"`
	ChildName    string     `json:"child_name"`
	ChildAge     flexString `json:"child_age"`
	Answers      answerList `json:"answers"`
	Score        *int       `json:"score"`
}

type resultResponse struct {
	*domain.StoredResult
	ExpiresAt time.Time `json:"expires_at"`
}

// SaveResult classifies and stores a submission.
func (h *ResultsHandler) SaveResult(w http.ResponseWriter, r *http.Request) {
	var req saveResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, statusFor(err), "invalid request body")
		return
	}

	saved, err := h.svc.SaveResult(r.Context(), assessment.SaveRequest{
		Email:        req.Email,
		GuardianName: req.GuardianName,
		ChildName:    req.ChildName,
		ChildAge:     string(req.ChildAge),
		Answers:      req.Answers,
		Score:        req.Score,
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("Failed to save result", "error", err)
			Error(w, status, "failed to save result")
			return
		}
		Error(w, status, err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Dados salvos com sucesso",
		"result":  h.response(saved),
	})
}

// GetResult returns the live result for the email query parameter.
func (h *ResultsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		Error(w, http.StatusBadRequest, "email is required")
		return
	}

	result, err := h.svc.FetchResult(r.Context(), email)
	if err != nil {
		status := statusFor(err)
		switch status {
		case http.StatusNotFound:
			Error(w, status, "result not found")
		case http.StatusInternalServerError:
			slog.Error("Failed to fetch result", "email", email, "error", err)
			Error(w, status, "failed to fetch result")
		default:
			Error(w, status, err.Error())
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Result-TTL", strconv.FormatInt(int64(h.ttl.Seconds()), 10))
	JSON(w, http.StatusOK, h.response(result))
}

func (h *ResultsHandler) response(r *domain.StoredResult) resultResponse {
	return resultResponse{StoredResult: r, ExpiresAt: r.ExpiresAt(h.ttl)}
}
