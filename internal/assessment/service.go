// Package assessment exposes the two operations collaborators use:
// saving a classified submission and fetching it back.
package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/assessment-relay/internal/domain"
	"github.com/ashureev/assessment-relay/internal/scoring"
	"github.com/ashureev/assessment-relay/internal/store"
)

// SaveRequest is an assessment submission. Answers == nil means the caller
// supplied no answers; Score == nil means no precomputed score.
type SaveRequest struct {
	Email        string
	GuardianName string
	ChildName    string
	ChildAge     string
	Answers      []string
	Score        *int
}

// Service classifies submissions and keeps them in a result store.
type Service struct {
	classifier *scoring.Classifier
	results    store.ResultStore
	logger     *slog.Logger
}

// NewService creates a service over the given classifier and store.
func NewService(classifier *scoring.Classifier, results store.ResultStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{classifier: classifier, results: results, logger: logger}
}

// Classifier returns the classifier used for new submissions.
func (s *Service) Classifier() *scoring.Classifier {
	return s.classifier
}

// Store returns the underlying result store.
func (s *Service) Store() store.ResultStore {
	return s.results
}

// SaveResult validates req, classifies it and stores the result, replacing any
// earlier submission for the same email.
func (s *Service) SaveResult(ctx context.Context, req SaveRequest) (*domain.StoredResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	classification, err := s.classifier.Classify(scoring.Input{Answers: req.Answers, Score: req.Score})
	if err != nil {
		return nil, err
	}

	result := &domain.StoredResult{
		Email:        domain.NormalizeEmail(req.Email),
		GuardianName: strings.TrimSpace(req.GuardianName),
		ChildName:    strings.TrimSpace(req.ChildName),
		ChildAge:     strings.TrimSpace(req.ChildAge),
		Answers:      req.Answers,
	}
	result.Apply(classification)

	if err := s.results.Put(ctx, result); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	// Put stamps CreatedAt on its own copy; read it back for the caller.
	saved, err := s.results.Get(ctx, result.Email)
	if err != nil {
		return nil, fmt.Errorf("read back result: %w", err)
	}
	if saved == nil {
		saved = result
	}

	s.logger.Info("Result saved",
		"email", saved.Email,
		"score", saved.Score,
		"tier", saved.Tier)
	return saved, nil
}

// FetchResult returns the live result for email, or domain.ErrNotFound when it
// was never saved or has expired.
func (s *Service) FetchResult(ctx context.Context, email string) (*domain.StoredResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, &domain.ValidationError{Field: "email", Message: "is required"}
	}

	result, err := s.results.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	if result == nil {
		return nil, domain.ErrNotFound
	}
	return result, nil
}

func validateRequest(req SaveRequest) error {
	email := domain.NormalizeEmail(req.Email)
	switch {
	case email == "":
		return &domain.ValidationError{Field: "email", Message: "is required"}
	case !domain.IsValidEmail(email):
		return &domain.ValidationError{Field: "email", Message: "is not a valid address"}
	case strings.TrimSpace(req.GuardianName) == "":
		return &domain.ValidationError{Field: "guardian_name", Message: "is required"}
	case strings.TrimSpace(req.ChildAge) == "":
		return &domain.ValidationError{Field: "child_age", Message: "is required"}
	case req.Answers == nil && req.Score == nil:
		return &domain.ValidationError{Field: "answers", Message: "answers or score are required"}
	}
	return nil
}
