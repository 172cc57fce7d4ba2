// Package domain contains core domain types for the assessment relay.
package domain

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// Tier is the concern level derived from an assessment score.
type Tier string

const (
	// TierLow indicates few signs.
	TierLow Tier = "low"
	// TierModerate indicates some signs; specialist follow-up is recommended.
	TierModerate Tier = "moderate"
	// TierHigh indicates many signs; prompt professional evaluation is recommended.
	TierHigh Tier = "high"
)

// Tiers lists every tier from lowest to highest concern.
var Tiers = []Tier{TierLow, TierModerate, TierHigh}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return slices.Contains(Tiers, t)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an email address for use as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Classification is the outcome of scoring a set of answers.
type Classification struct {
	Score   int    `json:"score"`
	Tier    Tier   `json:"tier"`
	Label   string `json:"tier_label"`
	Message string `json:"message"`
}

// StoredResult is a classified assessment kept for one email address.
type StoredResult struct {
	Email        string    `json:"email"`
	GuardianName string    `json:"guardian_name"`
	ChildName    string    `json:"child_name,omitempty"`
	ChildAge     string    `json:"child_age"`
	Answers      []string  `json:"answers"`
	Score        int       `json:"score"`
	Tier         Tier      `json:"tier"`
	TierLabel    string    `json:"tier_label"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

// Apply copies a classification onto the result.
func (r *StoredResult) Apply(c Classification) {
	r.Score = c.Score
	r.Tier = c.Tier
	r.TierLabel = c.Label
	r.Message = c.Message
}

// Validate checks the fields a store requires before accepting the result.
func (r *StoredResult) Validate() error {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return &ValidationError{Field: "email", Message: "is required"}
	case !IsValidEmail(r.Email):
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	case strings.TrimSpace(r.GuardianName) == "":
		return &ValidationError{Field: "guardian_name", Message: "is required"}
	case strings.TrimSpace(r.ChildAge) == "":
		return &ValidationError{Field: "child_age", Message: "is required"}
	case !r.Tier.Valid():
		return &ValidationError{Field: "answers", Message: "answers or score are required"}
	case r.Score < 0:
		return &ValidationError{Field: "score", Message: "must not be negative"}
	}
	return nil
}

// Clone returns a deep copy of the result.
func (r *StoredResult) Clone() *StoredResult {
	c := *r
	if r.Answers != nil {
		c.Answers = slices.Clone(r.Answers)
	}
	return &c
}

// ExpiresAt returns when the result stops being retrievable.
func (r *StoredResult) ExpiresAt(ttl time.Duration) time.Time {
	return r.CreatedAt.Add(ttl)
}

// Expired reports whether the result has outlived ttl at now.
func (r *StoredResult) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.CreatedAt) >= ttl
}
