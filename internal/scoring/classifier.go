package scoring

import (
	"fmt"
	"strings"

	"github.com/ashureev/assessment-relay/internal/domain"
)

// Input is what the classifier scores. Answers take precedence over Score;
// a nil Answers slice means no answers were supplied, an empty one scores 0.
type Input struct {
	Answers []string
	Score   *int
}

// Classifier maps answers or a raw score to a classification under a profile.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	profile     Profile
	affirmative map[string]struct{}
}

// NewClassifier validates p and builds a classifier for it.
func NewClassifier(p Profile) (*Classifier, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	affirmative := make(map[string]struct{}, len(p.Affirmative))
	for _, a := range p.Affirmative {
		if tok := normalizeToken(a); tok != "" {
			affirmative[tok] = struct{}{}
		}
	}
	return &Classifier{profile: p, affirmative: affirmative}, nil
}

// Profile returns the profile the classifier was built with.
func (c *Classifier) Profile() Profile {
	return c.profile
}

// Classify scores in and resolves its tier.
func (c *Classifier) Classify(in Input) (domain.Classification, error) {
	var score int
	switch {
	case in.Answers != nil:
		if len(in.Answers) > c.profile.MaxAnswers {
			return domain.Classification{}, fmt.Errorf("%w: %d answers exceed the maximum of %d",
				domain.ErrInvalidInput, len(in.Answers), c.profile.MaxAnswers)
		}
		score = c.CountAffirmative(in.Answers)
	case in.Score != nil:
		score = *in.Score
		if score < 0 || score > c.profile.MaxAnswers {
			return domain.Classification{}, fmt.Errorf("%w: score %d outside [0, %d]",
				domain.ErrInvalidInput, score, c.profile.MaxAnswers)
		}
	default:
		return domain.Classification{}, fmt.Errorf("%w: neither answers nor score supplied", domain.ErrInvalidInput)
	}

	tier := c.Tier(score)
	text := c.profile.Tiers[tier]
	return domain.Classification{
		Score:   score,
		Tier:    tier,
		Label:   text.Label,
		Message: text.Message,
	}, nil
}

// CountAffirmative counts the answers that match an affirmative token.
func (c *Classifier) CountAffirmative(answers []string) int {
	n := 0
	for _, a := range answers {
		if _, ok := c.affirmative[normalizeToken(a)]; ok {
			n++
		}
	}
	return n
}

// Tier resolves a score. A score equal to a threshold belongs to the lower tier.
func (c *Classifier) Tier(score int) domain.Tier {
	switch {
	case score <= c.profile.LowMax:
		return domain.TierLow
	case score <= c.profile.ModerateMax:
		return domain.TierModerate
	default:
		return domain.TierHigh
	}
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
