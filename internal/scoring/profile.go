// Package scoring turns assessment answers into a score and a concern tier.
package scoring

import (
	"fmt"
	"os"
	"strings"

	"github.com/ashureev/assessment-relay/internal/domain"
	"gopkg.in/yaml.v3"
)

// TierText is the user-facing wording of a tier.
type TierText struct {
	Label   string `yaml:"label"`
	Message string `yaml:"message"`
}

// Profile describes one deployment's scale: thresholds, answer tokens and wording.
//
// Scores up to LowMax are low, up to ModerateMax moderate, anything above high.
type Profile struct {
	Name        string                   `yaml:"name"`
	LowMax      int                      `yaml:"low_max"`
	ModerateMax int                      `yaml:"moderate_max"`
	MaxAnswers  int                      `yaml:"max_answers"`
	Affirmative []string                 `yaml:"affirmative"`
	Tiers       map[domain.Tier]TierText `yaml:"tiers"`
}

// DefaultProfile returns the 40-question scale with 10/24 thresholds.
func DefaultProfile() Profile {
	return Profile{
		Name:        "default",
		LowMax:      10,
		ModerateMax: 24,
		MaxAnswers:  40,
		Affirmative: []string{"sim", "yes"},
		Tiers: map[domain.Tier]TierText{
			domain.TierLow: {
				Label:   "Baixo",
				Message: "Com base nas respostas fornecidas, a criança apresenta poucos sinais típicos do espectro autista. Este é um resultado positivo, mas lembre-se de que esta ferramenta é educativa e não substitui uma avaliação profissional.",
			},
			domain.TierModerate: {
				Label:   "Moderado",
				Message: "As respostas indicam alguns sinais que podem estar relacionados ao espectro autista. Recomendamos buscar orientação de um profissional especializado (pediatra, neurologista ou psicólogo infantil) para uma avaliação mais detalhada.",
			},
			domain.TierHigh: {
				Label:   "Alto",
				Message: "As respostas indicam vários sinais que podem estar associados ao espectro autista. É importante consultar um profissional especializado o quanto antes para uma avaliação completa e, se necessário, iniciar intervenções adequadas.",
			},
		},
	}
}

// LoadProfile reads a YAML profile from path. Fields the file leaves out keep
// their DefaultProfile values; tiers are merged per tier.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML profile onto the defaults and validates it.
func ParseProfile(data []byte) (Profile, error) {
	base := DefaultProfile()
	var file Profile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}

	if file.Name != "" {
		base.Name = file.Name
	}
	if file.LowMax != 0 {
		base.LowMax = file.LowMax
	}
	if file.ModerateMax != 0 {
		base.ModerateMax = file.ModerateMax
	}
	if file.MaxAnswers != 0 {
		base.MaxAnswers = file.MaxAnswers
	}
	if len(file.Affirmative) > 0 {
		base.Affirmative = file.Affirmative
	}
	for tier, text := range file.Tiers {
		cur := base.Tiers[tier]
		if text.Label != "" {
			cur.Label = text.Label
		}
		if text.Message != "" {
			cur.Message = text.Message
		}
		base.Tiers[tier] = cur
	}

	if err := base.Validate(); err != nil {
		return Profile{}, err
	}
	return base, nil
}

// WithThresholds returns a copy of p using the given thresholds. Zero values
// leave the existing threshold in place.
func (p Profile) WithThresholds(lowMax, moderateMax int) Profile {
	if lowMax != 0 {
		p.LowMax = lowMax
	}
	if moderateMax != 0 {
		p.ModerateMax = moderateMax
	}
	return p
}

// Validate checks that thresholds do not overlap and every tier is worded.
func (p Profile) Validate() error {
	if p.LowMax < 0 {
		return fmt.Errorf("profile %q: low_max must be >= 0", p.Name)
	}
	if p.ModerateMax <= p.LowMax {
		return fmt.Errorf("profile %q: moderate_max (%d) must be greater than low_max (%d)", p.Name, p.ModerateMax, p.LowMax)
	}
	if p.MaxAnswers <= p.ModerateMax {
		return fmt.Errorf("profile %q: max_answers (%d) must be greater than moderate_max (%d)", p.Name, p.MaxAnswers, p.ModerateMax)
	}
	hasToken := false
	for _, a := range p.Affirmative {
		if strings.TrimSpace(a) != "" {
			hasToken = true
			break
		}
	}
	if !hasToken {
		return fmt.Errorf("profile %q: at least one affirmative token is required", p.Name)
	}
	for _, tier := range domain.Tiers {
		text, ok := p.Tiers[tier]
		if !ok || text.Label == "" || text.Message == "" {
			return fmt.Errorf("profile %q: tier %s needs a label and a message", p.Name, tier)
		}
	}
	return nil
}
