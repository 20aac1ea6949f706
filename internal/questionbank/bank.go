// Package questionbank provides the YAML-seeded question sampler.
package questionbank

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

//go:embed questions.yaml
var defaultQuestions []byte

type bankFile struct {
	Questions []domain.QuestionRecord `yaml:"questions"`
}

// Bank samples questions category-matched first, broadening to the whole
// bank when the primary sample comes up short. Safe for concurrent use.
type Bank struct {
	mu        sync.Mutex
	rng       *rand.Rand
	questions []domain.QuestionRecord
}

// New loads the bank from path when given, else from the embedded seed set.
func New(path string) (*Bank, error) {
	raw := defaultQuestions
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("op=questionbank.New path=%s: %w", path, err)
		}
		raw = b
	}
	var f bankFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("op=questionbank.New: parse: %w", err)
	}
	if len(f.Questions) == 0 {
		return nil, fmt.Errorf("op=questionbank.New: %w: empty question bank", domain.ErrInternal)
	}
	return &Bank{
		rng:       rand.New(rand.NewSource(rand.Int63())),
		questions: f.Questions,
	}, nil
}

// Sample returns up to count questions matching the given categories,
// shuffled, topped up from the full bank when the match set is short.
func (b *Bank) Sample(_ domain.Context, categories []string, count int) ([]domain.QuestionRecord, error) {
	if count <= 0 {
		return nil, fmt.Errorf("op=questionbank.Sample: %w: count must be positive", domain.ErrInvalidArgument)
	}

	wanted := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c != "" {
			wanted[c] = struct{}{}
		}
	}

	var matched, rest []domain.QuestionRecord
	for _, q := range b.questions {
		if _, ok := wanted[q.Category]; ok || len(wanted) == 0 {
			matched = append(matched, q)
		} else {
			rest = append(rest, q)
		}
	}

	b.mu.Lock()
	b.rng.Shuffle(len(matched), func(i, j int) { matched[i], matched[j] = matched[j], matched[i] })
	b.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	b.mu.Unlock()

	pool := append(matched, rest...)
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]domain.QuestionRecord, count)
	copy(out, pool[:count])
	return out, nil
}

// Size reports how many questions the bank holds.
func (b *Bank) Size() int { return len(b.questions) }
