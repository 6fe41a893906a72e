// Package risk scores the procurement risk register against a dataset.
package risk

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed register.yaml
var defaultRegister []byte

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Level buckets an impact x probability score.
type Level string

// LevelFor maps a score: 12 and above is high, 6 to 11 medium, below 6 low.
func LevelFor(score int) Level {
	switch {
	case score >= 12:
		return LevelHigh
	case score >= 6:
		return LevelMedium
	}
	return LevelLow
}

func (l Level) Label() string {
	switch l {
	case LevelHigh:
		return "高"
	case LevelMedium:
		return "中"
	}
	return "低"
}

var (
	ErrUnknownRisk     = errors.New("unknown risk")
	ErrInvalidRegister = errors.New("invalid risk register")
)

type (
	Register struct {
		Risks []Item `yaml:"risks"`
	}

	Item struct {
		ID          string       `yaml:"id"`
		Name        string       `yaml:"name"`
		Short       string       `yaml:"short"`
		Impact      int          `yaml:"impact"`
		Probability int          `yaml:"probability"`
		Causes      []string     `yaml:"causes"`
		Filter      Filter       `yaml:"filter"`
		Mitigations []Mitigation `yaml:"mitigations"`
	}

	// Filter selects the suppliers exposed to a risk. Set fields combine
	// with AND.
	Filter struct {
		QuantileAbove *float64 `yaml:"quantile_above"`
		Categories    []string `yaml:"categories"`
		GrowthAbove   *float64 `yaml:"growth_above"`
		GrowthBelow   *float64 `yaml:"growth_below"`
		// Share adds each supplier's share of the filtered 2024 spend.
		Share bool `yaml:"share"`
	}

	Mitigation struct {
		Title   string   `yaml:"title"`
		Actions []string `yaml:"actions"`
	}
)

func (i Item) Score() int {
	return i.Impact * i.Probability
}

func (i Item) Level() Level {
	return LevelFor(i.Score())
}

// DefaultRegister returns the built-in register.
func DefaultRegister() (*Register, error) {
	return ParseRegister(defaultRegister)
}

// LoadRegister reads a register file, or the built-in one when path is empty.
func LoadRegister(path string) (*Register, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRegister()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read risk register: %w", err)
	}
	return ParseRegister(b)
}

func ParseRegister(b []byte) (*Register, error) {
	var r Register
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegister, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate collects every problem of the register into one error.
func (r *Register) Validate() error {
	var problems []string
	if len(r.Risks) == 0 {
		problems = append(problems, "no risks defined")
	}
	seen := map[string]bool{}
	for i, it := range r.Risks {
		if it.ID == "" {
			problems = append(problems, fmt.Sprintf("risk %d: missing id", i))
		} else if seen[it.ID] {
			problems = append(problems, fmt.Sprintf("risk %q: duplicate id", it.ID))
		}
		seen[it.ID] = true
		if it.Name == "" {
			problems = append(problems, fmt.Sprintf("risk %q: missing name", it.ID))
		}
		if it.Impact < 1 || it.Impact > 5 {
			problems = append(problems, fmt.Sprintf("risk %q: impact %d out of 1-5", it.ID, it.Impact))
		}
		if it.Probability < 1 || it.Probability > 5 {
			problems = append(problems, fmt.Sprintf("risk %q: probability %d out of 1-5", it.ID, it.Probability))
		}
		if q := it.Filter.QuantileAbove; q != nil && (*q <= 0 || *q >= 1) {
			problems = append(problems, fmt.Sprintf("risk %q: quantile_above must be in (0,1)", it.ID))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidRegister, strings.Join(problems, "\n- "))
	}
	return nil
}

// Find returns the risk with the given id.
func (r *Register) Find(id string) (Item, error) {
	for _, it := range r.Risks {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrUnknownRisk, id)
}
