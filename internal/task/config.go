package task

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultNumCards   = 16
	DefaultCols       = 4
	DefaultRoundCount = 8
)

// RoundConfig describes one round of the card task.
type RoundConfig struct {
	LossCards  int `yaml:"loss_cards" json:"loss_cards"`
	GainAmount int `yaml:"gain_amount" json:"gain_amount"`
	LossAmount int `yaml:"loss_amount" json:"loss_amount"`
}

// DefaultRound is one loss card, +10 per gain card and a 250 point penalty.
func DefaultRound() RoundConfig {
	return RoundConfig{LossCards: 1, GainAmount: 10, LossAmount: 250}
}

// Options configures a whole task timeline.
type Options struct {
	NumCards         int           `yaml:"n_cards" json:"n_cards"`
	Cols             int           `yaml:"cols" json:"cols"`
	Rounds           []RoundConfig `yaml:"rounds" json:"rounds"`
	ShowInstructions bool          `yaml:"show_instructions" json:"show_instructions"`
	ShowResults      bool          `yaml:"show_results" json:"show_results"`
}

// DefaultOptions returns 16 cards in 4 columns, 8 default rounds, and both
// the instructions and results steps.
func DefaultOptions() Options {
	rounds := make([]RoundConfig, DefaultRoundCount)
	for i := range rounds {
		rounds[i] = DefaultRound()
	}
	return Options{
		NumCards:         DefaultNumCards,
		Cols:             DefaultCols,
		Rounds:           rounds,
		ShowInstructions: true,
		ShowResults:      true,
	}
}

// Validate checks that every round can be played to completion.
func (o Options) Validate() error {
	if o.NumCards <= 0 {
		return fmt.Errorf("n_cards must be > 0, got %d", o.NumCards)
	}
	if o.Cols <= 0 {
		return fmt.Errorf("cols must be > 0, got %d", o.Cols)
	}
	var errs []error
	for i, r := range o.Rounds {
		if r.LossCards < 0 || r.LossCards >= o.NumCards {
			errs = append(errs, fmt.Errorf("round %d: loss_cards must be in [0, %d), got %d", i+1, o.NumCards, r.LossCards))
		}
		if r.GainAmount < 0 {
			errs = append(errs, fmt.Errorf("round %d: gain_amount must be >= 0, got %d", i+1, r.GainAmount))
		}
		if r.LossAmount < 0 {
			errs = append(errs, fmt.Errorf("round %d: loss_amount must be >= 0, got %d", i+1, r.LossAmount))
		}
	}
	return errors.Join(errs...)
}

// ParseOptions decodes YAML task options on top of DefaultOptions and
// validates the result. Keys missing from the document keep their defaults.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parse task YAML: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid task options: %w", err)
	}
	return opts, nil
}

// LoadOptions reads task options from a YAML file. An empty path yields the
// defaults.
func LoadOptions(path string) (Options, error) {
	if path == "" {
		return DefaultOptions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	return ParseOptions(data)
}
