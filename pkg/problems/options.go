package problems

import (
	"fmt"
	"strconv"

	"github.com/operator-framework/quboform/pkg/solver"
)

// Multipliers holds named Lagrange multipliers and other weights of a
// formulation. Each problem documents the names it reads and their
// defaults.
type Multipliers map[string]float64

// Get returns the multiplier called name, or def if it was not set.
func (m Multipliers) Get(name string, def float64) float64 {
	if v, ok := m[name]; ok {
		return v
	}
	return def
}

// ParseMultipliers converts name to value strings, as read from command
// line flags.
func ParseMultipliers(raw map[string]string) (Multipliers, error) {
	m := make(Multipliers, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("multiplier %s: %w", k, err)
		}
		m[k] = f
	}
	return m, nil
}

// Config collects the settings of a formulation and, for the bruteforce
// helpers, of the solver.
type Config struct {
	Multipliers Multipliers
	Solver      []solver.Option
}

type Option func(c *Config) error

// WithMultiplier sets the multiplier called name.
func WithMultiplier(name string, value float64) Option {
	return func(c *Config) error {
		if name == "" {
			return fmt.Errorf("multiplier name must not be empty")
		}
		c.Multipliers[name] = value
		return nil
	}
}

// WithMultipliers sets several multipliers at once.
func WithMultipliers(m Multipliers) Option {
	return func(c *Config) error {
		for k, v := range m {
			if err := WithMultiplier(k, v)(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithSolverOptions passes options to the bruteforce solver.
func WithSolverOptions(opts ...solver.Option) Option {
	return func(c *Config) error {
		c.Solver = append(c.Solver, opts...)
		return nil
	}
}

func newConfig(opts []Option) (*Config, error) {
	c := &Config{Multipliers: Multipliers{}}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
