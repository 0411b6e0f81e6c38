package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rawbytedev/strkit/pkg/b16"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat = errors.New("config: unknown file extension")
	ErrInvalidConfig = errors.New("config: invalid value")
)

// Options tune how a job runs. Flags override values read from the file.
type Options struct {
	// HexCase is "lower" or "upper".
	HexCase string `yaml:"hex_case" toml:"hex_case"`
	// BufferSize is the size of the caller buffer tried before allocating.
	BufferSize int `yaml:"buffer_size" toml:"buffer_size"`
	// Allocator is "heap" or "pool".
	Allocator string `yaml:"allocator" toml:"allocator"`
	// Budget caps outstanding allocated bytes; 0 means unlimited.
	Budget int `yaml:"budget" toml:"budget"`
}

// KV is one form entry.
type KV struct {
	Key   string `yaml:"key" toml:"key"`
	Value string `yaml:"value" toml:"value"`
}

// Form is a named list of pairs to encode.
type Form struct {
	Name  string `yaml:"name" toml:"name"`
	Pairs []KV   `yaml:"pairs" toml:"pairs"`
}

// Job lists the work for one run.
type Job struct {
	Options Options  `yaml:"options" toml:"options"`
	Forms   []Form   `yaml:"forms" toml:"forms"`
	Encode  []string `yaml:"encode" toml:"encode"`
	Decode  []string `yaml:"decode" toml:"decode"`
}

// DefaultOptions returns the options used when neither the file nor a flag
// sets a value.
func DefaultOptions() Options {
	return Options{HexCase: "lower", BufferSize: 64, Allocator: "heap"}
}

// LoadJob reads a job from a .yaml, .yml or .toml file.
func LoadJob(path string) (*Job, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	job := &Job{Options: DefaultOptions()}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, job)
	case ".toml":
		err = toml.Unmarshal(content, job)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := job.Options.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

// Validate checks the option values.
func (o *Options) Validate() error {
	if _, err := o.Case(); err != nil {
		return err
	}
	switch o.Allocator {
	case "heap", "pool":
	default:
		return fmt.Errorf("%w: allocator %q", ErrInvalidConfig, o.Allocator)
	}
	if o.BufferSize < 0 {
		return fmt.Errorf("%w: buffer_size %d", ErrInvalidConfig, o.BufferSize)
	}
	if o.Budget < 0 {
		return fmt.Errorf("%w: budget %d", ErrInvalidConfig, o.Budget)
	}
	return nil
}

// Case maps HexCase to the b16 table.
func (o *Options) Case() (b16.Case, error) {
	switch strings.ToLower(o.HexCase) {
	case "", "lower":
		return b16.Lower, nil
	case "upper":
		return b16.Upper, nil
	default:
		return b16.Lower, fmt.Errorf("%w: hex_case %q", ErrInvalidConfig, o.HexCase)
	}
}
