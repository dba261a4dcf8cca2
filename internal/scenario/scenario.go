// Package scenario loads task sets and step scripts and plays them against an executor.
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidScenario is returned for scenarios that cannot be played.
var ErrInvalidScenario = errors.New("invalid scenario")

// Step operations.
const (
	OpAdd    = "add"
	OpTick   = "tick"
	OpRun    = "run"
	OpUndo   = "undo"
	OpReport = "report"
)

// TaskSpec describes a task to admit.
type TaskSpec struct {
	ID       string `yaml:"id" json:"id"`
	Duration int    `yaml:"duration" json:"duration"`
	Deadline int    `yaml:"deadline" json:"deadline"`
	Value    int    `yaml:"value" json:"value"`
}

// Step is one scripted operation. Task is used by add; Count by tick (default 1).
type Step struct {
	Op    string    `yaml:"op" json:"op"`
	Task  *TaskSpec `yaml:"task,omitempty" json:"task,omitempty"`
	Count int       `yaml:"count,omitempty" json:"count,omitempty"`
}

// Scenario is a named task set. Tasks are admitted first, then Steps run in
// order. Without steps the scenario runs to completion.
type Scenario struct {
	Name  string     `yaml:"name" json:"name"`
	Tasks []TaskSpec `yaml:"tasks" json:"tasks"`
	Steps []Step     `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Demo returns the built-in three-task example.
func Demo() *Scenario {
	return &Scenario{
		Name: "demo",
		Tasks: []TaskSpec{
			{ID: "T1", Duration: 3, Deadline: 5, Value: 100},
			{ID: "T2", Duration: 2, Deadline: 4, Value: 80},
			{ID: "T3", Duration: 1, Deadline: 10, Value: 50},
		},
	}
}

// Load reads a scenario file. The format is chosen by extension:
// .yaml and .yml are YAML, .json is JSON. A missing name defaults to the file's base name.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	sc, err := Parse(data, strings.TrimPrefix(ext, "."))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes a scenario in the given format ("yaml", "yml" or "json") and validates it.
// Unknown fields are rejected.
func Parse(data []byte, format string) (*Scenario, error) {
	var sc Scenario

	switch format {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&sc); err != nil {
			return nil, fmt.Errorf("%w: parse yaml: %w", ErrInvalidScenario, err)
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sc); err != nil {
			return nil, fmt.Errorf("%w: parse json: %w", ErrInvalidScenario, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidScenario, format)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the step script. Task parameters are left to the executor.
func (s *Scenario) Validate() error {
	for i, step := range s.Steps {
		switch step.Op {
		case OpAdd:
			if step.Task == nil {
				return fmt.Errorf("%w: step %d: add requires a task", ErrInvalidScenario, i+1)
			}
		case OpTick:
			if step.Count < 0 {
				return fmt.Errorf("%w: step %d: negative tick count %d", ErrInvalidScenario, i+1, step.Count)
			}
		case OpRun, OpUndo, OpReport:
		default:
			return fmt.Errorf("%w: step %d: unknown op %q", ErrInvalidScenario, i+1, step.Op)
		}
	}
	return nil
}

// Marshal encodes the scenario as YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
