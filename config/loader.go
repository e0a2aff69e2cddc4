package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"annotator/types"
)

// DefaultPath is the config file looked up in the working directory
const DefaultPath = "annotator.yaml"

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Load reads and parses the YAML config at path.
// A missing file yields the defaults; fields absent from the file keep their defaults.
func Load(path string) (*types.Config, error) {
	cfg := types.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that all config values are usable.
func Validate(cfg *types.Config) error {
	if cfg.ModelPath == "" {
		return ValidationError{Field: "model_path", Message: "required field is empty"}
	}
	if cfg.Detection.Interval <= 0 {
		return ValidationError{Field: "detection.interval", Message: "must be positive"}
	}
	if len(cfg.Detection.WorkerCommand) == 0 || cfg.Detection.WorkerCommand[0] == "" {
		return ValidationError{Field: "detection.worker_command", Message: "required field is empty"}
	}
	if cfg.Detection.RequestTimeout <= 0 {
		return ValidationError{Field: "detection.request_timeout", Message: "must be positive"}
	}
	if cfg.Overlay.ShrinkFactor <= 0 || cfg.Overlay.ShrinkFactor > 1 {
		return ValidationError{Field: "overlay.shrink_factor", Message: "must be in (0, 1]"}
	}
	if cfg.Feedback.ActionTurns < 0 {
		return ValidationError{Field: "feedback.action_turns", Message: "must not be negative"}
	}
	if cfg.Feedback.RewindTurns < 0 {
		return ValidationError{Field: "feedback.rewind_turns", Message: "must not be negative"}
	}
	if cfg.Display.MaxWidth <= 0 || cfg.Display.ResizeWidth <= 0 || cfg.Display.ResizeHeight <= 0 {
		return ValidationError{Field: "display", Message: "dimensions must be positive"}
	}
	return nil
}
