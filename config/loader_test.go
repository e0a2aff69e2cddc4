package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotator/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, types.DefaultConfig(), *cfg)
}

func TestLoad_ValidFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `model_path: models/box.pt
detection:
  interval: 5
  worker_command: [uv, run, worker.py]
  request_timeout: 750ms
overlay:
  shrink_factor: 0.8
feedback:
  action_turns: 10
  rewind_turns: 15
display:
  window_name: Review
  max_width: 2560
  resize_width: 1600
  resize_height: 900
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "models/box.pt", cfg.ModelPath)
	assert.Equal(t, 5, cfg.Detection.Interval)
	assert.Equal(t, []string{"uv", "run", "worker.py"}, cfg.Detection.WorkerCommand)
	assert.Equal(t, 750*time.Millisecond, cfg.Detection.RequestTimeout)
	assert.InDelta(t, 0.8, cfg.Overlay.ShrinkFactor, 1e-9)
	assert.Equal(t, 10, cfg.Feedback.ActionTurns)
	assert.Equal(t, 15, cfg.Feedback.RewindTurns)
	assert.Equal(t, "Review", cfg.Display.WindowName)
	assert.Equal(t, 2560, cfg.Display.MaxWidth)
	assert.Equal(t, 1600, cfg.Display.ResizeWidth)
	assert.Equal(t, 900, cfg.Display.ResizeHeight)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "detection:\n  interval: 3\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Detection.Interval)
	assert.Equal(t, types.DefaultModelPath, cfg.ModelPath)
	assert.Equal(t, types.DefaultFeedbackConfig(), cfg.Feedback)
	assert.Equal(t, 5*time.Second, cfg.Detection.RequestTimeout)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "detection: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"zero interval", "detection:\n  interval: 0\n", "detection.interval"},
		{"empty model", "model_path: \"\"\n", "model_path"},
		{"empty worker", "detection:\n  worker_command: []\n", "detection.worker_command"},
		{"shrink too large", "overlay:\n  shrink_factor: 1.5\n", "overlay.shrink_factor"},
		{"negative turns", "feedback:\n  rewind_turns: -1\n", "feedback.rewind_turns"},
		{"zero width", "display:\n  max_width: 0\n", "display"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)

			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
