package detection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"annotator/types"
)

// Worker runs the keypoint model in a child process and exchanges one
// request and one response per detection
type Worker struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	timeout time.Duration
	broken  error
}

// StartWorker launches the worker command with the model path appended
func StartWorker(ctx context.Context, command []string, modelPath string, timeout time.Duration) (*Worker, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("worker command is empty")
	}

	args := append(append([]string{}, command[1:]...), "--model", modelPath)
	cmd := exec.CommandContext(ctx, command[0], args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start detector worker: %w", err)
	}

	slog.Info("detector worker started", "command", strings.Join(command, " "), "model", modelPath, "pid", cmd.Process.Pid)

	w := &Worker{
		cmd:     cmd,
		stdin:   stdin,
		stdout:  bufio.NewReader(stdout),
		timeout: timeout,
	}
	go w.logStderr(stderr)
	return w, nil
}

// Detect sends one frame and waits for the worker's answer
func (w *Worker) Detect(ctx context.Context, req Request) (types.Keypoints, error) {
	if w.broken != nil {
		return nil, w.broken
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	result := make(chan roundTrip, 1)
	go func() {
		resp, err := w.exchange(req)
		result <- roundTrip{resp: resp, err: err}
	}()

	select {
	case rt := <-result:
		if rt.err != nil {
			w.broken = fmt.Errorf("detector worker failed: %w", rt.err)
			return nil, w.broken
		}
		return decodeResponse(req.Seq, rt.resp)
	case <-ctx.Done():
		// the worker is mid-message; its stream can no longer be trusted
		w.broken = fmt.Errorf("detector worker timed out on frame %d: %w", req.Seq, ctx.Err())
		w.kill()
		return nil, w.broken
	}
}

// Close asks the worker to exit by closing its input, killing it if it does not
func (w *Worker) Close() error {
	_ = w.stdin.Close()

	exited := make(chan error, 1)
	go func() { exited <- w.cmd.Wait() }()

	select {
	case err := <-exited:
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return fmt.Errorf("failed waiting for detector worker: %w", err)
		}
		return nil
	case <-time.After(2 * time.Second):
		slog.Warn("detector worker did not exit, killing it")
		w.kill()
		<-exited
		return nil
	}
}

type roundTrip struct {
	resp wireResponse
	err  error
}

func (w *Worker) exchange(req Request) (wireResponse, error) {
	var resp wireResponse
	wire := wireRequest{
		Seq:       req.Seq,
		Width:     req.Width,
		Height:    req.Height,
		FrameData: req.JPEG,
	}
	if err := writeMessage(w.stdin, wire); err != nil {
		return resp, err
	}
	if err := readMessage(w.stdout, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func (w *Worker) kill() {
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
}

// logStderr relays worker log lines, mapping its level prefixes onto slog
func (w *Worker) logStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "[ERROR]"), strings.Contains(line, "[CRITICAL]"):
			slog.Error("detector worker", "line", line)
		case strings.Contains(line, "[WARNING]"), strings.Contains(line, "[WARN]"):
			slog.Warn("detector worker", "line", line)
		default:
			slog.Debug("detector worker", "line", line)
		}
	}
}

func decodeResponse(seq int, resp wireResponse) (types.Keypoints, error) {
	if resp.Seq != seq {
		return nil, fmt.Errorf("detector worker answered frame %d, expected %d", resp.Seq, seq)
	}
	if !resp.Success {
		if resp.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoDetection, resp.Error)
		}
		return nil, ErrNoDetection
	}

	kp := make(types.Keypoints, len(resp.Keypoints))
	for name, xy := range resp.Keypoints {
		if len(xy) < 2 {
			return nil, fmt.Errorf("landmark %q has %d coordinates", name, len(xy))
		}
		kp[name] = types.Point{X: xy[0], Y: xy[1]}
	}
	return kp, nil
}
