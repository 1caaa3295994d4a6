package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
)

// processWaitDelay bounds how long Detect waits for pipes after the process is killed.
const processWaitDelay = 2 * time.Second

// ExecDetector runs an external model process per image. The image path is
// appended as the last argument and the process must print JSON detections
// on stdout, either as an array or as {"detections": [...]}.
type ExecDetector struct {
	command   []string
	threshold float64
}

var _ contract.Detector = &ExecDetector{} // Compile-time check

// NewExecDetector creates a detector for the given command line.
func NewExecDetector(command []string, threshold float64) (*ExecDetector, error) {
	if len(command) == 0 {
		return nil, errors.New("detector command is empty")
	}
	return &ExecDetector{command: command, threshold: threshold}, nil
}

// Name implements the Detector interface.
func (d *ExecDetector) Name() string {
	return fmt.Sprintf("exec:%s@%.2f", strings.Join(d.command, " "), d.threshold)
}

// Detect implements the Detector interface.
func (d *ExecDetector) Detect(ctx context.Context, imagePath string) ([]schema.Detection, error) {
	args := append(append([]string{}, d.command[1:]...), imagePath)
	cmd := exec.CommandContext(ctx, d.command[0], args...)
	cmd.WaitDelay = processWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("detector on %q: %w", imagePath, ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("detector on %q failed: %w", imagePath, err)
		}
		return nil, fmt.Errorf("detector on %q failed: %w: %s", imagePath, err, msg)
	}

	raw, err := decodeDetections(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("detector on %q returned invalid output: %w", imagePath, err)
	}
	return filterDetections(raw, d.threshold), nil
}

// decodeDetections accepts an empty body, a JSON array or an object with a
// "detections" field.
func decodeDetections(body []byte) ([]rawDetection, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		var raw []rawDetection
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
	var wrapped struct {
		Detections []rawDetection `json:"detections"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Detections, nil
}
