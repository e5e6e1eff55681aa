package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const maxStderr = 4096

// Praat runs scripts through the praat command line ("praat --run").
type Praat struct {
	Binary  string
	Timeout time.Duration
	log     *logrus.Entry
}

func NewPraat(binary string, timeout time.Duration, log *logrus.Entry) *Praat {
	if binary == "" {
		binary = "praat"
	}
	return &Praat{Binary: binary, Timeout: timeout, log: log.WithField("component", "praat")}
}

// Available reports whether the binary resolves on PATH.
func (p *Praat) Available() bool {
	_, err := exec.LookPath(p.Binary)
	return err == nil
}

// Run executes script with positional args and returns its stdout.
func (p *Praat) Run(ctx context.Context, script string, args []string) (string, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	argv := append([]string{"--run", script}, args...)
	cmd := exec.CommandContext(ctx, p.Binary, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	p.log.WithField("args", strings.Join(argv, " ")).Debug("running praat")
	err := cmd.Run()
	p.log.WithField("took", time.Since(start).Round(time.Millisecond)).Debug("praat finished")

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("praat timed out after %s: %w", p.Timeout, ctx.Err())
		}
		msg := stderr.String()
		if len(msg) > maxStderr {
			msg = msg[:maxStderr]
		}
		return "", fmt.Errorf("praat %s: %w: %s", script, err, strings.TrimSpace(msg))
	}
	return stdout.String(), nil
}
