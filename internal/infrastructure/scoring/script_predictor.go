// Package scoring runs the external margin models as child processes.
package scoring

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/profitalyze/backend/internal/domain/prediction"
	"github.com/profitalyze/backend/internal/infrastructure/config"
	"github.com/profitalyze/backend/internal/infrastructure/logger"
	"github.com/profitalyze/backend/internal/infrastructure/telemetry"
)

// waitDelay bounds how long Run waits for output pipes after the process is killed
const waitDelay = 2 * time.Second

// ScriptPredictor invokes `<python> -u <script> <json>` and parses the
// first line of stdout as the predicted margin
type ScriptPredictor struct {
	python  string
	scripts map[prediction.Model]string
	timeout time.Duration
	logger  *zap.Logger
	metrics *telemetry.PredictionMetrics
}

// Option configures a ScriptPredictor
type Option func(*ScriptPredictor)

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(p *ScriptPredictor) {
		p.logger = l
	}
}

// WithMetrics records every run on m
func WithMetrics(m *telemetry.PredictionMetrics) Option {
	return func(p *ScriptPredictor) {
		p.metrics = m
	}
}

// NewScriptPredictor creates a predictor from the prediction config.
// Relative script names are resolved against ScriptDir.
func NewScriptPredictor(cfg *config.PredictionConfig, opts ...Option) *ScriptPredictor {
	p := &ScriptPredictor{
		python: cfg.PythonPath,
		scripts: map[prediction.Model]string{
			prediction.ModelSingle:      resolveScript(cfg.ScriptDir, cfg.RegularScript),
			prediction.ModelCombination: resolveScript(cfg.ScriptDir, cfg.CombinationScript),
		},
		timeout: cfg.Timeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func resolveScript(dir, script string) string {
	if filepath.IsAbs(script) || dir == "" {
		return script
	}
	return filepath.Join(dir, script)
}

// Predict runs the model script for req. The process is killed when ctx is
// cancelled or the configured timeout elapses.
func (p *ScriptPredictor) Predict(ctx context.Context, req prediction.Request) (float64, error) {
	log := logger.FromContextOr(ctx, p.logger)
	start := time.Now()

	margin, outcome, err := p.run(ctx, req, log)
	p.metrics.Record(ctx, string(req.Model), outcome, time.Since(start))
	return margin, err
}

func (p *ScriptPredictor) run(ctx context.Context, req prediction.Request, log *zap.Logger) (float64, string, error) {
	script, ok := p.scripts[req.Model]
	if !ok {
		return 0, telemetry.OutcomeProcess, fmt.Errorf("no script configured for model %q", req.Model)
	}

	python, err := exec.LookPath(p.python)
	if err != nil {
		log.Error("Scoring executable not found",
			zap.String("python_path", p.python),
			zap.Error(err),
		)
		return 0, telemetry.OutcomeConfig, &prediction.ConfigError{Path: p.python}
	}

	payload, err := req.Payload()
	if err != nil {
		return 0, telemetry.OutcomeProcess, fmt.Errorf("failed to encode features: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, python, "-u", script, string(payload))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	log.Debug("Running scoring script",
		zap.String("model", string(req.Model)),
		zap.String("script", script),
	)

	if err := cmd.Run(); err != nil {
		if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			log.Warn("Scoring script timed out", zap.String("script", script), zap.Duration("timeout", p.timeout))
			return 0, telemetry.OutcomeTimeout, &prediction.TimeoutError{Timeout: p.timeout}
		}
		perr := &prediction.ProcessError{
			Script: script,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			perr.Err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		log.Error("Scoring script failed",
			zap.String("script", script),
			zap.Int("exit_code", perr.ExitCode),
			zap.String("stderr", perr.Stderr),
			zap.Error(err),
		)
		return 0, telemetry.OutcomeProcess, perr
	}

	margin, err := parseMargin(stdout.Bytes())
	if err != nil {
		log.Error("Unparseable scoring output", zap.String("script", script), zap.Error(err))
		return 0, telemetry.OutcomeParse, err
	}
	return margin, telemetry.OutcomeSuccess, nil
}

// parseMargin reads the first line of output as a finite float
func parseMargin(out []byte) (float64, error) {
	line := ""
	sc := bufio.NewScanner(bytes.NewReader(out))
	if sc.Scan() {
		line = strings.TrimSpace(sc.Text())
	}

	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, &prediction.ParseError{Output: line, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &prediction.ParseError{Output: line, Err: fmt.Errorf("value is not finite")}
	}
	return v, nil
}

var _ prediction.Predictor = (*ScriptPredictor)(nil)
