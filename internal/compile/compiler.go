// Package compile builds contestant sources into executables using the
// command templates from the configuration.
package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"cpt/internal/config"
)

// ErrNoCompiler is returned for sources whose extension has no configured template
var ErrNoCompiler = errors.New("no compiler configured")

// Error is a failed compilation. Output holds the compiler diagnostics.
type Error struct {
	Source   string
	ExitCode int
	Output   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("compilation of %s failed with exit code %d", e.Source, e.ExitCode)
}

// Compiler turns a source file into an executable
type Compiler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCompiler creates a new Compiler
func NewCompiler(cfg *config.Config, logger *zap.Logger) *Compiler {
	return &Compiler{cfg: cfg, logger: logger}
}

// Compile builds source and returns the path of the resulting executable
func (c *Compiler) Compile(ctx context.Context, source string) (string, error) {
	tpl, ok := c.cfg.CompilerTemplate(source)
	if !ok {
		return "", fmt.Errorf("%w for %s", ErrNoCompiler, source)
	}
	bin := c.cfg.BinaryPath(source)

	args, err := BuildCommand(tpl, source, bin)
	if err != nil {
		return "", err
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	c.logger.Debug("compiling", zap.Strings("command", args))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &Error{Source: source, ExitCode: exitErr.ExitCode(), Output: output.String()}
		}
		return "", fmt.Errorf("failed to run compiler %s: %w", args[0], err)
	}
	c.logger.Debug("compiled", zap.String("binary", bin), zap.Duration("elapsed", time.Since(start)))
	return bin, nil
}

// BuildCommand expands {src} and {bin} in tpl and splits it into arguments
func BuildCommand(tpl, source, bin string) ([]string, error) {
	if strings.TrimSpace(tpl) == "" {
		return nil, errors.New("compile command template is empty")
	}
	expanded := strings.ReplaceAll(tpl, "{src}", quote(source))
	expanded = strings.ReplaceAll(expanded, "{bin}", quote(bin))

	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to parse compile command %q: %w", tpl, err)
	}
	if len(fields) == 0 {
		return nil, errors.New("compile command is empty after expansion")
	}
	return fields, nil
}

// quote keeps paths with spaces in one argument
func quote(path string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(path) + `"`
}
