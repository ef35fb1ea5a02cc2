// Package engine evaluates mesh scripts. It wraps zygomys in a sandboxed
// environment and produces a Scene of named polygon soups from user source
// code.
package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/kernel"
	"github.com/chazu/hemesh/pkg/kernel/sdfx"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

var (
	// ErrTimeout is returned when an evaluation exceeds its time limit.
	ErrTimeout = errors.New("engine: evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one was started.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

// DefaultSampleCells is the marching cubes resolution used for sampled
// primitives when no kernel is supplied.
const DefaultSampleCells = 32

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning about a mesh in the scene.
type EvalWarning struct {
	Mesh    string
	Message string
}

func (w EvalWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Mesh, w.Message)
}

// Engine wraps the zygomys interpreter for mesh scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	kern    kernel.Kernel
	cfg     config.Options
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithKernel sets the kernel used by the sampled primitives (sphere,
// cylinder).
func WithKernel(k kernel.Kernel) Option {
	return func(e *Engine) { e.kern = k }
}

// WithConfig sets the tolerance and logger.
func WithConfig(opts ...config.Option) Option {
	return func(e *Engine) { e.cfg = config.Resolve(opts...) }
}

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cfg:     config.Resolve(),
		timeout: EvalTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.kern == nil {
		e.kern = sdfx.New(sdfx.WithCells(DefaultSampleCells))
	}
	return e
}

// Evaluate takes Lisp source code and produces a new Scene.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{scene: s, errors: evalErrs, err: err}
	}()

	s, evalErrs, err := waitWithTimeout(ch, e.timeout, gen, &e.mu, &e.generation)
	log := e.cfg.Logger
	switch {
	case err != nil:
		log.Warn("evaluation failed", zap.Uint64("generation", gen), zap.Error(err))
	case len(evalErrs) > 0:
		log.Debug("evaluation reported errors",
			zap.Uint64("generation", gen),
			zap.Int("errors", len(evalErrs)),
			zap.String("first", evalErrs[0].Error()))
	default:
		log.Debug("evaluated script",
			zap.Uint64("generation", gen),
			zap.Strings("meshes", s.Names()))
	}
	return s, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Scene, []EvalError, error) {
	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return NewScene(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	scene := NewScene()
	registerBuiltins(env, scene, e.kern, e.cfg)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return scene, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
