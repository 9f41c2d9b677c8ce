// Package engine evaluates tray recipes. A recipe is a small Lisp program,
// run in a sandboxed zygomys environment, whose builtins (tray, compartment,
// honeycomb, boardgame) adjust a set of tray settings.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/rs/zerolog/log"

	"github.com/chazu/lostmodeler/pkg/tray"
)

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

// Recipe is what a script produces: tray settings plus boardgame options.
type Recipe struct {
	Tray      tray.Settings
	Boardgame tray.BoardgameSettings
}

// Engine wraps the zygomys interpreter for recipe evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

// Evaluate runs source starting from base and returns the resulting recipe.
// base is never modified.
//
// Return semantics:
//   - On success: returns recipe + nil errors + nil error
//   - On parse/eval failure: returns base + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns base + nil + error
func (e *Engine) Evaluate(source string, base Recipe) (Recipe, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		r, evalErrs, err := e.evaluate(source, base)
		ch <- evalResult{recipe: r, errors: evalErrs, err: err}
	}()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	res, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, timeout)
	if err != nil {
		log.Debug().Err(err).Uint64("generation", gen).Msg("recipe evaluation failed")
		return base, nil, err
	}
	if res.err != nil {
		return base, nil, res.err
	}
	if len(res.errors) > 0 {
		return base, res.errors, nil
	}
	return res.recipe, nil, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, base Recipe) (Recipe, []EvalError, error) {
	r := Recipe{Tray: base.Tray.Clone(), Boardgame: base.Boardgame}

	// Empty source is a valid program that leaves the recipe unchanged.
	if strings.TrimSpace(source) == "" {
		return r, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &r)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return Recipe{}, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return Recipe{}, parseZygomysError(err), nil
	}

	log.Debug().
		Int("compartments", len(r.Tray.Compartments)).
		Str("extents", r.Tray.Extents().String()).
		Msg("recipe evaluated")
	return r, nil, nil
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
