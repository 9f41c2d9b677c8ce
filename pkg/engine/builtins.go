package engine

import (
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/lostmodeler/pkg/tray"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms recipe source before passing it to zygomys.
// It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: clear-compartments -> clear_compartments
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as a flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toInt extracts a whole number from a Sexp. Floats with a fractional part
// are rejected.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected whole number, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// check rejects positional arguments and keywords outside allowed.
func (a kwArgs) check(fn string, allowed ...string) error {
	if len(a.positional) > 0 {
		return fmt.Errorf("%s: unexpected positional argument %s", fn, a.positional[0].SexpString(nil))
	}
	var unknown []string
	for name := range a.kw {
		found := false
		for _, want := range allowed {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, ":"+name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: unknown keyword %s", fn, strings.Join(unknown, ", "))
	}
	return nil
}

// float assigns the named keyword to dst when present.
func (a kwArgs) float(fn, name string, dst *float64) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, name, err)
	}
	*dst = f
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the recipe builtins into a zygomys environment.
// The builtins mutate r in evaluation order.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, r *Recipe) {

	// -----------------------------------------------------------------------
	// (tray :length 200 :width 100 :height 40 :wall 2)
	// Keywords that are omitted keep their current value.
	// -----------------------------------------------------------------------
	env.AddFunction("tray", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.check("tray", "length", "width", "height", "wall"); err != nil {
			return zygo.SexpNull, err
		}
		t := r.Tray
		for _, f := range []struct {
			kw  string
			dst *float64
		}{
			{"length", &t.Length},
			{"width", &t.Width},
			{"height", &t.Height},
			{"wall", &t.Wall},
		} {
			if err := pa.float("tray", f.kw, f.dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		r.Tray = t
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (compartment :x 2 :y 2 :width 40 :depth 30 :shape :round :label "dice")
	// -----------------------------------------------------------------------
	env.AddFunction("compartment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.check("compartment", "x", "y", "z", "width", "depth", "height", "shape", "label"); err != nil {
			return zygo.SexpNull, err
		}
		for _, req := range []string{"width", "depth"} {
			if _, ok := pa.kw[req]; !ok {
				return zygo.SexpNull, fmt.Errorf("compartment: :%s is required", req)
			}
		}

		c := tray.Compartment{Shape: tray.ShapeRectangle}
		for _, f := range []struct {
			kw  string
			dst *float64
		}{
			{"x", &c.X},
			{"y", &c.Y},
			{"z", &c.Z},
			{"width", &c.Width},
			{"depth", &c.Depth},
			{"height", &c.Height},
		} {
			if err := pa.float("compartment", f.kw, f.dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		if v, ok := pa.kw["shape"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compartment: shape: %w", err)
			}
			shape, err := tray.ParseShape(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compartment: %w", err)
			}
			c.Shape = shape
		}
		if v, ok := pa.kw["label"]; ok {
			label, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compartment: label: %w", err)
			}
			c.Label = label
		}

		r.Tray.Compartments = append(r.Tray.Compartments, c)
		return &zygo.SexpInt{Val: int64(len(r.Tray.Compartments))}, nil
	})

	// (clear-compartments) drops compartments inherited from the base settings.
	env.AddFunction("clear_compartments", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) > 0 {
			return zygo.SexpNull, fmt.Errorf("clear-compartments takes no arguments")
		}
		r.Tray.Compartments = []tray.Compartment{}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (honeycomb :density 0.7) enables the floor cutout.
	// (honeycomb :enabled false) turns it off again.
	// -----------------------------------------------------------------------
	env.AddFunction("honeycomb", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.check("honeycomb", "density", "enabled"); err != nil {
			return zygo.SexpNull, err
		}
		cut := r.Tray.Cutout
		cut.Enable()
		if v, ok := pa.kw["density"]; ok {
			d, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("honeycomb: density: %w", err)
			}
			if err := cut.EnableWithDensity(d); err != nil {
				return zygo.SexpNull, fmt.Errorf("honeycomb: %w", err)
			}
		}
		if v, ok := pa.kw["enabled"]; ok {
			on, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("honeycomb: enabled: %w", err)
			}
			if !on {
				cut.Disable()
			}
		}
		r.Tray.Cutout = cut
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (boardgame :card-size "63.5x88" :sleeved true :quantity 60 :token-wells 4)
	// -----------------------------------------------------------------------
	env.AddFunction("boardgame", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.check("boardgame", "card-size", "sleeved", "quantity", "token-wells"); err != nil {
			return zygo.SexpNull, err
		}
		b := r.Boardgame
		if v, ok := pa.kw["card-size"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boardgame: card-size: %w", err)
			}
			b.CardSize = s
		}
		if v, ok := pa.kw["sleeved"]; ok {
			on, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boardgame: sleeved: %w", err)
			}
			b.Sleeved = on
		}
		if v, ok := pa.kw["quantity"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boardgame: quantity: %w", err)
			}
			b.Quantity = n
		}
		if v, ok := pa.kw["token-wells"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boardgame: token-wells: %w", err)
			}
			b.TokenWells = n
		}
		r.Boardgame = b
		return zygo.SexpNull, nil
	})
}
