package engine

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/abenics/pkg/gear"
)

// Job is one gear-pair generation request. Params are raw; validation
// happens once, in gear.Derive, when the job is executed.
type Job struct {
	Name   string
	Params gear.Params
}

// Plan is the full output of a script evaluation: the gear jobs in
// declaration order.
type Plan struct {
	Jobs []Job
}

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource transforms the Lisp source before handing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal).
//     This avoids registering keyword symbols as globals, and keeps
//     hyphenated keywords like :pressure-angle out of zygomys's
//     identifier rules.
//
//  2. Comment conversion: ; line comments become // comments, which is
//     what zygomys expects.
//
// Both transformations respect string literal boundaries.
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
		// Convert ; line comments to // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
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
		if b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, []byte(kwPrefix)...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
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

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string. Returns the
// keyword name (without prefix) and true if it is.
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

// kwArgs holds the result of parsing a keyword argument list.
type kwArgs struct {
	kw map[string]zygo.Sexp
}

// parseArgs collects keyword arguments. A keyword at the end of the list
// with no value is treated as a flag with a nil value.
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
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			i++
		}
	}
	return result
}

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

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// defaultJob mirrors the parameter defaults of the dialog surface:
// pressure angle 20 deg, module 1, 40 drive teeth, ratio 2, thickness 4,
// bore 4, 36 engrave steps.
func defaultJob() Job {
	return Job{
		Name: "abenics",
		Params: gear.Params{
			PressureAngle: 20 * math.Pi / 180,
			Module:        1.0,
			Backlash:      0,
			Thickness:     4.0,
			BoreDiameter:  4.0,
			TeethDrive:    40,
			GearRatio:     2.0,
			Steps:         36,
		},
	}
}

// registerBuiltins installs the gear DSL builtins into a zygomys
// environment. The builtins append jobs to the provided Plan during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens become recognizable string
// literals.
func registerBuiltins(env *zygo.Zlisp, plan *Plan) {

	// -----------------------------------------------------------------------
	// (abenics :name "demo" :module 1.0 :pressure-angle 20 :backlash 0.05
	//          :teeth 20 :ratio 2.0 :thickness 4 :bore 4 :steps 36)
	// -----------------------------------------------------------------------
	env.AddFunction("abenics", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		job := defaultJob()

		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: name: %w", err)
			}
			job.Name = s
		}
		if v, ok := pa.kw["pressure-angle"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: pressure-angle: %w", err)
			}
			job.Params.PressureAngle = f * math.Pi / 180
		}
		if v, ok := pa.kw["module"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: module: %w", err)
			}
			job.Params.Module = f
		}
		if v, ok := pa.kw["backlash"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: backlash: %w", err)
			}
			job.Params.Backlash = f
		}
		if v, ok := pa.kw["thickness"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: thickness: %w", err)
			}
			job.Params.Thickness = f
		}
		if v, ok := pa.kw["bore"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: bore: %w", err)
			}
			job.Params.BoreDiameter = f
		}
		if v, ok := pa.kw["teeth"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: teeth: %w", err)
			}
			job.Params.TeethDrive = n
		}
		if v, ok := pa.kw["ratio"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: ratio: %w", err)
			}
			job.Params.GearRatio = f
		}
		if v, ok := pa.kw["steps"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: steps: %w", err)
			}
			job.Params.Steps = n
		}
		if v, ok := pa.kw["samples"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("abenics: samples: %w", err)
			}
			job.Params.FlankSamples = n
		}

		plan.Jobs = append(plan.Jobs, job)
		return &zygo.SexpStr{S: job.Name}, nil
	})
}
