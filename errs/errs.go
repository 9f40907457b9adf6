package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error taxonomy of the MF query compiler and executor. Every error returned
// by the planner or the executor is marked with exactly one of the following
// sentinels, callers use errors.Is to branch on the class. The message always
// carries the stage and the offending field/predicate text.
//
//   ErrSpec             malformed query spec, detected before any scan
//   ErrPredicateSyntax  filter/having text outside of the supported grammar
//   ErrReference        predicate or select list names an unallocated field
//   ErrRow              a row cannot be processed during a scan
var (
	ErrSpec            = errors.New("spec error")
	ErrPredicateSyntax = errors.New("predicate syntax error")
	ErrReference       = errors.New("reference error")
	ErrRow             = errors.New("row error")
)

const (
	KindUnknown = iota
	KindSpec
	KindPredicateSyntax
	KindReference
	KindRow
)

func mark(
	sentinel error,
	stage string,
	f string,
	args ...interface{},
) error {
	msg := fmt.Sprintf(f, args...)
	return errors.Mark(
		errors.Newf("stage(%s): %s", stage, msg),
		sentinel,
	)
}

func Spec(stage string, f string, args ...interface{}) error {
	return mark(ErrSpec, stage, f, args...)
}

func PredicateSyntax(stage string, f string, args ...interface{}) error {
	return mark(ErrPredicateSyntax, stage, f, args...)
}

func Reference(stage string, f string, args ...interface{}) error {
	return mark(ErrReference, stage, f, args...)
}

func Row(stage string, f string, args ...interface{}) error {
	return mark(ErrRow, stage, f, args...)
}

// Hint attaches a user facing hint, shown by the command line front end
func Hint(err error, hint string) error {
	return errors.WithHint(err, hint)
}

func Hints(err error) []string {
	return errors.GetAllHints(err)
}

// Kind returns the taxonomy class of err, KindUnknown for foreign errors
// (I/O failures of a row source for example).
func Kind(err error) int {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrSpec):
		return KindSpec
	case errors.Is(err, ErrPredicateSyntax):
		return KindPredicateSyntax
	case errors.Is(err, ErrReference):
		return KindReference
	case errors.Is(err, ErrRow):
		return KindRow
	default:
		return KindUnknown
	}
}

func KindName(k int) string {
	switch k {
	case KindSpec:
		return "spec"
	case KindPredicateSyntax:
		return "predicate-syntax"
	case KindReference:
		return "reference"
	case KindRow:
		return "row"
	default:
		return "unknown"
	}
}
