// Package error defines the error taxonomy shared by the grammar estimator
// and the PCYK parser. The package is named after the builtin interface on
// purpose, as callers never refer to it unqualified — they import it under
// an alias, e.g. `perr "github.com/nihei9/pcyk/error"`.
package error

import (
	"errors"
	"fmt"
)

// Sentinel causes. Callers use errors.Is against these to distinguish fatal
// grammar-construction failures from recoverable per-sentence failures.
var (
	// ErrMalformedTree means a training tree string could not be parsed as a
	// bracketed tree.
	ErrMalformedTree = errors.New("malformed tree")

	// ErrArityExceeded means a node has more than two children after
	// binarization, which must never happen for a correct binarization
	// scheme.
	ErrArityExceeded = errors.New("arity exceeds 2 after binarization")

	// ErrInconsistentProbability means a rule or lexicon probability sum
	// invariant (see grammar package) was violated.
	ErrInconsistentProbability = errors.New("inconsistent probability")

	// ErrUnknownTag means a rule or lexicon entry refers to a tag absent
	// from the tag<->id bijection. Indicates a bug in the estimator.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrEmptyLexicon means the OOV resolver was asked to operate over an
	// empty lexicon.
	ErrEmptyLexicon = errors.New("lexicon is empty")

	// ErrNoDerivation means the chart produced no parse for the sentence.
	ErrNoDerivation = errors.New("no derivation")
)

// ParseError pairs a cause with the 1-based input line it occurred on. A Row
// of 0 means the error isn't tied to a particular line.
type ParseError struct {
	Cause error
	Row   int
}

func (e *ParseError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("error: %v", e.Cause)
	}
	return fmt.Sprintf("%v: error: %v", e.Row, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Errors aggregates ParseErrors raised while processing a batch (e.g. every
// malformed line of a training-tree file). A nil or empty Errors is not
// itself an error; callers construct one only when len > 0.
type Errors []*ParseError

func (es Errors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	var b []byte
	for i, e := range es {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, e.Error()...)
	}
	return string(b)
}
