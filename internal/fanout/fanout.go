// Package fanout runs independent store calls concurrently behind an explicit
// join barrier.
package fanout

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Branch is one named unit of work.
type Branch struct {
	Name string
	Fn   func(ctx context.Context) error
}

// BranchError records the failure of a single branch.
type BranchError struct {
	Name string
	Err  error
}

func (e *BranchError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }

func (e *BranchError) Unwrap() error { return e.Err }

// Run starts every branch and returns only once all have finished. A failing
// branch does not cancel its siblings; every failure is returned, joined, in
// branch order. limit bounds how many branches run at once (<= 0 means no
// bound). Nil branch functions are skipped.
func Run(ctx context.Context, limit int, branches ...Branch) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	errs := make([]error, len(branches))
	for i, b := range branches {
		if b.Fn == nil {
			continue
		}
		g.Go(func() error {
			if err := b.Fn(ctx); err != nil {
				errs[i] = &BranchError{Name: b.Name, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Branches reports the names of every failed branch in err.
func Branches(err error) []string {
	var names []string
	for _, be := range Errors(err) {
		names = append(names, be.Name)
	}
	return names
}

// Errors flattens err into its branch failures, in branch order.
func Errors(err error) []*BranchError {
	if err == nil {
		return nil
	}
	var out []*BranchError
	var visit func(error)
	visit = func(e error) {
		switch x := e.(type) {
		case *BranchError:
			out = append(out, x)
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				visit(inner)
			}
		case interface{ Unwrap() error }:
			if inner := x.Unwrap(); inner != nil {
				visit(inner)
			}
		}
	}
	visit(err)
	return out
}
