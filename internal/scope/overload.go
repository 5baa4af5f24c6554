// Package scope implements the three nested scope kinds of spec.md §3/§4.4
// — GlobalScope, ProgramScope, LocalScope — as a flat parent chain (spec.md
// §9's "scope chain as tagged sum"), plus the overload-resolution algorithm
// shared by GlobalScope (external methods) and ProgramScope (user
// functions).
package scope

import (
	"fmt"

	"github.com/cwbudde/vc/internal/types"
)

// ResolutionError reports an overload-resolution failure: either no
// candidate was compatible ("unresolved") or more than one remained after
// the dominance pass ("ambiguous").
type ResolutionError struct {
	Name      string
	Ambiguous bool
}

func (e *ResolutionError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("ambiguous call to %q", e.Name)
	}
	return fmt.Sprintf("no matching overload for %q", e.Name)
}

// ResolveOverload implements spec.md §4.4's algorithm over candidates
// (same-name signatures of any arity; step 1 drops mismatched arities), returning the
// index into candidates of the selected signature.
//
//  1. Gather S: candidates compatible with actual (arity + each arg
//     equal-or-coercible).
//  2. If any candidate in S is an exact match, select it immediately.
//  3. Otherwise run a pairwise-dominance pass over S to narrow to one
//     "best so far", tracking ambiguity when two candidates' argument-wise
//     preferences conflict.
//  4. If exactly one candidate remains, select it; otherwise error
//     (ambiguous if more than one remains, unresolved if S was empty).
func ResolveOverload(name string, candidates []types.Signature, actual []types.Type) (int, error) {
	var compatible []int
	for i, c := range candidates {
		if c.Compatible(actual) {
			compatible = append(compatible, i)
		}
	}
	if len(compatible) == 0 {
		return 0, &ResolutionError{Name: name}
	}

	for _, i := range compatible {
		if candidates[i].ExactMatch(actual) {
			return i, nil
		}
	}

	best := []int{compatible[0]}
	for _, c := range compatible[1:] {
		best = admit(candidates, best, c, actual)
	}

	if len(best) == 1 {
		return best[0], nil
	}
	return 0, &ResolutionError{Name: name, Ambiguous: true}
}

// preference is the pointwise vote of one argument position comparing
// candidate c against an existing best b.
type preference int

const (
	prefNone preference = iota
	prefC               // this argument votes for c over b
	prefB               // this argument votes for b over c
)

// admit folds candidate c into the working "best so far" set, per spec.md
// §4.4 step 3: c may eliminate some existing bests, be eliminated by one,
// or join the set when votes conflict (Ambiguous).
func admit(candidates []types.Signature, best []int, c int, actual []types.Type) []int {
	next := make([]int, 0, len(best)+1)
	cDominatesAll := true
	cIsDominated := false

	for _, b := range best {
		switch dominance(candidates[c], candidates[b], actual) {
		case prefC:
			// c strictly better than b: drop b, keep going.
			continue
		case prefB:
			cDominatesAll = false
			cIsDominated = true
			next = append(next, b)
		default: // ambiguous between c and b: both survive
			cDominatesAll = false
			next = append(next, b)
		}
	}

	if cDominatesAll {
		return []int{c}
	}
	if !cIsDominated {
		next = append(next, c)
	}
	return next
}

// dominance compares two candidate signatures argument-by-argument: an
// argument where one candidate's parameter type exactly matches the actual
// but the other's does not votes for the exact one. A conflicting mix of
// per-argument votes (some argue for c, some for b) yields prefNone
// (ambiguous for this pair), matching spec.md §4.4 step 3.
func dominance(c, b types.Signature, actual []types.Type) preference {
	sawC, sawB := false, false
	for i, a := range actual {
		cExact := c.Args[i].Equal(a)
		bExact := b.Args[i].Equal(a)
		switch {
		case cExact && !bExact:
			sawC = true
		case bExact && !cExact:
			sawB = true
		}
	}
	switch {
	case sawC && !sawB:
		return prefC
	case sawB && !sawC:
		return prefB
	default:
		return prefNone
	}
}
