// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pages resolves page-range expressions into normalized page
// selections.
package pages

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RangeError reports an invalid page-range expression. Token holds the
// offending piece of the expression when one can be identified.
type RangeError struct {
	Token  string
	Reason string
}

func (e *RangeError) Error() string {
	if e.Token == "" {
		return "invalid page range: " + e.Reason
	}
	return fmt.Sprintf("invalid page range %q: %s", e.Token, e.Reason)
}

// Resolve parses a page-range expression against a document's page count
// and returns a strictly ascending, deduplicated selection of 1-based page
// indices within [1, totalPages]. The expression is a comma-separated list
// of single pages ("10") and inclusive ranges ("15-20"); overlapping tokens
// are unioned. An empty expression selects every page.
//
// Resolve is pure: it performs no I/O and never modifies its inputs.
func Resolve(expr string, totalPages int) ([]int, error) {
	if totalPages < 1 {
		return nil, &RangeError{Reason: fmt.Sprintf("document reports %d pages", totalPages)}
	}

	if strings.TrimSpace(expr) == "" {
		all := make([]int, totalPages)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, &RangeError{Token: token, Reason: "empty token"}
		}

		first, last, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		if last > totalPages {
			return nil, &RangeError{
				Token:  token,
				Reason: fmt.Sprintf("page out of bounds, document has %d page(s)", totalPages),
			}
		}
		for p := first; p <= last; p++ {
			seen[p] = true
		}
	}

	selection := make([]int, 0, len(seen))
	for p := range seen {
		selection = append(selection, p)
	}
	sort.Ints(selection)
	return selection, nil
}

// parseToken parses one token as a single page or an inclusive a-b range.
func parseToken(token string) (first, last int, err error) {
	a, b, isRange := strings.Cut(token, "-")
	if !isRange {
		n, err := parsePage(token, token)
		if err != nil {
			return 0, 0, err
		}
		return n, n, nil
	}

	first, err = parsePage(strings.TrimSpace(a), token)
	if err != nil {
		return 0, 0, err
	}
	last, err = parsePage(strings.TrimSpace(b), token)
	if err != nil {
		return 0, 0, err
	}
	if first > last {
		return 0, 0, &RangeError{Token: token, Reason: "range start exceeds range end"}
	}
	return first, last, nil
}

func parsePage(s, token string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &RangeError{Token: token, Reason: "not a page number"}
	}
	if n < 1 {
		return 0, &RangeError{Token: token, Reason: "pages are numbered from 1"}
	}
	return n, nil
}
