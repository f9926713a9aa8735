/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package pairing

type pairKey struct {
	lo, hi string
}

func keyOf(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}

	return pairKey{lo: a, hi: b}
}

// History is a set of unordered player pairs that have already met.
type History map[pairKey]struct{}

func NewHistory() History {
	return make(History)
}

// Add records that a and b played; byes (an empty id) are ignored.
func (h History) Add(a, b string) {
	if a == "" || b == "" || a == b {
		return
	}
	h[keyOf(a, b)] = struct{}{}
}

func (h History) Has(a, b string) bool {
	_, ok := h[keyOf(a, b)]
	return ok
}
