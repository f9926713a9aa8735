/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDateOrZero returns a parsed time or zero if input is empty or "null".
func ParseDateOrZero(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	return dateparse.ParseAny(s)
}

// ScoreToString renders a tournament score using ½ for half points, e.g.
// 1.5 -> "1½" and 0.5 -> "½".
func ScoreToString(score float64) string {
	whole, frac := math.Modf(score)
	if math.Abs(frac-0.5) > 1e-9 {
		return fmt.Sprintf("%v", score)
	}
	if whole == 0 {
		return "½"
	}

	return fmt.Sprintf("%v½", whole)
}

// NormalizeName folds case and collapses whitespace so names typed by hand
// match registered ones.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
