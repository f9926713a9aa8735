/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result codes follow the usual Go (baduk) notation: the winner's color, a
// plus sign, and how the game ended. Black moves first.
const (
	ResultBye  = "BYE"
	ResultJigo = "JIGO"
	ResultDraw = "DRAW"
)

// Result is a parsed result code. First and Second are the points earned
// by the first and second mover.
type Result struct {
	Code   string
	First  float64
	Second float64
	Bye    bool
}

// ParseResult maps a result code to the score pair it awards. Accepted
// codes are B+R / B+T / B+F / B+<margin> (first mover wins), the same with
// W (second mover wins), Jigo or Draw, and BYE. Parsing is
// case-insensitive; Result.Code carries the canonical spelling.
func ParseResult(code string) (Result, error) {
	c := strings.ToUpper(strings.TrimSpace(code))

	switch c {
	case ResultBye:
		return Result{Code: ResultBye, First: 1, Bye: true}, nil
	case ResultJigo, ResultDraw, "=", "0.5-0.5":
		return Result{Code: ResultJigo, First: 0.5, Second: 0.5}, nil
	}

	if len(c) < 3 || c[1] != '+' {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidResultCode, code)
	}
	how := c[2:]
	switch how {
	case "R", "T", "F":
	default:
		margin, err := strconv.ParseFloat(how, 64)
		if err != nil || !(margin > 0) || math.IsInf(margin, 0) {
			return Result{}, fmt.Errorf("%w: %q", ErrInvalidResultCode, code)
		}
		how = strconv.FormatFloat(margin, 'f', -1, 64)
	}

	switch c[0] {
	case 'B':
		return Result{Code: "B+" + how, First: 1}, nil
	case 'W':
		return Result{Code: "W+" + how, Second: 1}, nil
	}

	return Result{}, fmt.Errorf("%w: %q", ErrInvalidResultCode, code)
}
