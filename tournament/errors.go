/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import "errors"

var (
	// ErrInvalidResultCode is returned for a result outside the accepted
	// vocabulary; nothing is mutated.
	ErrInvalidResultCode = errors.New("tournament: invalid result code")

	// ErrStateViolation is returned when the tournament or round is in a
	// state that forbids the requested operation.
	ErrStateViolation = errors.New("tournament: operation not allowed in current state")

	ErrNotFound        = errors.New("tournament: not found")
	ErrInvalidArgument = errors.New("tournament: invalid argument")
)
