/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a text logger on stderr at the given level. An
// unparsable level falls back to info and says so.
func NewLogger(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		l.SetLevel(logrus.InfoLevel)
		l.WithError(err).Warn("invalid log level; using info")
		return l
	}
	l.SetLevel(lvl)

	return l
}

// DiscardLogger returns a logger that drops everything. Library types use
// it when the caller passes no logger.
func DiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}
