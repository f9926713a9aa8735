/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreToString(t *testing.T) {
	for in, want := range map[float64]string{
		0:   "0",
		0.5: "½",
		1:   "1",
		1.5: "1½",
		4:   "4",
		3.5: "3½",
	} {
		assert.Equal(t, want, ScoreToString(in), "score %v", in)
	}
}

func TestParseDateOrZero(t *testing.T) {
	z, err := ParseDateOrZero("")
	require.NoError(t, err)
	assert.True(t, z.IsZero())

	z, err = ParseDateOrZero("null")
	require.NoError(t, err)
	assert.True(t, z.IsZero())

	d, err := ParseDateOrZero("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 14, d.Day())

	_, err = ParseDateOrZero("not a date")
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "cho chikun", NormalizeName("  Cho   Chikun "))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv,
		[]byte("TD_STORE=memory\nTD_GLICKO_TAU=0.3\nTD_RATING_PERIOD=tournament\n"),
		0600))
	t.Setenv("TD_LOG_LEVEL", "debug")
	// .env never overrides the real environment
	t.Setenv("TD_RATING_PERIOD", "round")

	cfg, err := LoadConfig(dotenv)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.InDelta(t, 0.3, cfg.GlickoTau, 1e-9)
	assert.Equal(t, "round", cfg.RatingPeriod)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12*time.Hour, cfg.RosterCacheTTL())

	// godotenv.Load set these for the process; clear them for other tests
	os.Unsetenv("TD_STORE")
	os.Unsetenv("TD_GLICKO_TAU")
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Store: StoreS3, GlickoTau: 0.5}
	assert.Error(t, cfg.Validate())

	cfg.Bucket = "td-bucket"
	assert.NoError(t, cfg.Validate())

	cfg.Store = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = Config{Store: StoreDisk, GlickoTau: 0}
	assert.Error(t, cfg.Validate())
}

func TestConfigDataPath(t *testing.T) {
	cfg := Config{DataDir: "/var/lib/td"}
	p, err := cfg.DataPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/td", p)
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, NewLogger("warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("chatty").GetLevel())
}
