package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/grass-estimator/internal/config"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// testConfig returns an in-memory configuration and installs it as cfg for
// the duration of the test.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	c := &config.Config{}
	c.Estimator.Backend = "upload"
	c.Estimator.BaseURL = "http://127.0.0.1:1"
	c.Estimator.FileField = "files"
	c.Pricing.Currency = "AUD"
	c.Pricing.Locale = "en-AU"
	c.Store.Driver = "memory"
	c.Store.SessionTTLHours = 1
	c.Server.Port = 8080
	c.Server.UploadRPS = 1
	c.Server.UploadBurst = 3

	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
	return c
}

// writePricing writes a pricing document and points cfg at it.
func writePricing(t *testing.T, c *config.Config, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	c.Pricing.URL = path
}

func writePhoto(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))
	return path
}
