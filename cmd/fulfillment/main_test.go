package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/release"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// A nil slice makes cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestPreviewEmail_RendersReceipt(t *testing.T) {
	out := execute(t, previewEmailCmd(),
		"--email", "buyer@example.com", "--amount", "2000", "--order", "cs_test_123", "--year", "2026")

	catalog := release.Default()
	assert.Contains(t, out, catalog.URL(release.PlatformMac))
	assert.Contains(t, out, catalog.URL(release.PlatformWindows))
	assert.Contains(t, out, "$20.00")
	assert.Contains(t, out, "cs_test_123")
	assert.Contains(t, out, "&copy; 2026")
}

func TestPreviewEmail_ZeroAmountUsesFallback(t *testing.T) {
	out := execute(t, previewEmailCmd(), "--amount", "0", "--year", "2026")
	assert.Contains(t, out, "$20.00")
}

func TestReleaseCmd_JSON(t *testing.T) {
	out := execute(t, releaseCmd(), "--json", "--version", "9.9.9")

	var got struct {
		Version   string            `json:"version"`
		Downloads map[string]string `json:"downloads"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "9.9.9", got.Version)
	assert.Contains(t, got.Downloads["mac"], "v9.9.9")
	assert.Contains(t, got.Downloads["windows"], "v9.9.9")
}

func TestReleaseCmd_Text(t *testing.T) {
	out := execute(t, releaseCmd())
	assert.Contains(t, out, "version: "+release.DefaultVersion)
	assert.Contains(t, out, "windows:")
}
