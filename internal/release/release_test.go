package release_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/release"
)

func TestDefault_CoversEveryPlatformWithVersionedURL(t *testing.T) {
	c := release.Default()

	assert.Equal(t, release.DefaultVersion, c.Version())
	for _, p := range release.Platforms {
		url := c.URL(p)
		require.NotEmpty(t, url, "platform %s", p)
		assert.Contains(t, url, "v"+release.DefaultVersion)
		assert.True(t, strings.HasPrefix(url, "https://github.com/mixedbysoda-stack/carbonator/releases/download/"))
	}
}

func TestForVersion_CanonicalURLs(t *testing.T) {
	c, err := release.ForVersion("3.0.1")
	require.NoError(t, err)

	assert.Equal(t,
		"https://github.com/mixedbysoda-stack/carbonator/releases/download/v3.0.1/Carbonator-v3.0.1-Installer.pkg",
		c.URL(release.PlatformMac))
	assert.Equal(t,
		"https://github.com/mixedbysoda-stack/carbonator/releases/download/v3.0.1/Carbonator-Windows-Installer.zip",
		c.URL(release.PlatformWindows))
}

func TestNew_RejectsURLWithoutVersion(t *testing.T) {
	_, err := release.New("2.2.0", map[release.Platform]string{
		release.PlatformMac:     "https://example.com/v2.2.0/mac.pkg",
		release.PlatformWindows: "https://example.com/latest/win.zip",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "windows")
}

func TestNew_RejectsMissingAndUnknownPlatforms(t *testing.T) {
	_, err := release.New("1.0.0", map[release.Platform]string{
		release.PlatformMac: "https://example.com/1.0.0/mac.pkg",
		"linux":             "https://example.com/1.0.0/linux.tar.gz",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing download url for windows")
	assert.Contains(t, err.Error(), `unknown platform "linux"`)
}

func TestNew_RejectsEmptyVersion(t *testing.T) {
	_, err := release.New("  ", nil)
	require.Error(t, err)
}

func TestDownloads_ReturnsCopy(t *testing.T) {
	c := release.Default()

	d := c.Downloads()
	d[release.PlatformMac] = "https://evil.example.com"

	assert.NotEqual(t, "https://evil.example.com", c.URL(release.PlatformMac))
}
