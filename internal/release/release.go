// Package release holds the product version and the per-platform download
// URLs. It is the single place to bump when a new build ships; both HTTP
// handlers and the fulfillment email read from the Catalog built here.
//
// Dependency rule: release imports nothing from internal/.
package release

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DefaultVersion is the currently shipped Carbonator build.
const DefaultVersion = "2.2.0"

// releaseBase is the GitHub releases download prefix. Tags are "v" + version.
const releaseBase = "https://github.com/mixedbysoda-stack/carbonator/releases/download"

// Platform identifies a supported installer target.
type Platform string

const (
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "windows"
)

// Platforms is the fixed, ordered set of platforms every catalog must cover.
var Platforms = []Platform{PlatformMac, PlatformWindows}

// Catalog is an immutable version + download URL mapping. Construct with New,
// ForVersion, or Default; the zero value is not useful.
type Catalog struct {
	version   string
	downloads map[Platform]string
}

// New validates and returns a Catalog. Every platform in Platforms must be
// present, no unknown platform may appear, and every URL must contain the
// version string.
func New(version string, downloads map[Platform]string) (Catalog, error) {
	if strings.TrimSpace(version) == "" {
		return Catalog{}, errors.New("release: version must not be empty")
	}

	var errs []error
	for _, p := range Platforms {
		if _, ok := downloads[p]; !ok {
			errs = append(errs, fmt.Errorf("release: missing download url for %s", p))
		}
	}
	for p, url := range downloads {
		if !slices.Contains(Platforms, p) {
			errs = append(errs, fmt.Errorf("release: unknown platform %q", p))
			continue
		}
		if !strings.Contains(url, version) {
			errs = append(errs, fmt.Errorf("release: %s url %q does not reference version %s", p, url, version))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Catalog{}, err
	}

	return Catalog{version: version, downloads: maps.Clone(downloads)}, nil
}

// ForVersion builds a Catalog for version using the canonical GitHub release
// layout. The Windows archive name is unversioned; the version still appears
// in the release tag segment of its URL.
func ForVersion(version string) (Catalog, error) {
	tag := releaseBase + "/v" + version
	return New(version, map[Platform]string{
		PlatformMac:     fmt.Sprintf("%s/Carbonator-v%s-Installer.pkg", tag, version),
		PlatformWindows: tag + "/Carbonator-Windows-Installer.zip",
	})
}

// Default returns the catalog for DefaultVersion. It panics only if the
// canonical URL rule itself is broken, which the package tests guard.
func Default() Catalog {
	c, err := ForVersion(DefaultVersion)
	if err != nil {
		panic(err)
	}
	return c
}

// Version returns the product version, e.g. "2.2.0".
func (c Catalog) Version() string { return c.version }

// URL returns the download URL for p, or "" if p is not in the catalog.
func (c Catalog) URL(p Platform) string { return c.downloads[p] }

// Downloads returns a copy of the platform → URL mapping. Callers may mutate
// the result freely.
func (c Catalog) Downloads() map[Platform]string {
	return maps.Clone(c.downloads)
}
