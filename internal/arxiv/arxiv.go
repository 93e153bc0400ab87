// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv classifies arXiv identifiers and resolves them to
// e-print and API endpoints.
package arxiv

import (
	"regexp"
	"strings"
)

// Base URLs for identifier resolution. Declared as vars so tests can
// substitute httptest servers.
var (
	EPrintBase = "https://arxiv.org/e-print/"
	APIBase    = "https://export.arxiv.org/api/query"
	AbsBase    = "https://arxiv.org/abs/"
)

// newIDPattern matches new-style arXiv IDs: "2310.20256", "arXiv:2310.20256",
// "2310.20256v2".
var newIDPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5})(v\d+)?$`)

// oldIDPattern matches pre-2007 IDs: "math/0211159", "cond-mat/9901001v3",
// "math.GT/0309136".
var oldIDPattern = regexp.MustCompile(`^(?:arXiv:)?([a-z-]+(?:\.[A-Z]{2})?/\d{7})(v\d+)?$`)

// ID is a validated arXiv identifier.
type ID struct {
	// Canonical is the identifier without the arXiv: prefix, version kept
	// (e.g. "2310.20256v2", "math/0211159").
	Canonical string

	// Base is the identifier without the version suffix.
	Base string

	// Version is the "vN" suffix, or empty when unversioned.
	Version string
}

// Parse validates and normalizes an arXiv identifier. It accepts new-style
// and old-style IDs, an optional "arXiv:" prefix, and an optional version
// suffix. ok is false for anything else.
func Parse(identifier string) (id ID, ok bool) {
	identifier = strings.TrimSpace(identifier)

	for _, pat := range []*regexp.Regexp{newIDPattern, oldIDPattern} {
		if m := pat.FindStringSubmatch(identifier); m != nil {
			return ID{
				Canonical: m[1] + m[2],
				Base:      m[1],
				Version:   m[2],
			}, true
		}
	}
	return ID{}, false
}

// Slug returns a filesystem-safe filename stem for the identifier.
// Old-style IDs contain a slash, which is replaced with a hyphen.
func (id ID) Slug() string {
	return strings.ReplaceAll(id.Canonical, "/", "-")
}

// EPrintURL returns the source archive download URL for the identifier.
func (id ID) EPrintURL() string {
	return EPrintBase + id.Canonical
}

// AbsURL returns the abstract page URL for the identifier.
func (id ID) AbsURL() string {
	return AbsBase + id.Canonical
}

func (id ID) String() string {
	return id.Canonical
}
