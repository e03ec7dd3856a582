// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test contains helpers shared by the tests of all packages.
package test

import (
	"net/url"
	"testing"
)

// MarkAsShort skips long running tests when the tests run with -short.
func MarkAsShort(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping long running test in short mode")
	}
}

// ToURLOrFail parses a URI string and returns a URL object.
// It fails the test if the parsing fails.
func ToURLOrFail(t testing.TB, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatalf("failed to parse URL %q: %v", s, err)
	}
	return u
}
