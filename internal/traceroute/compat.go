// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"strings"
)

// incompatiblePlatforms disallow unprivileged raw socket construction
// for the ICMP/UDP combination used by the engine.
var incompatiblePlatforms = [...]string{"darwin", "windows"}

// Gate rejects platforms that cannot run a discovery.
// A Gate is immutable after construction and safe for concurrent use.
type Gate struct {
	denied map[string]struct{}
}

// NewGate returns a gate denying the given platforms.
// Platform names are compared case-insensitively.
func NewGate(platforms ...string) Gate {
	denied := make(map[string]struct{}, len(platforms))
	for _, p := range platforms {
		denied[strings.ToLower(p)] = struct{}{}
	}
	return Gate{denied: denied}
}

// DefaultGate returns the gate denying all platforms known to be incompatible.
func DefaultGate() Gate {
	return NewGate(incompatiblePlatforms[:]...)
}

// Check returns a [CompatibilityError] if the platform is denied.
func (g Gate) Check(platform string) error {
	if _, ok := g.denied[strings.ToLower(platform)]; ok {
		return &CompatibilityError{Platform: platform}
	}
	return nil
}
