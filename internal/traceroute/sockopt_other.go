// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package traceroute

import (
	"errors"
	"syscall"
)

// setHopLimit is not supported outside of unix platforms.
func setHopLimit(_ syscall.RawConn, _ int, _ bool) error {
	return errors.ErrUnsupported
}
