// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotReached is returned when the hop budget is exhausted before
// the destination answered.
var ErrNotReached = errors.New("destination not reached within hop budget")

// ResolutionError is returned when a host identifier cannot be turned into an address.
type ResolutionError struct {
	// Host is the offending identifier.
	Host string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unable to resolve host %q", e.Host)
	}
	return fmt.Sprintf("unable to resolve host %q: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// CompatibilityError is returned when the platform does not allow raw socket probing.
type CompatibilityError struct {
	Platform string
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("raw sockets not compatible with platform %q", e.Platform)
}

// PrivilegeError is returned when the OS denies the creation of a raw socket.
// This typically happens when the process runs without root or NET_RAW capabilities.
type PrivilegeError struct {
	Err error
}

func (e *PrivilegeError) Error() string {
	return fmt.Sprintf("insufficient privileges to open a raw ICMP socket, run as root or grant CAP_NET_RAW: %v", e.Err)
}

func (e *PrivilegeError) Unwrap() error {
	return e.Err
}

// isPermissionError checks if the error was caused by EPERM or EACCES.
func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission)
}

// isFatalError reports whether retrying a discovery cannot change its outcome.
func isFatalError(err error) bool {
	var compatErr *CompatibilityError
	var privErr *PrivilegeError
	return errors.As(err, &compatErr) || errors.As(err, &privErr)
}

// IsPermanent reports whether the error of a discovery is final: the platform is
// unsupported, privileges are missing or the hop budget was exhausted.
func IsPermanent(err error) bool {
	return isFatalError(err) || errors.Is(err, ErrNotReached)
}
