// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/telekom/hoptrace/internal/traceroute"
)

// describeError turns the fatal errors of a discovery into messages for the user.
func describeError(err error) string {
	var (
		resErr    *traceroute.ResolutionError
		compatErr *traceroute.CompatibilityError
		privErr   *traceroute.PrivilegeError
	)
	switch {
	case errors.As(err, &resErr):
		if resErr.Err == nil {
			return fmt.Sprintf("Unable to resolve host %s", resErr.Host)
		}
		return fmt.Sprintf("Unable to resolve host %s: %v", resErr.Host, resErr.Err)
	case errors.As(err, &compatErr):
		return fmt.Sprintf("Raw sockets not compatible with OS %s", compatErr.Platform)
	case errors.As(err, &privErr):
		return fmt.Sprintf("Missing privileges to open raw ICMP sockets, run as root or grant CAP_NET_RAW: %v", privErr.Err)
	case errors.Is(err, traceroute.ErrNotReached):
		return "Destination not reached within the hop budget"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
