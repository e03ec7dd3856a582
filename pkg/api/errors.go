// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned when the listening address is not a host:port pair.
	ErrInvalidAddress = errors.New("invalid listening address")
	// ErrInvalidRoute is returned when a route is registered without path, method or handler.
	ErrInvalidRoute = errors.New("invalid route")
)

// ErrCreateOpenapiSchema is returned when the OpenAPI document of a
// component cannot be generated.
type ErrCreateOpenapiSchema struct {
	Name string
	Err  error
}

func (e ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to get schema for %s: %v", e.Name, e.Err)
}

func (e ErrCreateOpenapiSchema) Unwrap() error {
	return e.Err
}
