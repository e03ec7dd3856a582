// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidName is returned when the instance name is invalid
	ErrInvalidName = errors.New("invalid instance name")
	// ErrInvalidTraceOptions is returned when the trace options are invalid
	ErrInvalidTraceOptions = errors.New("invalid trace options")
	// ErrInvalidNameserver is returned when the nameserver is not a host or host:port
	ErrInvalidNameserver = errors.New("invalid nameserver")
	// ErrInvalidResolverTimeout is returned when the resolver timeout is invalid
	ErrInvalidResolverTimeout = errors.New("invalid resolver timeout")
	// ErrInvalidCacheSize is returned when the resolver cache size is negative
	ErrInvalidCacheSize = errors.New("invalid resolver cache size")
	// ErrInvalidLoaderType is returned when the loader type is unknown
	ErrInvalidLoaderType = errors.New("invalid loader type")
	// ErrInvalidLoaderInterval is returned when the loader interval is invalid
	ErrInvalidLoaderInterval = errors.New("invalid loader interval")
	// ErrInvalidLoaderHttpURL is returned when the loader http url is invalid
	ErrInvalidLoaderHttpURL = errors.New("invalid loader http url")
	// ErrInvalidLoaderHttpRetryCount is returned when the loader http retry count is invalid
	ErrInvalidLoaderHttpRetryCount = errors.New("invalid loader http retry count")
	// ErrInvalidLoaderFilePath is returned when the loader file path is invalid
	ErrInvalidLoaderFilePath = errors.New("invalid loader file path")
)
