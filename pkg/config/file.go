// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"github.com/telekom/hoptrace/internal/logger"
	"github.com/telekom/hoptrace/pkg/monitor"
)

var _ Loader = (*FileLoader)(nil)

// FileLoader reads the monitor configuration from a local file.
type FileLoader struct {
	reloader
	path string
	fsys fs.FS
}

func NewFileLoader(cfg *Config, cMonitor chan<- monitor.Config) *FileLoader {
	f := &FileLoader{
		reloader: reloader{
			name:     LoaderTypeFile,
			config:   cfg.Loader,
			base:     cfg.Monitor,
			cMonitor: cMonitor,
			done:     make(chan struct{}, 1),
			clock:    clock.New(),
		},
		path: cfg.Loader.File.Path,
		fsys: os.DirFS(filepath.Dir(cfg.Loader.File.Path)),
	}
	f.fetch = f.readFile
	return f
}

// Run gets the monitor configuration from the local file.
func (f *FileLoader) Run(ctx context.Context) error {
	return f.run(ctx)
}

// readFile reads the configuration file.
func (f *FileLoader) readFile(ctx context.Context) (b []byte, err error) {
	log := logger.FromContext(ctx).With("path", f.path)

	file, err := f.fsys.Open(filepath.Base(f.path))
	if err != nil {
		log.ErrorContext(ctx, "Failed to open config file", "error", err)
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		cerr := file.Close()
		if cerr != nil {
			log.ErrorContext(ctx, "Failed to close config file", "error", cerr)
		}
		err = errors.Join(cerr, err)
	}()

	b, err = io.ReadAll(file)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read config file", "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return b, nil
}

func (f *FileLoader) Shutdown(ctx context.Context) {
	f.shutdown(ctx)
}
