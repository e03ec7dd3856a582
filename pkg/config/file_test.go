// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/hoptrace/pkg/config/test"
	"github.com/telekom/hoptrace/pkg/monitor"
)

func TestNewFileLoader(t *testing.T) {
	l := NewFileLoader(&Config{Loader: LoaderConfig{Type: LoaderTypeFile, File: FileLoaderConfig{Path: "config/monitor.yaml"}}}, make(chan monitor.Config, 1))

	assert.Equal(t, "config/monitor.yaml", l.path)
	assert.NotNil(t, l.cMonitor)
	assert.NotNil(t, l.fsys)
	assert.NotNil(t, l.fetch)
}

func TestFileLoader_Run(t *testing.T) {
	base := monitor.DefaultConfig()
	want := base
	want.Targets = []string{"example.com", "10.0.0.1"}
	want.Interval = time.Minute

	tests := []struct {
		name    string
		file    *test.MockFile
		want    *monitor.Config
		wantErr bool
	}{
		{
			name: "Loads config from file",
			file: &test.MockFile{Content: []byte("targets:\n  - example.com\n  - 10.0.0.1\ninterval: 1m\n")},
			want: &want,
		},
		{
			name:    "Malformed yaml",
			file:    &test.MockFile{Content: []byte("targets: [example.com\n")},
			wantErr: true,
		},
		{
			name:    "Invalid monitor configuration",
			file:    &test.MockFile{Content: []byte("targets:\n  - bad..host\n")},
			wantErr: true,
		},
		{
			name:    "Read error",
			file:    &test.MockFile{ReadErr: errors.New("i/o error")},
			wantErr: true,
		},
		{
			name: "Close error",
			file: &test.MockFile{
				Content:   []byte("targets:\n  - example.com\n"),
				CloseFunc: func() error { return errors.New("close failed") },
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cMonitor := make(chan monitor.Config, 1)
			l := NewFileLoader(&Config{
				Monitor: base,
				Loader:  LoaderConfig{Type: LoaderTypeFile, File: FileLoaderConfig{Path: "config/monitor.yaml"}},
			}, cMonitor)
			l.fsys = &test.MockFS{OpenFunc: func(name string) (fs.File, error) {
				assert.Equal(t, "monitor.yaml", name)
				return tt.file, nil
			}}

			err := l.Run(t.Context())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, cMonitor)
				return
			}
			require.NoError(t, err)

			got := <-cMonitor
			if diff := cmp.Diff(*tt.want, got); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileLoader_Run_reload(t *testing.T) {
	var content test.Content
	content.Set("targets:\n  - example.com\n")

	cMonitor := make(chan monitor.Config, 1)
	l := NewFileLoader(&Config{
		Monitor: monitor.DefaultConfig(),
		Loader: LoaderConfig{
			Type:     LoaderTypeFile,
			Interval: time.Minute,
			File:     FileLoaderConfig{Path: "monitor.yaml"},
		},
	}, cMonitor)
	l.fsys = test.NewContentFS("monitor.yaml", &content)
	mc := clock.NewMock()
	l.clock = mc

	cErr := make(chan error, 1)
	go func() { cErr <- l.Run(t.Context()) }()

	first := <-cMonitor
	assert.Equal(t, []string{"example.com"}, first.Targets)

	content.Set("targets:\n  - example.org\n")
	var second monitor.Config
	require.Eventually(t, func() bool {
		mc.Add(time.Minute)
		select {
		case second = <-cMonitor:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"example.org"}, second.Targets)

	l.Shutdown(t.Context())
	select {
	case err := <-cErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loader did not stop after shutdown")
	}
}
