// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package test

import (
	"io"
	"io/fs"
	"sync"
)

// MockFS provides a mock implementation of the fs.FS interface.
type MockFS struct {
	// OpenFunc allows for customizing the behavior of the Open method.
	OpenFunc func(name string) (fs.File, error)
}

// Open calls the OpenFunc field of the MockFS struct.
func (m *MockFS) Open(name string) (fs.File, error) {
	return m.OpenFunc(name)
}

// NewContentFS returns a file system whose files always contain the
// current content, so tests can change a file between two reads.
func NewContentFS(name string, content *Content) *MockFS {
	return &MockFS{
		OpenFunc: func(n string) (fs.File, error) {
			if n != name {
				return nil, fs.ErrNotExist
			}
			return &MockFile{Content: content.Get()}, nil
		},
	}
}

// Content is file content that can be swapped concurrently.
type Content struct {
	mu sync.Mutex
	b  []byte
}

// Set replaces the content.
func (c *Content) Set(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.b = []byte(s)
}

// Get returns a copy of the content.
func (c *Content) Get() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.b...)
}

// MockFile is a mock implementation of the fs.File interface.
type MockFile struct {
	// Content simulates the content of the file. Read operations will return data from this slice.
	Content []byte
	// ReadErr is returned by Read instead of any content.
	ReadErr error
	// readPos tracks the current position in Content.
	readPos int

	// CloseFunc optionally simulates closing the file, including errors.
	CloseFunc func() error
}

// Read copies bytes from Content into b, starting at the current read position.
// Once all content has been read, subsequent calls return io.EOF.
func (mf *MockFile) Read(b []byte) (int, error) {
	if mf.ReadErr != nil {
		return 0, mf.ReadErr
	}
	if mf.readPos >= len(mf.Content) {
		return 0, io.EOF
	}
	n := copy(b, mf.Content[mf.readPos:])
	mf.readPos += n
	return n, nil
}

// Close simulates closing the file.
func (mf *MockFile) Close() error {
	if mf.CloseFunc != nil {
		return mf.CloseFunc()
	}
	return nil
}

func (mf *MockFile) Stat() (fs.FileInfo, error) {
	return nil, fs.ErrInvalid
}
