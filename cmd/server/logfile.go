package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// logFile is an append-only log sink bounded in size. When a write pushes
// it past maxBytes the file is rewritten to hold only the newest keepBytes,
// starting at a line boundary so no entry is left half cut.
type logFile struct {
	mu        sync.Mutex
	file      *os.File
	size      int64
	maxBytes  int64
	keepBytes int64
}

func openLogFile(path string, maxBytes, keepBytes int64) (*logFile, error) {
	if keepBytes <= 0 || keepBytes >= maxBytes {
		return nil, fmt.Errorf("log keep size %d must be positive and below max size %d", keepBytes, maxBytes)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	lf := &logFile{file: file, size: info.Size(), maxBytes: maxBytes, keepBytes: keepBytes}
	if lf.size > maxBytes {
		if err := lf.trim(); err != nil {
			file.Close()
			return nil, err
		}
	}
	return lf, nil
}

func (l *logFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.file.Write(p)
	l.size += int64(n)
	if err != nil {
		return n, err
	}
	if l.size > l.maxBytes {
		if err := l.trim(); err != nil {
			return n, fmt.Errorf("trim log file: %w", err)
		}
	}
	return n, nil
}

func (l *logFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// trim must be called with mu held.
func (l *logFile) trim() error {
	// One extra leading byte shows whether the tail already starts a line.
	tail := make([]byte, l.keepBytes+1)
	n, err := l.file.ReadAt(tail, l.size-l.keepBytes-1)
	if err != nil && err != io.EOF {
		return err
	}
	tail = tail[:n]
	if i := bytes.IndexByte(tail, '\n'); i >= 0 {
		tail = tail[i+1:]
	} else {
		tail = tail[:0]
	}

	if err := l.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND places this write at the new end, offset zero.
	written, err := l.file.Write(tail)
	l.size = int64(written)
	return err
}
