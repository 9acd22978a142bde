// Package sink provides the byte sinks the event writer drains trace JSON
// into: a plain buffered file and a gzip-wrapped variant, mirroring a
// transport layer's separation of a "base" stream from its compression
// wrapping (a pattern also seen layering a compression wrapper over an
// underlying connection).
/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package sink

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Sink is the minimal contract the event writer needs from an output
// destination: buffered writes, and an explicit Close that also flushes.
// The writer never performs small unbuffered writes directly to the
// underlying file.
type Sink interface {
	io.Writer
	Flush() error
	Close() error
}

// plainSink wraps a buffered writer over an *os.File.
type plainSink struct {
	f  *os.File
	bw *bufio.Writer
}

// NewFile opens path for writing (truncating any existing file) and wraps
// it in a buffered sink.
func NewFile(path string) (Sink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &plainSink{f: f, bw: bufio.NewWriterSize(f, 64*1024)}, nil
}

func (s *plainSink) Write(p []byte) (int, error) { return s.bw.Write(p) }
func (s *plainSink) Flush() error                { return s.bw.Flush() }
func (s *plainSink) Close() error {
	if err := s.bw.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// gzipSink wraps a plain sink's underlying file in a gzip writer using
// default compression settings.
type gzipSink struct {
	f  *os.File
	gw *gzip.Writer
	bw *bufio.Writer
}

// NewGzipFile opens path for writing and wraps it in a buffered gzip sink.
// Passing this sink to Start is how a gzip-compressed trace
// (JSONTraceFileCompressedFormat) is produced.
func NewGzipFile(path string) (Sink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriterSize(f, 64*1024)
	gw := gzip.NewWriter(bw)
	return &gzipSink{f: f, gw: gw, bw: bw}, nil
}

func (s *gzipSink) Write(p []byte) (int, error) { return s.gw.Write(p) }
func (s *gzipSink) Flush() error {
	if err := s.gw.Flush(); err != nil {
		return err
	}
	return s.bw.Flush()
}
func (s *gzipSink) Close() error {
	if err := s.gw.Close(); err != nil {
		s.f.Close()
		return err
	}
	if err := s.bw.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
