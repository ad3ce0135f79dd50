/*
Copyright 2024 The typesniff Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package typesniff

import (
	"io"

	"go4.org/readerutil"
)

// ReaderAtSource adapts a go4.org/readerutil.SizeReaderAt — the same
// bounded, known-length source abstraction perkeep.org/internal/media/audio
// takes as its GetMediaTags parameter — into a Peeker. It is the right
// choice whenever the whole source is addressable up front: an *os.File, an
// in-memory blob, anything with a stable size.
type ReaderAtSource struct {
	r readerutil.SizeReaderAt
}

// NewReaderAtSource wraps r as a Peeker.
func NewReaderAtSource(r readerutil.SizeReaderAt) *ReaderAtSource {
	return &ReaderAtSource{r: r}
}

// Length implements Peeker.
func (s *ReaderAtSource) Length() (int64, bool) {
	return s.r.Size(), true
}

// Peek implements Peeker, resolving negative offsets against Size().
func (s *ReaderAtSource) Peek(offset int64, length int) ([]byte, bool) {
	if length < 0 {
		return nil, false
	}
	size := s.r.Size()
	if offset < 0 {
		offset += size
	}
	if offset < 0 || length == 0 {
		if length == 0 && offset >= 0 && offset <= size {
			return []byte{}, true
		}
		return nil, false
	}
	if offset+int64(length) > size {
		return nil, false
	}
	buf := make([]byte, length)
	n, err := s.r.ReadAt(buf, offset)
	if n != length || (err != nil && err != io.EOF) {
		return nil, false
	}
	return buf, true
}

// StreamSource is a Peeker over an io.Reader whose total length is not
// known up front — a network socket, a pipe. It buffers bytes on demand
// as probes request windows further into the stream, and only then does
// Length become known (spec.md §4.1: "None for unbounded/streaming
// sources" until the source is exhausted). Negative offsets cannot be
// resolved before the stream has been fully drained, since they are
// defined relative to total length.
//
// StreamSource is not safe for concurrent use; each recognition run should
// have its own, mirroring Aggregator.
type StreamSource struct {
	r   io.Reader
	buf []byte
	eof bool
}

// NewStreamSource returns a StreamSource reading from r on demand.
func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{r: r}
}

// Length implements Peeker.
func (s *StreamSource) Length() (int64, bool) {
	if !s.eof {
		return 0, false
	}
	return int64(len(s.buf)), true
}

// Peek implements Peeker, pulling more bytes from the underlying reader as
// needed. Once returned, a window is a copy and is never invalidated by a
// later fill.
func (s *StreamSource) Peek(offset int64, length int) ([]byte, bool) {
	if length < 0 {
		return nil, false
	}
	if offset < 0 {
		if !s.eof {
			return nil, false
		}
		offset += int64(len(s.buf))
		if offset < 0 {
			return nil, false
		}
	}
	end := offset + int64(length)
	if end < 0 {
		return nil, false
	}
	s.fill(end)
	if end > int64(len(s.buf)) {
		return nil, false
	}
	out := make([]byte, length)
	copy(out, s.buf[offset:end])
	return out, true
}

// fill grows the buffer until it holds at least upTo bytes or the
// underlying reader is exhausted.
func (s *StreamSource) fill(upTo int64) {
	if s.eof || int64(len(s.buf)) >= upTo {
		return
	}
	need := upTo - int64(len(s.buf))
	chunk := make([]byte, need)
	n, err := io.ReadFull(s.r, chunk)
	s.buf = append(s.buf, chunk[:n]...)
	if err != nil {
		s.eof = true
	}
}
