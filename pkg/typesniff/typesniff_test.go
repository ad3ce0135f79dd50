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
	"bytes"
	"errors"
	"testing"
)

func TestRegisterDuplicateName(t *testing.T) {
	r := NewRegistry()
	reg := Registration{
		Name:    "gif",
		Rank:    RankPrimary,
		Probe:   StartsWithProbe([]byte("GIF87a"), Maximum, MustLabel("image/gif")),
		Default: MustLabel("image/gif"),
	}
	if err := r.Register(reg); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	err := r.Register(reg)
	if err == nil {
		t.Fatal("second Register with same name: got nil error, want ErrDuplicateName")
	}
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("error = %v; want wrapping ErrDuplicateName", err)
	}
}

func TestRecognizeDeterministic(t *testing.T) {
	r := NewRegistry()
	must(t, r.Register(Registration{
		Name:  "gif",
		Rank:  RankPrimary,
		Probe: StartsWithProbe([]byte("GIF89a"), Maximum, MustLabel("image/gif")),
	}))
	data := []byte("GIF89a" + "\x00\x00\x00\x00\x00\x00")

	first := r.Recognize(bytesPeeker(data))
	second := r.Recognize(bytesPeeker(data))

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("got %d and %d suggestions; want 1 and 1", len(first), len(second))
	}
	if first[0].Probability != second[0].Probability || !first[0].Label.Equal(second[0].Label) {
		t.Errorf("non-deterministic: %+v vs %+v", first[0], second[0])
	}
	if first[0].Probability != Maximum {
		t.Errorf("probability = %v; want Maximum", first[0].Probability)
	}
}

func TestRecognizeRankOrderingAndBest(t *testing.T) {
	r := NewRegistry()
	// Two probes that both match; the higher-rank one should win ties.
	must(t, r.Register(Registration{
		Name:  "low-rank",
		Rank:  RankMarginal,
		Probe: StartsWithProbe([]byte("MATCH"), Likely, MustLabel("application/x-low")),
	}))
	must(t, r.Register(Registration{
		Name:  "high-rank",
		Rank:  RankPrimary,
		Probe: StartsWithProbe([]byte("MATCH"), Likely, MustLabel("application/x-high")),
	}))
	suggestions := r.Recognize(bytesPeeker([]byte("MATCH")))
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}
	// Higher-rank probes run first, so the high-rank suggestion should
	// appear first in the suggestion slice.
	if suggestions[0].Label.Name != "application/x-high" {
		t.Errorf("first suggestion = %q; want the high-rank probe's to run (and so appear) first", suggestions[0].Label.Name)
	}
	// Feed the suggestions to an Aggregator in reverse, low-rank first, so
	// that with equal probabilities Best has to pick by rank rather than
	// by insertion order.
	agg := NewAggregator()
	for i := len(suggestions) - 1; i >= 0; i-- {
		agg.setRank(suggestions[i].rank)
		agg.Suggest(suggestions[i].Probability, suggestions[i].Label)
	}
	if best, ok := agg.Best(); !ok || best.Label.Name != "application/x-high" {
		t.Errorf("Best() = %+v; want the high-rank suggestion to win the tie", best)
	}
}

func TestZeroLengthInputProducesNoSuggestions(t *testing.T) {
	r := NewRegistry()
	must(t, r.Register(Registration{
		Name:  "gif",
		Rank:  RankPrimary,
		Probe: StartsWithProbe([]byte("GIF87a"), Maximum, MustLabel("image/gif")),
	}))
	suggestions := r.Recognize(bytesPeeker(nil))
	if len(suggestions) != 0 {
		t.Errorf("got %d suggestions for empty input, want 0", len(suggestions))
	}
}

// shortPeeker always claims requested bytes are unavailable, simulating a
// faulty BWP that can't honor the length it was asked for. Per spec.md §8,
// this must never produce a spurious suggestion.
type shortPeeker struct{}

func (shortPeeker) Peek(int64, int) ([]byte, bool) { return nil, false }
func (shortPeeker) Length() (int64, bool)          { return 0, false }

func TestFaultyBWPYieldsNoSuggestions(t *testing.T) {
	r := NewRegistry()
	must(t, r.Register(Registration{
		Name:  "gif",
		Rank:  RankPrimary,
		Probe: StartsWithProbe([]byte("GIF87a"), Maximum, MustLabel("image/gif")),
	}))
	must(t, r.Register(Registration{
		Name:  "wav",
		Rank:  RankPrimary,
		Probe: RIFFFormProbe([4]byte{'W', 'A', 'V', 'E'}, MustLabel("audio/x-wav")),
	}))
	suggestions := r.Recognize(shortPeeker{})
	if len(suggestions) != 0 {
		t.Errorf("got %d suggestions against a faulty BWP, want 0", len(suggestions))
	}
}

func TestRecognizeByExtension(t *testing.T) {
	r := NewRegistry()
	must(t, r.Register(Registration{
		Name:       "mp3",
		Rank:       RankPrimary,
		Probe:      func(*Context, any) {},
		Extensions: []string{"mp3"},
		Default:    MustLabel("audio/mpeg"),
	}))
	suggestions := r.RecognizeByExtension("song.MP3")
	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(suggestions))
	}
	if suggestions[0].Probability != Likely {
		t.Errorf("probability = %v; want Likely", suggestions[0].Probability)
	}
	if suggestions[0].Label.Name != "audio/mpeg" {
		t.Errorf("label = %q; want audio/mpeg", suggestions[0].Label.Name)
	}
}

func TestReaderAtSourceNegativeOffset(t *testing.T) {
	data := []byte("0123456789ABCDEF") // 16 bytes
	src := NewReaderAtSource(bytes.NewReader(data))
	window, ok := src.Peek(-4, 2)
	if !ok {
		t.Fatal("Peek(-4, 2) unavailable, want ok")
	}
	if string(window) != "CD" {
		t.Errorf("Peek(-4, 2) = %q, want %q", window, "CD")
	}
	if _, ok := src.Peek(-100, 2); ok {
		t.Error("Peek(-100, 2) on a 16-byte source should be unavailable")
	}
}

func TestStreamSourceNegativeOffsetUnknownLength(t *testing.T) {
	src := NewStreamSource(bytes.NewReader([]byte("hello world")))
	if _, ok := src.Peek(-3, 3); ok {
		t.Error("Peek(-3, 3) before EOF should be unavailable (length unknown)")
	}
	if _, ok := src.Length(); ok {
		t.Error("Length() before EOF should be unknown")
	}
	// Drain it forward so eof is reached, then the negative offset resolves.
	// Reading exactly the 11 available bytes does not reveal the end yet; a
	// request one byte past it comes up short and marks eof.
	if _, ok := src.Peek(0, 11); !ok {
		t.Fatal("Peek(0, 11) should succeed")
	}
	if _, ok := src.Peek(0, 12); ok {
		t.Fatal("Peek(0, 12) past the end of an 11-byte stream should be unavailable")
	}
	window, ok := src.Peek(-3, 3)
	if !ok {
		t.Fatal("Peek(-3, 3) after EOF should be available")
	}
	if string(window) != "rld" {
		t.Errorf("Peek(-3, 3) = %q, want %q", window, "rld")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func bytesPeeker(data []byte) *ReaderAtSource {
	return NewReaderAtSource(bytes.NewReader(data))
}
