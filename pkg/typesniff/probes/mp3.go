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

package probes

import (
	"bytes"
	"encoding/binary"

	"github.com/go4media/typesniff/pkg/typesniff"
)

// MP3 frame-header bit layout and tables, carried over from
// perkeep.org/pkg/media.GetMPEGAudioDuration, which parses exactly one
// frame to compute a track's duration. This probe generalizes that into a
// short run scan: it looks for a string of consecutive, self-consistent
// frame headers, since a single matching 32-bit pattern is too weak a
// signal on its own (11 sync bits plus a handful of small field values
// recur by chance far more often than any container magic number does).

type mpegVersion int

const (
	mpegVersion1 mpegVersion = iota
	mpegVersion2
	mpegVersion2_5
)

var mpegVersionsByID = map[uint32]mpegVersion{
	0x0: mpegVersion2_5,
	0x2: mpegVersion2,
	0x3: mpegVersion1,
}

type mpegLayer int

const (
	mpegLayer1 mpegLayer = iota
	mpegLayer2
	mpegLayer3
)

var mpegLayersByIndex = map[uint32]mpegLayer{
	0x1: mpegLayer3,
	0x2: mpegLayer2,
	0x3: mpegLayer1,
}

var mpegBitrates = map[mpegVersion]map[mpegLayer][16]int{
	mpegVersion1: {
		mpegLayer1: {0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0},
		mpegLayer2: {0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0},
		mpegLayer3: {0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
	},
	mpegVersion2: {
		mpegLayer1: {0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},
		mpegLayer2: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
		mpegLayer3: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
	},
	mpegVersion2_5: {
		mpegLayer1: {0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},
		mpegLayer2: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
		mpegLayer3: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
	},
}

var mpegSamplingRates = map[mpegVersion][4]int{
	mpegVersion1:   {44100, 48000, 32000, 0},
	mpegVersion2:   {22050, 24000, 16000, 0},
	mpegVersion2_5: {11025, 12000, 8000, 0},
}

var xingHeaderName = []byte("Xing")
var infoHeaderName = []byte("Info")

// mpegFrame is one successfully parsed frame header.
type mpegFrame struct {
	version  mpegVersion
	layer    mpegLayer
	bitrate  int // kbps; 0 means free-format
	sampling int // Hz
	padding  uint32
	mode     uint32 // channel mode, 2 bits; part of the mid-stream-change check
	frameLen int64  // 0 for a free-format frame, whose length isn't in the header
}

// parseMPEGFrame reads a candidate header at offset off and reports the
// parsed frame, or ok=false if the header is not a self-consistent MPEG
// audio frame header (reserved version/layer/sample-rate/bitrate fields
// all reject here).
func parseMPEGFrame(ctx *typesniff.Context, off int64) (mpegFrame, bool) {
	b, ok := ctx.Peek(off, 4)
	if !ok {
		return mpegFrame{}, false
	}
	header := binary.BigEndian.Uint32(b)
	getBits := func(startBit, numBits uint) uint32 {
		return (header << startBit) >> (32 - numBits)
	}
	if getBits(0, 11) != 0x7ff {
		return mpegFrame{}, false
	}
	version, ok := mpegVersionsByID[getBits(11, 2)]
	if !ok {
		return mpegFrame{}, false // reserved version (0b01)
	}
	layer, ok := mpegLayersByIndex[getBits(13, 2)]
	if !ok {
		return mpegFrame{}, false // reserved layer (0b00)
	}
	bitrateIdx := getBits(16, 4)
	if bitrateIdx == 0xF {
		return mpegFrame{}, false // reserved bitrate
	}
	bitrate := mpegBitrates[version][layer][bitrateIdx]
	samplingIdx := getBits(20, 2)
	sampling := mpegSamplingRates[version][samplingIdx]
	if sampling == 0 {
		return mpegFrame{}, false // reserved sample-rate index (0b11)
	}
	padding := getBits(22, 1)
	mode := getBits(24, 2)

	var frameLen int64
	if bitrate > 0 {
		switch {
		case layer == mpegLayer1:
			frameLen = int64(12000*bitrate/sampling+int(padding)) * 4
		case layer == mpegLayer3 && version != mpegVersion1:
			frameLen = int64(72000*bitrate/sampling) + int64(padding)
		default:
			frameLen = int64(144000*bitrate/sampling) + int64(padding)
		}
	}
	// Bitrate 0 is free-format: frameLen stays 0, signaling the caller to
	// derive it from the distance to a second free-format candidate.
	return mpegFrame{
		version:  version,
		layer:    layer,
		bitrate:  bitrate,
		sampling: sampling,
		padding:  padding,
		mode:     mode,
		frameLen: frameLen,
	}, true
}

// hasXingHeader reports whether a Xing/Info VBR header follows the frame at
// off, the common case for the first frame of an MP3 encoded with a
// variable bitrate.
func hasXingHeader(ctx *typesniff.Context, off int64, frame mpegFrame) bool {
	sideInfoLen := int64(32)
	if frame.version != mpegVersion1 {
		sideInfoLen = 17
	}
	xingOff := off + 4 + sideInfoLen
	b, ok := ctx.Peek(xingOff, 4)
	if !ok {
		return false
	}
	return bytes.Equal(b, xingHeaderName) || bytes.Equal(b, infoHeaderName)
}

const (
	mp3TrySync    = 10000 // bytes scanned looking for a 0xFF sync candidate
	mp3TryHeaders = 5     // consecutive frame headers that make a run conclusive
	mp3MinHeaders = 2     // fewer than this, even at EOF, isn't enough
)

// mp3ScanResult is one sync-candidate's outcome: how many consecutive
// frames it chained, how many bytes were skipped to find it, and whether
// the source ran out of data while still finding valid frames (as opposed
// to a header simply failing to parse).
type mp3ScanResult struct {
	offset    int64
	found     int
	skipped   int
	exhausted bool
	version   mpegVersion
	layer     mpegLayer
}

// mp3NextFreeFormatSync looks, from byte offset from, for another frame
// header matching ref's version/layer/sampling but also free-format
// (bitrate 0): the distance between the two free candidates is the only
// way to recover a free-format frame's length, since the header itself
// doesn't carry it.
func mp3NextFreeFormatSync(ctx *typesniff.Context, from int64, ref mpegFrame) (int64, bool) {
	for i := int64(0); i < mp3TrySync; i++ {
		b, ok := ctx.Peek(from+i, 1)
		if !ok {
			return 0, false
		}
		if b[0] != 0xFF {
			continue
		}
		frame, ok := parseMPEGFrame(ctx, from+i)
		if !ok {
			continue
		}
		if frame.bitrate == 0 && frame.version == ref.version && frame.layer == ref.layer && frame.sampling == ref.sampling {
			return from + i, true
		}
	}
	return 0, false
}

// mp3TryChain attempts to parse up to mp3TryHeaders consecutive frame
// headers starting at pos. A mid-stream change of layer, sample rate, or
// channel mode invalidates the header that changed and stops the run
// there (bitrate alone is allowed to vary — that's VBR). The attempt only
// counts as a match if it either reached mp3TryHeaders or ran out of
// source with at least mp3MinHeaders found.
func mp3TryChain(ctx *typesniff.Context, pos int64) (mp3ScanResult, bool) {
	var first mpegFrame
	found := 0
	cur := pos
	var freePos int64 = -1
	var freeLen int64 // free-format frame length, once derived from two free candidates

	for found < mp3TryHeaders {
		frame, ok := parseMPEGFrame(ctx, cur)
		if !ok {
			break
		}
		if found == 0 {
			first = frame
		} else if frame.layer != first.layer || frame.sampling != first.sampling || frame.mode != first.mode {
			break
		}
		found++

		if frame.frameLen > 0 {
			cur += frame.frameLen
			continue
		}
		if freeLen > 0 {
			cur += freeLen
			continue
		}
		if freePos < 0 {
			freePos = cur
			next, ok := mp3NextFreeFormatSync(ctx, cur+1, frame)
			if !ok {
				break
			}
			freeLen = next - cur
			cur = next
			continue
		}
		break
	}
	if found == 0 {
		return mp3ScanResult{}, false
	}

	exhausted := false
	if _, ok := ctx.Peek(cur, 4); !ok {
		exhausted = true
	}
	if found != mp3TryHeaders && !(exhausted && found >= mp3MinHeaders) {
		return mp3ScanResult{}, false
	}
	return mp3ScanResult{offset: pos, found: found, exhausted: exhausted, version: first.version, layer: first.layer}, true
}

// mp3ScanAt scans up to mp3TrySync bytes from start for a 0xFF sync byte
// that starts a successful mp3TryChain, recording how many bytes were
// skipped to find it.
func mp3ScanAt(ctx *typesniff.Context, start int64) (mp3ScanResult, bool) {
	for skipped := 0; skipped < mp3TrySync; skipped++ {
		b, ok := ctx.Peek(start+int64(skipped), 1)
		if !ok {
			return mp3ScanResult{}, false
		}
		if b[0] != 0xFF {
			continue
		}
		if result, ok := mp3TryChain(ctx, start+int64(skipped)); ok {
			result.skipped = skipped
			return result, true
		}
	}
	return mp3ScanResult{}, false
}

// mp3ScanProbability implements "MAXIMUM * found/TRY_HEADERS *
// (TRY_SYNC-skipped)/TRY_SYNC, floored at MINIMUM": both how complete the
// frame run was and how far the sync byte had to be hunted for factor in.
func mp3ScanProbability(r mp3ScanResult) typesniff.Probability {
	p := typesniff.Scale(typesniff.Maximum, r.found, mp3TryHeaders)
	return typesniff.Scale(p, mp3TrySync-r.skipped, mp3TrySync)
}

// mp3Probe scans for a run of consecutive, mutually consistent MPEG audio
// frame headers starting at offset 0 — skipping over a leading ID3v2 tag
// first, if present — and, unless that pass already reached LIKELY,
// independently scans again at the file's midpoint at half the resulting
// confidence. The two results are averaged only if they agree on layer;
// disagreement discards the midpoint pass rather than averaging apples
// with oranges. A trailing ID3v1 "TAG" marker zeroes the whole result,
// since a tagged non-MP3 file can otherwise read as a plausible frame run.
func mp3Probe(ctx *typesniff.Context, _ any) {
	start := int64(0)
	if hdr, ok := ctx.Peek(0, 10); ok && bytes.Equal(hdr[0:3], []byte("ID3")) {
		size := int64(hdr[6]&0x7f)<<21 | int64(hdr[7]&0x7f)<<14 | int64(hdr[8]&0x7f)<<7 | int64(hdr[9]&0x7f)
		start = 10 + size
	}

	startResult, ok := mp3ScanAt(ctx, start)
	if !ok {
		return
	}
	probStart := mp3ScanProbability(startResult)

	prob := probStart
	if probStart < typesniff.Likely {
		if length, ok := ctx.Length(); ok && length > start {
			mid := start + (length-start)/2
			if midResult, ok := mp3ScanAt(ctx, mid); ok {
				probMid := typesniff.Scale(mp3ScanProbability(midResult), 1, 2) // offset > 0: halve
				if midResult.layer == startResult.layer {
					prob = typesniff.Average(probStart, probMid)
				}
				// Layer disagreement: discard the midpoint pass, keep probStart.
			}
		}
	}

	if trailer, ok := ctx.Peek(-128, 3); ok && bytes.Equal(trailer, id3v1Magic) {
		return
	}

	frame, _ := parseMPEGFrame(ctx, startResult.offset)
	attrs := []typesniff.Attr{
		typesniff.IntAttr("mpegversion", int64(mpegVersionNumber(frame.version))),
		typesniff.IntAttr("layer", int64(mpegLayerNumber(frame.layer))),
	}
	if hasXingHeader(ctx, startResult.offset, frame) {
		attrs = append(attrs, typesniff.BoolAttr("vbr", true))
	}
	ctx.Suggest(prob, typesniff.MustLabel("audio/mpeg", attrs...))
}

func mpegVersionNumber(v mpegVersion) int {
	switch v {
	case mpegVersion1:
		return 1
	case mpegVersion2:
		return 2
	default:
		return 25 // 2.5, scaled to stay an integer attribute
	}
}

func mpegLayerNumber(l mpegLayer) int {
	switch l {
	case mpegLayer1:
		return 1
	case mpegLayer2:
		return 2
	default:
		return 3
	}
}

func mp3Registrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "audio/mp3",
			Rank:       typesniff.RankPrimary,
			Probe:      mp3Probe,
			Extensions: []string{"mp3"},
			Default:    typesniff.MustLabel("audio/mpeg"),
		},
	}
}
