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
	"encoding/binary"

	"github.com/go4media/typesniff/pkg/typesniff"
)

// MPEG-1/2 program (system) streams are a sequence of start codes,
// 0x000001 followed by a one-byte stream ID. A pack header (0xBA) opens
// the stream; a system header (0xBB) and an end code (0xB9) may follow;
// after that come PES packets whose stream IDs fall in the audio
// (0xC0-0xDF) and video (0xE0-0xEF) ranges. A lone 00 00 01 run shows up
// by chance far more than this catalog's other magic numbers do, so both
// probes below additionally check the marker bits each start code's
// payload is required to carry before counting it as a packet.

const (
	packStartCode   = 0xBA
	systemStartCode = 0xBB
	mpegEndCode     = 0xB9

	mpegSystemScanWindow = 100 * 1024 // pack-header search bound; mpegSystemProbe does not search and only checks offset 0
	mpegSystemTryHeaders = 4          // consecutive valid packets that make a run conclusive
)

// mpegPackHeaderLen is the fixed size of a pack_header's payload
// immediately following the 00 00 01 BA start code: all of it is marker
// bits and clock fields, none of it variable-length.
const mpegPackHeaderLen = 8

// validPackHeader checks the marker bits of a pack_header's 8-byte fixed
// payload (the bytes right after 00 00 01 BA).
func validPackHeader(b []byte) bool {
	return len(b) >= mpegPackHeaderLen &&
		b[0]&0xF1 == 0x21 &&
		b[2]&0x01 == 0x01 &&
		b[4]&0x01 == 0x01 &&
		b[5]&0x80 == 0x80 &&
		b[7]&0x01 == 0x01
}

// parseSystemHeader validates a system_header (00 00 01 BB) starting at
// off, the offset of the byte right after the start code, and reports its
// total length (start code plus payload). header_length is a big-endian
// u16 at the start of the payload; the payload's fixed marker bit sits at
// its third byte. After the length field come six bytes of fixed fields,
// and the rest is a run of 3-byte stream-bound entries whose first byte
// must exceed 0xBB (a stream ID) and whose second byte carries the '11'
// marker pair in its top two bits.
func parseSystemHeader(ctx *typesniff.Context, off int64) (int64, bool) {
	head, ok := ctx.Peek(off, 6)
	if !ok {
		return 0, false
	}
	headerLen := int64(binary.BigEndian.Uint16(head[0:2]))
	if head[2]&0x80 != 0x80 {
		return 0, false
	}
	if headerLen >= 6 {
		entries, ok := ctx.Peek(off+8, int(headerLen)-6)
		if !ok {
			return 0, false
		}
		for i := 0; i+3 <= len(entries); i += 3 {
			if !(entries[i] > 0xBB && entries[i+1]&0xC0 == 0xC0) {
				return 0, false
			}
		}
	}
	return 6 + headerLen, true
}

// mpegPacket is one validated start code in an MPEG-1 system stream walk:
// its total length (start code through payload) so the walk can advance
// to the next one.
type mpegPacket struct {
	length int64
	valid  bool
}

// parseMPEG1Packet validates the packet at off (the offset of "00 00 01",
// not the stream ID byte) according to its stream ID.
func parseMPEG1Packet(ctx *typesniff.Context, off int64) mpegPacket {
	hdr, ok := ctx.Peek(off, 4)
	if !ok || hdr[0] != 0 || hdr[1] != 0 || hdr[2] != 1 {
		return mpegPacket{}
	}
	switch id := hdr[3]; {
	case id == packStartCode:
		body, ok := ctx.Peek(off+4, mpegPackHeaderLen)
		if !ok || !validPackHeader(body) {
			return mpegPacket{}
		}
		return mpegPacket{length: 4 + mpegPackHeaderLen, valid: true}
	case id == mpegEndCode:
		return mpegPacket{length: 4, valid: true}
	case id == systemStartCode:
		length, ok := parseSystemHeader(ctx, off+4)
		if !ok {
			return mpegPacket{}
		}
		return mpegPacket{length: length, valid: true}
	case id >= 0xBC:
		// PES packet: 2-byte big-endian payload length follows the ID.
		lenField, ok := ctx.Peek(off+4, 2)
		if !ok {
			return mpegPacket{}
		}
		return mpegPacket{length: 6 + int64(binary.BigEndian.Uint16(lenField)), valid: true}
	default:
		return mpegPacket{}
	}
}

// mpegSystemProbe recognizes an MPEG-1 system (program) stream: it must
// open with a pack header (00 00 01 BA) at offset 0 whose marker bits check
// out; the probe does not search later offsets for a pack header. It then
// walks the following start codes, each individually validated by stream
// ID, until mpegSystemTryHeaders packets (the pack header included) have
// validated. Reaching mpegSystemTryHeaders, or running out of source with
// at least one validated packet, both count as a match.
func mpegSystemProbe(ctx *typesniff.Context, _ any) {
	if id, ok := ctx.Peek(3, 1); !ok || id[0] != packStartCode {
		return
	}
	first := parseMPEG1Packet(ctx, 0)
	if !first.valid {
		return
	}

	pos := first.length
	found := 1
	exhausted := false
	for found < mpegSystemTryHeaders {
		pkt := parseMPEG1Packet(ctx, pos)
		if !pkt.valid {
			if _, ok := ctx.Peek(pos, 4); !ok {
				exhausted = true
			}
			break
		}
		found++
		pos += pkt.length
	}
	if _, ok := ctx.Peek(pos, 4); !ok {
		exhausted = true
	}

	if found < mpegSystemTryHeaders && !exhausted {
		return
	}
	ctx.Suggest(typesniff.Maximum-1, typesniff.MustLabel("video/mpeg",
		typesniff.BoolAttr("systemstream", true), typesniff.IntAttr("mpegversion", 1)))
}

// mpegSystemV2Probe distinguishes an MPEG-2 program stream from an
// MPEG-1 one by the top bits of the fifth byte, right after the 00 00 01
// BA pack-header start code: '10' marks an MPEG-2 pack, '0010' an MPEG-1
// one; absent either, a recognized PES stream ID (audio 0xC0, video
// 0xE0, or private stream 1 0xBD) at that position still counts as an
// MPEG-2 program stream by elimination.
func mpegSystemV2Probe(ctx *typesniff.Context, _ any) {
	hdr, ok := ctx.Peek(0, 5)
	if !ok {
		return
	}
	if hdr[0] != 0 || hdr[1] != 0 || hdr[2] != 1 || hdr[3] != packStartCode {
		return
	}
	b := hdr[4]
	switch {
	case b&0xC0 == 0x80:
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("video/mpeg",
			typesniff.BoolAttr("systemstream", true), typesniff.IntAttr("mpegversion", 2)))
	case b&0xF0 == 0x20:
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("video/mpeg",
			typesniff.BoolAttr("systemstream", true), typesniff.IntAttr("mpegversion", 1)))
	case b == 0xE0, b == 0xC0, b == 0xBD:
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("video/mpeg",
			typesniff.BoolAttr("systemstream", true), typesniff.IntAttr("mpegversion", 2)))
	}
}

func mpegSystemRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "video/mpeg-system",
			Rank:       typesniff.RankPrimary,
			Probe:      mpegSystemProbe,
			Extensions: []string{"mpg", "mpeg", "vob"},
			Default:    typesniff.MustLabel("video/mpeg", typesniff.BoolAttr("systemstream", true), typesniff.IntAttr("mpegversion", 1)),
		},
		{
			Name:       "video/mpeg-system-v2",
			Rank:       typesniff.RankSecondary,
			Probe:      mpegSystemV2Probe,
			Extensions: []string{"vob"},
			Default:    typesniff.MustLabel("video/mpeg", typesniff.BoolAttr("systemstream", true), typesniff.IntAttr("mpegversion", 2)),
		},
	}
}
