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

import "github.com/go4media/typesniff/pkg/typesniff"

// aacSamplingRates is ADTS's 4-bit sampling-frequency-index table; index
// 0xF means "explicit frequency" and 13/14 are reserved.
var aacSamplingRates = [16]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 7350, 0, 0, 0,
}

// adtsProbe recognizes an ADTS (Audio Data Transport Stream) raw AAC
// frame: 12 sync bits (0xFFF), then an MPEG version bit, a 2-bit layer
// field that must be 0 for AAC, a protection-absence bit, a 2-bit profile,
// a 4-bit sampling-frequency index, and a 13-bit frame length that must be
// at least the 7-byte (no CRC) or 9-byte (CRC present) header size and, if
// the source's total length is known, must not overrun it.
func adtsProbe(ctx *typesniff.Context, _ any) {
	b, ok := ctx.Peek(0, 7)
	if !ok {
		return
	}
	syncword := uint16(b[0])<<4 | uint16(b[1])>>4
	if syncword != 0xFFF {
		return
	}
	layer := (b[1] >> 1) & 0x3
	if layer != 0 {
		return
	}
	protectionAbsent := b[1] & 0x1
	samplingIdx := (b[2] >> 2) & 0xF
	if samplingIdx >= 13 {
		return
	}
	if aacSamplingRates[samplingIdx] == 0 {
		return
	}
	frameLen := int64(b[3]&0x3)<<11 | int64(b[4])<<3 | int64(b[5])>>5
	minLen := int64(7)
	if protectionAbsent == 0 {
		minLen = 9
	}
	if frameLen < minLen {
		return
	}
	if length, ok := ctx.Length(); ok && frameLen > length {
		return
	}
	ctx.Suggest(typesniff.Likely, typesniff.MustLabel("audio/aac", typesniff.StringAttr("stream-format", "adts")))
}

// adifProbe recognizes an ADIF (Audio Data Interchange Format) stream,
// identified solely by its fixed four-byte "ADIF" magic.
func adifProbe(ctx *typesniff.Context, _ any) {
	b, ok := ctx.Peek(0, 4)
	if !ok {
		return
	}
	if string(b) == "ADIF" {
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("audio/aac", typesniff.StringAttr("stream-format", "adif")))
	}
}

func aacRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "audio/aac-adts",
			Rank:       typesniff.RankPrimary,
			Probe:      adtsProbe,
			Extensions: []string{"aac"},
			Default:    typesniff.MustLabel("audio/aac"),
		},
		{
			Name:  "audio/aac-adif",
			Rank:  typesniff.RankPrimary,
			Probe: adifProbe,
		},
	}
}
