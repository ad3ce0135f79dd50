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

// A raw DV stream is a sequence of 80-byte DIF blocks, grouped into DIF
// sequences of 150 blocks (12000 bytes) each. Every block's first three
// bytes are an ID: a 3-bit section type, a 4-bit sequence number, and a
// block number. The very first block of a valid stream is always a
// header block (section 0) at sequence 0, block 0 — all three fields
// zero in their respective positions — which is a precise enough
// fingerprint that this probe doesn't need to understand the rest of
// the DIF block layout.
const dvBlockSize = 80
const dvBlocksPerSequence = 150

func dvProbe(ctx *typesniff.Context, _ any) {
	hdr, ok := ctx.Peek(0, 4)
	if !ok {
		return
	}
	if hdr[0]&0xE0 != 0 { // section type must be 0 (header)
		return
	}
	if hdr[1]&0xF0 != 0 { // sequence number must be 0
		return
	}
	if hdr[2] != 0 { // block number must be 0
		return
	}
	dsf := hdr[3]&0x80 != 0 // dsf bit: 0 = 525/60 (NTSC), 1 = 625/50 (PAL)

	sequenceBytes := int64(dvBlocksPerSequence * dvBlockSize)
	confirmed := 1
	if second, ok := ctx.Peek(sequenceBytes, 4); ok {
		if second[0]&0xE0 == 0 && second[1]&0xF0 == 0 && second[2] == 0 {
			confirmed = 2
		}
	}

	prob := typesniff.Possible
	if confirmed == 2 {
		prob = typesniff.Likely
	}
	system := "525-60"
	if dsf {
		system = "625-50"
	}
	ctx.Suggest(prob, typesniff.MustLabel("video/x-dv", typesniff.StringAttr("systemstream", system)))
}

func dvRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "video/dv",
			Rank:       typesniff.RankSecondary,
			Probe:      dvProbe,
			Extensions: []string{"dv"},
			Default:    typesniff.MustLabel("video/x-dv"),
		},
	}
}
