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

	"github.com/go4media/typesniff/pkg/typesniff"
)

// oggMagic is pkg/magic's "OggS" entry; every sub-format below rides
// inside an Ogg container and is identified only once the magic's
// confirmed and the first page's payload has been read past the fixed
// page header and variable-length segment table.
var oggMagic = []byte("OggS")

type oggCodecEntry struct {
	prefix []byte
	label  typesniff.Label
}

var oggCodecTable = []oggCodecEntry{
	{[]byte("\x01vorbis"), typesniff.MustLabel("audio/x-vorbis")},
	{[]byte("\x80theora"), typesniff.MustLabel("video/x-theora")},
	{[]byte("Speex   "), typesniff.MustLabel("audio/x-speex")},
	{[]byte("fishead"), typesniff.MustLabel("application/x-ogg-skeleton")},
	{[]byte("CMML"), typesniff.MustLabel("text/x-cmml")},
	{[]byte("Annodex"), typesniff.MustLabel("application/annodex")},
	{[]byte("\x01video\x00\x00\x00"), typesniff.MustLabel("video/x-ogm")},
	{[]byte("\x01audio\x00\x00\x00"), typesniff.MustLabel("audio/x-ogm")},
}

// oggPagePayloadOffset returns the byte offset of the first page's packet
// payload, past the 27-byte fixed header and its num_segments-byte
// segment table.
func oggPagePayloadOffset(ctx *typesniff.Context) (int64, bool) {
	hdr, ok := ctx.Peek(0, 27)
	if !ok {
		return 0, false
	}
	numSegments := int(hdr[26])
	return 27 + int64(numSegments), true
}

// oggProbe confirms the "OggS" capture pattern and, if it can read far
// enough to reach the first packet's payload, identifies the carried
// codec/content type from the small set of well-known header prefixes.
// If the payload can't be reached (page truncated, or a segment table
// the source hasn't buffered yet) it still suggests the generic
// application/ogg at a lower probability, since the capture pattern alone
// is unambiguous.
func oggProbe(ctx *typesniff.Context, _ any) {
	magic, ok := ctx.Peek(0, 4)
	if !ok || !bytes.Equal(magic, oggMagic) {
		return
	}

	payloadOff, ok := oggPagePayloadOffset(ctx)
	if !ok {
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("application/ogg"))
		return
	}
	payload, ok := ctx.Peek(payloadOff, 16)
	if !ok {
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("application/ogg"))
		return
	}
	for _, e := range oggCodecTable {
		if len(payload) >= len(e.prefix) && bytes.Equal(payload[:len(e.prefix)], e.prefix) {
			ctx.Suggest(typesniff.Maximum, e.label)
			return
		}
	}
	ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/ogg"))
}

func oggRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "container/ogg",
			Rank:       typesniff.RankPrimary,
			Probe:      oggProbe,
			Extensions: []string{"ogg", "ogv", "oga", "ogx", "spx", "anx"},
			Default:    typesniff.MustLabel("application/ogg"),
		},
	}
}
