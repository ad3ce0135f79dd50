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

// isobmffBoxTypes is the allow-list of top-level box fourccs that imply an
// ISO-BMFF-family container, carried over from pkg/magic's fixed-offset
// "moov"/"mdat"/"isom"/"mp41"/"mp42"/"3gp..."/"avc1" prefix entries. There
// they were independent prefixEntry rows at a fixed offset; here they
// drive one box-walking probe instead, since real files can have other
// boxes (free, skip, uuid) before the first one of these.
var isobmffBoxTypes = map[string]bool{
	"ftyp": true,
	"moov": true,
	"mdat": true,
	"free": true,
	"skip": true,
	"wide": true,
	"pnot": true,
}

// ftypBrandLabels maps an ftyp major_brand to the label it implies.
var ftypBrandLabels = map[string]typesniff.Label{
	"qt  ": typesniff.MustLabel("video/quicktime"),
	"isom": typesniff.MustLabel("video/mp4"),
	"iso2": typesniff.MustLabel("video/mp4"),
	"mp41": typesniff.MustLabel("video/mp4"),
	"mp42": typesniff.MustLabel("video/mp4"),
	"mmp4": typesniff.MustLabel("video/mp4"),
	"M4A ": typesniff.MustLabel("audio/mp4"),
	"M4V ": typesniff.MustLabel("video/mp4"),
	"3ge ": typesniff.MustLabel("video/3gpp"),
	"3gg ": typesniff.MustLabel("video/3gpp"),
	"3gp4": typesniff.MustLabel("video/3gpp"),
	"3gp5": typesniff.MustLabel("video/3gpp"),
	"3g2a": typesniff.MustLabel("video/3gpp2"),
	"avc1": typesniff.MustLabel("video/3gpp"),
}

const isobmffMaxBoxesWalked = 8

// isobmffProbe walks box headers from offset 0: a 32-bit big-endian size
// followed by a four-character type. size==1 means a 64-bit extended size
// follows immediately after the type; size==0 means the box runs to the
// end of the source. It stops after the first few boxes, since a
// container's recognizable boxes (ftyp, moov, mdat, free, wide) all
// appear near the front.
func isobmffProbe(ctx *typesniff.Context, _ any) {
	cur := typesniff.NewCursor(ctx, 0)
	sawKnownBox := false
	var brandLabel *typesniff.Label

	for i := 0; i < isobmffMaxBoxesWalked; i++ {
		hdr, ok := cur.Peek(8)
		if !ok {
			break
		}
		size := int64(binary.BigEndian.Uint32(hdr[0:4]))
		boxType := string(hdr[4:8])

		headerLen := int64(8)
		if size == 1 {
			ext, ok := ctx.Peek(cur.Pos()+8, 8)
			if !ok {
				break
			}
			size = int64(binary.BigEndian.Uint64(ext))
			headerLen = 16
		}

		if isobmffBoxTypes[boxType] {
			sawKnownBox = true
		}
		if boxType == "ftyp" {
			if brand, ok := ctx.Peek(cur.Pos()+headerLen, 4); ok {
				if l, ok := ftypBrandLabels[string(brand)]; ok {
					ll := l
					brandLabel = &ll
				}
			}
		}

		if size == 0 {
			break // box runs to EOF; nothing more to walk
		}
		if size < headerLen {
			break // malformed: box claims to be shorter than its own header
		}
		cur.Advance(size)
	}

	if !sawKnownBox {
		return
	}
	if brandLabel != nil {
		ctx.Suggest(typesniff.Maximum, *brandLabel)
		return
	}
	ctx.Suggest(typesniff.Likely, typesniff.MustLabel("video/quicktime"))
}

func isobmffRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "container/isobmff",
			Rank:       typesniff.RankPrimary,
			Probe:      isobmffProbe,
			Extensions: []string{"mp4", "m4a", "m4v", "mov", "3gp", "3g2"},
			Default:    typesniff.MustLabel("video/mp4"),
		},
	}
}
