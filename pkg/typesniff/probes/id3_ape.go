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

	"github.com/hjfreyer/taglib-go/taglib"

	"github.com/go4media/typesniff/pkg/typesniff"
)

// id3v1Magic is the three-byte tag perkeep.org/pkg/media.HasID3v1Tag checks
// for at the end of a file via a size-128 trailer read; here it's a
// negative-offset Peek instead of a ReadAt against a known Size.
var id3v1Magic = []byte("TAG")

// id3v2Probe recognizes an ID3v2 header: "ID3" followed by a two-byte
// version (major/revision not 0xFF) and, past the flags byte, a four-byte
// synchsafe size whose bytes must each have their high bit clear. A tag
// identifies itself, not its payload — the label is the tag's own media
// type, application/x-id3; mp3.go's frame scanner and aac.go's ADTS/ADIF
// probe independently confirm whatever audio follows it.
func id3v2Probe(ctx *typesniff.Context, _ any) {
	hdr, ok := ctx.Peek(0, 10)
	if !ok {
		return
	}
	if !bytes.Equal(hdr[0:3], []byte("ID3")) {
		return
	}
	if hdr[3] == 0xFF || hdr[4] == 0xFF {
		return
	}
	for _, b := range hdr[6:10] {
		if b&0x80 != 0 {
			return
		}
	}
	ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/x-id3"))
}

// id3v1Probe recognizes an ID3v1 trailer: the fixed 128-byte tag format
// that predates ID3v2, identified solely by "TAG" in its last 128 bytes.
// A trailer is weaker evidence than a full header, hence MAXIMUM-3.
func id3v1Probe(ctx *typesniff.Context, _ any) {
	window, ok := ctx.Peek(-128, 3)
	if !ok {
		return
	}
	if bytes.Equal(window, id3v1Magic) {
		ctx.Suggest(typesniff.Maximum-3, typesniff.MustLabel("application/x-id3"))
	}
}

// apeTagMagic is APEv1/APEv2's eight-byte preamble, "APETAGEX", found
// either as a header at the start of a standalone tag or a footer in the
// last 32 bytes of a tagged file. A header is slightly stronger evidence
// than a footer (MAXIMUM-1 vs MAXIMUM-2): a footer can belong to a tag
// whose header lives elsewhere in a larger file this probe never sees.
var apeTagMagic = []byte("APETAGEX")

func apeHeaderProbe(ctx *typesniff.Context, _ any) {
	window, ok := ctx.Peek(0, 8)
	if !ok {
		return
	}
	if bytes.Equal(window, apeTagMagic) {
		ctx.Suggest(typesniff.Maximum-1, typesniff.MustLabel("application/x-apetag"))
	}
}

func apeFooterProbe(ctx *typesniff.Context, _ any) {
	window, ok := ctx.Peek(-32, 8)
	if !ok {
		return
	}
	if bytes.Equal(window, apeTagMagic) {
		ctx.Suggest(typesniff.Maximum-2, typesniff.MustLabel("application/x-apetag"))
	}
}

// id3v2DeepProbe confirms the byte-level ID3v2 sanity check (id3v2Probe)
// by additionally decoding the tag with github.com/hjfreyer/taglib-go,
// the same taglib.Decode(r, size) call
// third_party/github.com/hjfreyer/taglib-go/taglib/taglib_test.go makes
// against an *os.File. A header can pass the synchsafe-size check and
// still not be a tag taglib-go can actually walk the frames of; a
// successful decode is stronger evidence than the header shape alone, the
// same relationship pdf.go's deep probe has to archive.go's "%PDF-" magic.
func id3v2DeepProbe(ctx *typesniff.Context, _ any) {
	hdr, ok := ctx.Peek(0, 3)
	if !ok || !bytes.Equal(hdr, []byte("ID3")) {
		return
	}
	size, ok := ctx.Length()
	if !ok {
		return // taglib.Decode needs a known size to bound its frame walk
	}
	tag, err := taglib.Decode(ctxReaderAt{ctx: ctx, size: size}, size)
	if err != nil {
		return
	}
	attrs := []typesniff.Attr{}
	if title := tag.Title(); title != "" {
		attrs = append(attrs, typesniff.StringAttr("title", title))
	}
	if artist := tag.Artist(); artist != "" {
		attrs = append(attrs, typesniff.StringAttr("artist", artist))
	}
	ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/x-id3", attrs...))
}

func tagRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "tag/id3v2",
			Rank:       typesniff.RankSecondary,
			Probe:      id3v2Probe,
			Extensions: []string{"mp3"},
			Default:    typesniff.MustLabel("application/x-id3"),
		},
		{
			Name:       "tag/id3v2-deep",
			Rank:       typesniff.RankSecondary,
			Probe:      id3v2DeepProbe,
			Extensions: []string{"mp3"},
			Default:    typesniff.MustLabel("application/x-id3"),
		},
		{
			Name:    "tag/id3v1",
			Rank:    typesniff.RankSecondary,
			Probe:   id3v1Probe,
			Default: typesniff.MustLabel("application/x-id3"),
		},
		{
			Name:    "tag/ape-header",
			Rank:    typesniff.RankSecondary,
			Probe:   apeHeaderProbe,
			Default: typesniff.MustLabel("application/x-apetag"),
		},
		{
			Name:    "tag/ape-footer",
			Rank:    typesniff.RankSecondary,
			Probe:   apeFooterProbe,
			Default: typesniff.MustLabel("application/x-apetag"),
		},
	}
}
