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

	"github.com/mogiioin/hls-m3u8/m3u8"

	"github.com/go4media/typesniff/pkg/typesniff"
)

const hlsWindow = 65536

// hlsProbe confirms the "#EXTM3U" magic and then parses the playlist
// with github.com/mogiioin/hls-m3u8 to tell a master playlist (a list of
// variant streams) from a media playlist (a list of segments), carrying
// that distinction as an attribute the way isobmff.go's ftyp brand does
// for MP4 variants. If the playlist does not parse (possibly only because
// the probe's read window cut it short), the bare "#EXTM3U" magic is still
// suggested, at Possible and without the variant attribute.
func hlsProbe(ctx *typesniff.Context, _ any) {
	window := hlsWindow
	if length, ok := ctx.Length(); ok && length < int64(window) {
		window = int(length)
	}
	data, ok := ctx.Peek(0, window)
	if !ok || !bytes.HasPrefix(data, []byte("#EXTM3U")) {
		return
	}

	_, listType, err := m3u8.DecodeFrom(bytes.NewReader(data), false)
	if err != nil {
		// The playlist may simply have been truncated by the probe's
		// read window rather than actually malformed; the bare magic
		// is still decent evidence on its own.
		ctx.Suggest(typesniff.Possible, typesniff.MustLabel("application/vnd.apple.mpegurl"))
		return
	}

	switch listType {
	case m3u8.MASTER:
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/vnd.apple.mpegurl", typesniff.StringAttr("variant", "master")))
	case m3u8.MEDIA:
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/vnd.apple.mpegurl", typesniff.StringAttr("variant", "media")))
	default:
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("application/vnd.apple.mpegurl"))
	}
}

func hlsRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "playlist/hls",
			Rank:       typesniff.RankPrimary,
			Probe:      hlsProbe,
			Extensions: []string{"m3u8", "m3u"},
			Default:    typesniff.MustLabel("application/vnd.apple.mpegurl"),
		},
	}
}
