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

const (
	mpeg12SequenceHeaderCode = 0xB3
	mpeg12GOPStartCode       = 0xB8
	mpeg4VisualObjSeqStart   = 0xB0
)

// mpeg12VideoProbe recognizes a bare MPEG-1/2 elementary video stream:
// a sequence_header_code (0x000001B3) optionally preceded by or followed
// by a GOP start code (0x000001B8). Container-wrapped MPEG video is
// identified by the container probes (riff.go, isobmff.go,
// mpeg_system.go); this one is for the raw .m1v/.m2v elementary stream
// case those don't cover.
func mpeg12VideoProbe(ctx *typesniff.Context, _ any) {
	hdr, ok := ctx.Peek(0, 4)
	if !ok {
		return
	}
	if hdr[0] != 0 || hdr[1] != 0 || hdr[2] != 1 {
		return
	}
	switch hdr[3] {
	case mpeg12SequenceHeaderCode:
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("video/mpeg", typesniff.IntAttr("mpegversion", 1)))
	case mpeg12GOPStartCode:
		ctx.Suggest(typesniff.Possible, typesniff.MustLabel("video/mpeg", typesniff.IntAttr("mpegversion", 1)))
	}
}

// mpeg4VideoProbe recognizes a bare MPEG-4 Part 2 visual elementary
// stream via its visual_object_sequence_start_code.
func mpeg4VideoProbe(ctx *typesniff.Context, _ any) {
	hdr, ok := ctx.Peek(0, 4)
	if !ok {
		return
	}
	if hdr[0] == 0 && hdr[1] == 0 && hdr[2] == 1 && hdr[3] == mpeg4VisualObjSeqStart {
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("video/mp4v-es", typesniff.IntAttr("mpegversion", 4)))
	}
}

func mpegVideoRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "video/mpeg12-es",
			Rank:       typesniff.RankSecondary,
			Probe:      mpeg12VideoProbe,
			Extensions: []string{"m1v", "m2v"},
			Default:    typesniff.MustLabel("video/mpeg"),
		},
		{
			Name:       "video/mpeg4-es",
			Rank:       typesniff.RankSecondary,
			Probe:      mpeg4VideoProbe,
			Extensions: []string{"m4v"},
			Default:    typesniff.MustLabel("video/mp4v-es"),
		},
	}
}
