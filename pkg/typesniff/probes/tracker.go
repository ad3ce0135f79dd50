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

// modTags is ProTracker's family of four-byte signatures, found not at
// offset 0 but at byte 1080 — after 20 bytes of song name, 31 sample
// slots of 30 bytes each (930 bytes), a 1-byte song length, a 1-byte
// restart position, and a 128-byte pattern order table. A source shorter
// than 1084 bytes simply can't carry this signature; every call here
// goes back through ctx.Peek, so there is no way to reuse a window
// captured before the source had grown that long.
var modTags = [][]byte{
	[]byte("M.K."), []byte("M!K!"), []byte("FLT4"), []byte("FLT8"),
	[]byte("4CHN"), []byte("6CHN"), []byte("8CHN"), []byte("CD81"), []byte("OKTA"),
}

func modProbe(ctx *typesniff.Context, _ any) {
	tag, ok := ctx.Peek(1080, 4)
	if !ok {
		return
	}
	for _, want := range modTags {
		if bytes.Equal(tag, want) {
			ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("audio/x-mod"))
			return
		}
	}
}

// xmProbe recognizes FastTracker II's Extended Module format by its
// fixed 17-byte text signature at offset 0.
func xmProbe(ctx *typesniff.Context, _ any) {
	sig, ok := ctx.Peek(0, 17)
	if !ok {
		return
	}
	if string(sig) == "Extended Module: " {
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("audio/x-xm"))
	}
}

// s3mProbe recognizes ScreamTracker 3 modules by the "SCRM" tag at fixed
// offset 44, past the 28-byte song name and a block of header fields.
func s3mProbe(ctx *typesniff.Context, _ any) {
	tag, ok := ctx.Peek(44, 4)
	if !ok {
		return
	}
	if string(tag) == "SCRM" {
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("audio/x-s3m"))
	}
}

// itProbe recognizes Impulse Tracker modules by their "IMPM" magic at
// offset 0.
func itProbe(ctx *typesniff.Context, _ any) {
	tag, ok := ctx.Peek(0, 4)
	if !ok {
		return
	}
	if string(tag) == "IMPM" {
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("audio/x-it"))
	}
}

func trackerRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{Name: "audio/mod", Rank: typesniff.RankPrimary, Probe: modProbe, Extensions: []string{"mod"}, Default: typesniff.MustLabel("audio/x-mod")},
		{Name: "audio/xm", Rank: typesniff.RankPrimary, Probe: xmProbe, Extensions: []string{"xm"}, Default: typesniff.MustLabel("audio/x-xm")},
		{Name: "audio/s3m", Rank: typesniff.RankPrimary, Probe: s3mProbe, Extensions: []string{"s3m"}, Default: typesniff.MustLabel("audio/x-s3m")},
		{Name: "audio/it", Rank: typesniff.RankPrimary, Probe: itProbe, Extensions: []string{"it"}, Default: typesniff.MustLabel("audio/x-it")},
	}
}
