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
	"image"

	// Blank-imported so image.DecodeConfig recognizes their formats,
	// exactly as perkeep.org/pkg/server/image.go registers them for its
	// own image.DecodeConfig call.
	_ "github.com/nf/cr2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/go4media/typesniff/pkg/typesniff"
)

const imageDeepWindow = 65536

// imageDeepProbe re-confirms a fixed-magic image match (simple.go already
// suggests these at Maximum on their prefix alone) by actually decoding
// the image's structural header with image.DecodeConfig. A file can carry
// a correct magic number while being truncated or otherwise corrupt past
// it; a successful DecodeConfig is much stronger evidence than the magic
// alone, so this probe raises confidence to Maximum with an added
// dimensions attribute when decoding succeeds, and otherwise leaves the
// simpler probes' suggestion as the only one on record.
func imageDeepProbe(ctx *typesniff.Context, _ any) {
	window := imageDeepWindow
	if length, ok := ctx.Length(); ok && length < int64(window) {
		window = int(length)
	}
	data, ok := ctx.Peek(0, window)
	if !ok || len(data) == 0 {
		return
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return
	}
	mimeType, ok := imageFormatMIME[format]
	if !ok {
		return
	}
	ctx.Suggest(typesniff.Maximum, typesniff.MustLabel(mimeType,
		typesniff.IntAttr("width", int64(cfg.Width)),
		typesniff.IntAttr("height", int64(cfg.Height)),
	))

	if format == "jpeg" || format == "tiff" || format == "cr2" {
		if x, err := exif.Decode(bytes.NewReader(data)); err == nil && x != nil {
			ctx.Suggest(typesniff.Maximum, typesniff.MustLabel(mimeType, typesniff.BoolAttr("exif", true)))
		}
	}
}

var imageFormatMIME = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"cr2":  "image/x-canon-cr2",
}

func imageDeepRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			// Runs after the fixed-magic image probes in simple.go
			// (both are RankPrimary; registration order within a rank
			// is preserved, and simple.go's registrations() are listed
			// first in allRegistrations), adding its stronger
			// suggestion alongside rather than instead of theirs.
			Name:       "image/deep-confirm",
			Rank:       typesniff.RankPrimary,
			Probe:      imageDeepProbe,
			Extensions: []string{"bmp"},
			Default:    typesniff.MustLabel("image/bmp"),
		},
	}
}
