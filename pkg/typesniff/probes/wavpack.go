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

// wavpackMagic is WavPack's fixed four-byte block signature, "wvpk".
var wavpackMagic = []byte("wvpk")

// wavpackProbe confirms the "wvpk" block signature, a ckSize field large
// enough to hold at least the fixed 32-byte block header, and a version
// field in WavPack's historically used range (0x402 through 0x410 as of
// WavPack 5). Those three checks together are specific enough that this
// probe doesn't need to walk the variable sub-block chain that follows
// the fixed header to be confident.
func wavpackProbe(ctx *typesniff.Context, _ any) {
	hdr, ok := ctx.Peek(0, 32)
	if !ok {
		return
	}
	if string(hdr[0:4]) != string(wavpackMagic) {
		return
	}
	ckSize := binary.LittleEndian.Uint32(hdr[4:8])
	if ckSize < 24 {
		return
	}
	version := binary.LittleEndian.Uint16(hdr[8:10])
	if version < 0x402 || version > 0x410 {
		return
	}
	ctx.Suggest(typesniff.Likely, typesniff.MustLabel("audio/x-wavpack", typesniff.IntAttr("version", int64(version))))
}

func wavpackRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "audio/wavpack",
			Rank:       typesniff.RankSecondary,
			Probe:      wavpackProbe,
			Extensions: []string{"wv"},
			Default:    typesniff.MustLabel("audio/x-wavpack"),
		},
	}
}
