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

// simpleEntry is one row of the fixed-magic table: a byte pattern at a
// fixed offset implies a label with no further confirmation needed. The
// byte literals below are the same ones pkg/magic's prefixTable carries,
// credited to the file(1) magic database (see register.go's license
// notice); they are reshaped here into one independently-dispatchable
// probe per entry instead of one linear-scan table.
type simpleEntry struct {
	name   string
	offset int64
	magic  []byte
	label  typesniff.Label
	ext    []string
}

var simpleTable = []simpleEntry{
	{"gif87a", 0, []byte("GIF87a"), typesniff.MustLabel("image/gif"), []string{"gif"}},
	{"gif89a", 0, []byte("GIF89a"), typesniff.MustLabel("image/gif"), []string{"gif"}},
	{"png", 0, []byte{137, 'P', 'N', 'G', '\r', '\n', 26, 10}, typesniff.MustLabel("image/png"), []string{"png"}},
	{"jpeg-e2", 0, []byte("\xff\xd8\xff\xe2"), typesniff.MustLabel("image/jpeg"), []string{"jpg", "jpeg"}},
	{"jpeg-e1", 0, []byte("\xff\xd8\xff\xe1"), typesniff.MustLabel("image/jpeg"), []string{"jpg", "jpeg"}},
	{"jpeg-e0", 0, []byte("\xff\xd8\xff\xe0"), typesniff.MustLabel("image/jpeg"), []string{"jpg", "jpeg"}},
	{"jpeg-db", 0, []byte("\xff\xd8\xff\xdb"), typesniff.MustLabel("image/jpeg"), []string{"jpg", "jpeg"}},
	{"tiff-ii-star", 0, []byte{0x49, 0x49, 0x2A, 0}, typesniff.MustLabel("image/tiff"), []string{"tif", "tiff"}},
	{"tiff-mm-star", 0, []byte{0x4D, 0x4D, 0, 0x2A}, typesniff.MustLabel("image/tiff"), []string{"tif", "tiff"}},
	{"tiff-mm-bigtiff", 0, []byte{0x4D, 0x4D, 0, 0x2B}, typesniff.MustLabel("image/tiff"), []string{"tif", "tiff"}},
	{"psd", 0, []byte("8BPS"), typesniff.MustLabel("image/vnd.adobe.photoshop"), []string{"psd"}},
	{"xcf", 0, []byte("gimp xcf "), typesniff.MustLabel("image/x-xcf"), []string{"xcf"}},
	{"pgp-pubkey", 0, []byte("-----BEGIN PGP PUBLIC KEY BLOCK---"), typesniff.MustLabel("text/x-openpgp-public-key"), nil},
	{"flac", 0, []byte("fLaC\x00\x00\x00"), typesniff.MustLabel("audio/x-flac"), []string{"flac"}},
	{"midi", 0, []byte("MThd"), typesniff.MustLabel("audio/midi"), []string{"mid", "midi"}},
	{"realmedia", 0, []byte(".RMF\x00\x00\x00"), typesniff.MustLabel("application/vnd.rn-realmedia"), []string{"rm"}},
	{"ape-audio", 0, []byte("MAC\x20"), typesniff.MustLabel("audio/ape"), []string{"ape"}},
	{"musepack", 0, []byte("MP+"), typesniff.MustLabel("audio/musepack"), []string{"mpc"}},
	{"canon-crw", 0, []byte("II\x1a\x00\x00\x00HEAPCCDR"), typesniff.MustLabel("image/x-canon-crw"), []string{"crw"}},
	{"olympus-orf-be", 0, []byte("MMOR"), typesniff.MustLabel("image/x-olympus-orf"), []string{"orf"}},
	{"olympus-orf-le-ro", 0, []byte("IIRO"), typesniff.MustLabel("image/x-olympus-orf"), []string{"orf"}},
	{"olympus-orf-le-rs", 0, []byte("IIRS"), typesniff.MustLabel("image/x-olympus-orf"), []string{"orf"}},
	{"djvu-multi", 12, []byte("DJVM"), typesniff.MustLabel("image/vnd.djvu"), []string{"djvu"}},
	{"djvu-single", 12, []byte("DJVU"), typesniff.MustLabel("image/vnd.djvu"), []string{"djvu"}},
	{"djvu-shared", 12, []byte("DJVI"), typesniff.MustLabel("image/vnd.djvu"), []string{"djvu"}},
	{"djvu-thumb", 12, []byte("THUM"), typesniff.MustLabel("image/vnd.djvu"), []string{"djvu"}},
	{"ttf", 0, []byte{0, 1, 0, 0, 0}, typesniff.MustLabel("application/x-font-ttf"), []string{"ttf"}},
	{"bittorrent", 0, []byte("d8:announce"), typesniff.MustLabel("application/x-bittorrent"), []string{"torrent"}},
	{"swf", 0, []byte("FWS"), typesniff.MustLabel("application/x-shockwave-flash"), []string{"swf"}},
	{"swf-compressed", 0, []byte("CWS"), typesniff.MustLabel("application/x-shockwave-flash"), []string{"swf"}},
	{"sun-raster", 0, []byte{0x59, 0xA6, 0x6A, 0x95}, typesniff.MustLabel("image/x-sun-raster"), []string{"ras"}},
	{"mng", 0, []byte{0x8A, 'M', 'N', 'G', '\r', '\n', 26, 10}, typesniff.MustLabel("video/x-mng"), []string{"mng"}},
	{"jng", 0, []byte{0x8B, 'J', 'N', 'G', '\r', '\n', 26, 10}, typesniff.MustLabel("image/x-jng"), []string{"jng"}},
	{"xpm", 0, []byte("/* XPM */"), typesniff.MustLabel("image/x-xpixmap"), []string{"xpm"}},
	{"flv", 0, []byte("FLV\x01"), typesniff.MustLabel("video/x-flv"), []string{"flv"}},
	{"moov", 4, []byte("moov"), typesniff.MustLabel("video/quicktime"), []string{"mov"}},
	{"mdat", 4, []byte("mdat"), typesniff.MustLabel("video/quicktime"), []string{"mov"}},
	{"amr", 0, []byte("#!AMR\n"), typesniff.MustLabel("audio/amr"), []string{"amr"}},
	{"spc", 0, []byte("SNES-SPC700 Sound File Data"), typesniff.MustLabel("audio/x-spc"), []string{"spc"}},
	{"sid", 0, []byte("PSID"), typesniff.MustLabel("audio/prs.sid"), []string{"sid"}},
	{"w64", 0, []byte{0x72, 0x69, 0x66, 0x66, 0x2E, 0x91, 0xCF, 0x11}, typesniff.MustLabel("audio/x-w64"), []string{"w64"}},
	{"ac3", 0, []byte{0x0B, 0x77}, typesniff.MustLabel("audio/ac3"), []string{"ac3"}},
	{"tta", 0, []byte("TTA1"), typesniff.MustLabel("audio/x-tta"), []string{"tta"}},
}

func simpleRegistrations() []typesniff.Registration {
	out := make([]typesniff.Registration, 0, len(simpleTable))
	for _, e := range simpleTable {
		e := e
		var probe typesniff.ProbeFunc
		if e.offset == 0 {
			probe = typesniff.StartsWithProbe(e.magic, typesniff.Maximum, e.label)
		} else {
			probe = typesniff.StartsWithAtProbe(e.offset, e.magic, typesniff.Maximum, e.label)
		}
		out = append(out, typesniff.Registration{
			Name:       "simple/" + e.name,
			Rank:       typesniff.RankPrimary,
			Probe:      probe,
			Extensions: e.ext,
			Default:    e.label,
		})
	}
	return out
}
