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

	"github.com/blakesmith/ar"

	"github.com/go4media/typesniff/pkg/typesniff"
)

// tarProbe recognizes a POSIX ustar archive by the "ustar" magic at byte
// offset 257 of the first 512-byte header block. Pre-POSIX tar (no magic
// field) is intentionally not matched here: without the magic there is no
// reliable signal distinguishing an old tar header from arbitrary binary
// data at this offset.
func tarProbe(ctx *typesniff.Context, _ any) {
	magic, ok := ctx.Peek(257, 5)
	if !ok {
		return
	}
	if bytes.Equal(magic, []byte("ustar")) {
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/x-tar"))
	}
}

// arMagic is the common header shared by Unix ar archives (plain ar,
// and the Debian .deb / BSD/GNU static-library variants built on it).
var arMagic = []byte("!<arch>\n")

// arProbe confirms the ar global header and then uses
// github.com/blakesmith/ar to parse the first member header, both
// validating the archive is well-formed past the magic and recovering
// the first member's name (useful to tell a .deb, which always starts
// with a "debian-binary" member, from a plain .a).
func arProbe(ctx *typesniff.Context, _ any) {
	magic, ok := ctx.Peek(0, len(arMagic))
	if !ok || !bytes.Equal(magic, arMagic) {
		return
	}
	rest, ok := ctx.Peek(int64(len(arMagic)), 60)
	if !ok {
		// Global header confirmed but no member to inspect; still a
		// match, just without the finer-grained label.
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("application/x-archive"))
		return
	}
	reader := ar.NewReader(bytes.NewReader(append(append([]byte{}, arMagic...), rest...)))
	header, err := reader.Next()
	if err != nil {
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("application/x-archive"))
		return
	}
	if header.Name == "debian-binary" {
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/vnd.debian.binary-package"))
		return
	}
	ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/x-archive"))
}

// peProbe recognizes a PE (Portable Executable): an MS-DOS stub starting
// "MZ", whose e_lfanew field at offset 0x3C points to a "PE\0\0" signature.
func peProbe(ctx *typesniff.Context, _ any) {
	dosHdr, ok := ctx.Peek(0, 0x40)
	if !ok {
		return
	}
	if dosHdr[0] != 'M' || dosHdr[1] != 'Z' {
		return
	}
	peOffset := int64(dosHdr[0x3C]) | int64(dosHdr[0x3D])<<8 | int64(dosHdr[0x3E])<<16 | int64(dosHdr[0x3F])<<24
	sig, ok := ctx.Peek(peOffset, 4)
	if !ok {
		return
	}
	if bytes.Equal(sig, []byte{'P', 'E', 0, 0}) {
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/vnd.microsoft.portable-executable"))
	}
}

// elfProbe recognizes an ELF binary by its four-byte magic and reports
// the ELF class (32/64-bit) as an attribute.
func elfProbe(ctx *typesniff.Context, _ any) {
	hdr, ok := ctx.Peek(0, 5)
	if !ok {
		return
	}
	if !bytes.Equal(hdr[0:4], []byte{0x7F, 'E', 'L', 'F'}) {
		return
	}
	class := 32
	if hdr[4] == 2 {
		class = 64
	}
	ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/x-elf", typesniff.IntAttr("class", int64(class))))
}

// archiveTable is the fixed-magic table for compressed/packaged formats
// whose signatures don't need any field validation beyond the prefix
// itself, carried over from pkg/magic's corresponding prefixTable rows.
var archiveTable = []simpleEntry{
	{"zip", 0, []byte{'P', 'K', 3, 4}, typesniff.MustLabel("application/zip"), []string{"zip"}},
	{"gzip", 0, []byte{0x1F, 0x8B, 0x08}, typesniff.MustLabel("application/gzip"), []string{"gz"}},
	{"bzip2", 0, []byte("BZh"), typesniff.MustLabel("application/x-bzip2"), []string{"bz2"}},
	{"xz", 0, []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0}, typesniff.MustLabel("application/x-xz"), []string{"xz"}},
	{"7z", 0, []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, typesniff.MustLabel("application/x-7z-compressed"), []string{"7z"}},
	{"rar", 0, []byte("Rar!\x1A\x07\x00"), typesniff.MustLabel("application/vnd.rar"), []string{"rar"}},
	{"rar5", 0, []byte("Rar!\x1A\x07\x01\x00"), typesniff.MustLabel("application/vnd.rar"), []string{"rar"}},
	{"compress", 0, []byte{0x1F, 0x9D}, typesniff.MustLabel("application/x-compress"), []string{"Z"}},
	{"pdf", 0, []byte("%PDF-"), typesniff.MustLabel("application/pdf"), []string{"pdf"}},
}

func archiveRegistrations() []typesniff.Registration {
	out := []typesniff.Registration{
		{Name: "archive/tar", Rank: typesniff.RankSecondary, Probe: tarProbe, Extensions: []string{"tar"}, Default: typesniff.MustLabel("application/x-tar")},
		{Name: "archive/ar", Rank: typesniff.RankSecondary, Probe: arProbe, Extensions: []string{"a", "deb"}, Default: typesniff.MustLabel("application/x-archive")},
		{Name: "executable/pe", Rank: typesniff.RankSecondary, Probe: peProbe, Extensions: []string{"exe", "dll"}, Default: typesniff.MustLabel("application/vnd.microsoft.portable-executable")},
		{Name: "executable/elf", Rank: typesniff.RankSecondary, Probe: elfProbe, Default: typesniff.MustLabel("application/x-elf")},
	}
	for _, e := range archiveTable {
		e := e
		out = append(out, typesniff.Registration{
			Name:       "archive/" + e.name,
			Rank:       typesniff.RankPrimary,
			Probe:      typesniff.StartsWithProbe(e.magic, typesniff.Maximum, e.label),
			Extensions: e.ext,
			Default:    e.label,
		})
	}
	return out
}
