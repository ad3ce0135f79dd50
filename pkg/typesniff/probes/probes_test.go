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
	"strings"
	"testing"

	"github.com/go4media/typesniff/pkg/typesniff"
)

func newTestRegistry(t *testing.T) *typesniff.Registry {
	t.Helper()
	r := typesniff.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return r
}

// bestLabelName runs the registry against data and returns the name of
// its best suggestion, or "" if nothing matched.
func bestLabelName(t *testing.T, r *typesniff.Registry, data []byte) string {
	t.Helper()
	suggestions := r.Recognize(typesniff.NewReaderAtSource(bytes.NewReader(data)))
	if len(suggestions) == 0 {
		return ""
	}
	best := suggestions[0]
	for _, s := range suggestions[1:] {
		if s.Probability > best.Probability {
			best = s
		}
	}
	return best.Label.Name
}

type recognizeTest struct {
	name string
	data []byte
	want string
}

var simpleAndRIFFTests = []recognizeTest{
	{"gif87a", []byte("GIF87a" + "\x00\x00\x00\x00\x00\x00\x00\x00"), "image/gif"},
	{"gif89a", []byte("GIF89a" + "\x00\x00\x00\x00\x00\x00\x00\x00"), "image/gif"},
	{"png", append([]byte{137, 'P', 'N', 'G', '\r', '\n', 26, 10}, make([]byte, 16)...), "image/png"},
	{"pdf", []byte("%PDF-1.4\n%garbage\n"), "application/pdf"},
	{"zip", []byte("PK\x03\x04" + "\x00\x00\x00\x00\x00\x00\x00\x00"), "application/zip"},
	{"gzip", []byte{0x1F, 0x8B, 0x08, 0, 0, 0, 0, 0}, "application/gzip"},
	{
		"wav",
		append(append([]byte("RIFF"), 0, 0, 0, 0), []byte("WAVEfmt ")...),
		"audio/x-wav",
	},
	{
		"avi",
		append(append([]byte("RIFF"), 0, 0, 0, 0), []byte("AVI LIST")...),
		"video/x-msvideo",
	},
	{"bittorrent", []byte("d8:announce" + "00000000000000000000"), "application/x-bittorrent"},
	{"flac", []byte("fLaC\x00\x00\x00" + "\x00\x00\x00\x00\x00\x00\x00\x00"), "audio/x-flac"},
	{"no-match", []byte("this is not any known format at all"), ""},
}

func TestSimpleAndRIFFProbes(t *testing.T) {
	r := newTestRegistry(t)
	for _, tt := range simpleAndRIFFTests {
		t.Run(tt.name, func(t *testing.T) {
			got := bestLabelName(t, r, tt.data)
			if got != tt.want {
				t.Errorf("got %q; want %q", got, tt.want)
			}
		})
	}
}

func TestID3v1Probe(t *testing.T) {
	r := newTestRegistry(t)
	data := make([]byte, 256)
	copy(data[128:], []byte("TAG"+"Some Title\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	got := bestLabelName(t, r, data)
	if got != "application/x-id3" {
		t.Errorf("got %q; want application/x-id3", got)
	}
}

func TestID3v2Probe(t *testing.T) {
	r := newTestRegistry(t)
	data := append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), bytes.Repeat([]byte("x"), 64)...)
	got := bestLabelName(t, r, data)
	if got != "application/x-id3" {
		t.Errorf("got %q; want application/x-id3", got)
	}
}

func TestIT(t *testing.T) {
	r := newTestRegistry(t)
	data := append([]byte("IMPM"), make([]byte, 60)...)
	got := bestLabelName(t, r, data)
	if got != "audio/x-it" {
		t.Errorf("got %q; want audio/x-it", got)
	}
}

func TestS3M(t *testing.T) {
	r := newTestRegistry(t)
	data := make([]byte, 64)
	copy(data[44:], []byte("SCRM"))
	got := bestLabelName(t, r, data)
	if got != "audio/x-s3m" {
		t.Errorf("got %q; want audio/x-s3m", got)
	}
}

func TestMODSignature(t *testing.T) {
	r := newTestRegistry(t)
	data := make([]byte, 1090)
	copy(data[1080:], []byte("M.K."))
	got := bestLabelName(t, r, data)
	if got != "audio/x-mod" {
		t.Errorf("got %q; want audio/x-mod", got)
	}
}

func TestMODSignatureTooShortSourceNoMatch(t *testing.T) {
	r := newTestRegistry(t)
	// A source shorter than 1084 bytes can never carry the MOD
	// signature; Peek(1080, 4) must fail closed, not match stale data.
	data := make([]byte, 100)
	got := bestLabelName(t, r, data)
	if got == "audio/x-mod" {
		t.Errorf("matched MOD signature against a source too short to contain it")
	}
}

func TestEBMLVint(t *testing.T) {
	cases := []struct {
		data []byte
		want uint64
		len  int
	}{
		{[]byte{0x82}, 2, 1},
		{[]byte{0x40, 0x19}, 0x19, 2},
		{[]byte{0x1A, 0x45, 0xDF, 0xA3}, 0x0A45DFA3 &^ (0xF << 28), 4},
	}
	for _, c := range cases {
		got, length, ok := ebmlVint(c.data)
		if !ok {
			t.Fatalf("ebmlVint(%x): not ok", c.data)
		}
		if length != c.len {
			t.Errorf("ebmlVint(%x) length = %d; want %d", c.data, length, c.len)
		}
		if got != c.want {
			t.Errorf("ebmlVint(%x) = %d; want %d", c.data, got, c.want)
		}
	}
}

func TestMatroskaEBMLMagic(t *testing.T) {
	r := newTestRegistry(t)
	// EBML magic, then a header-size vint of 0 (empty header): no
	// DocType to find, so this should still match generically.
	data := append([]byte{0x1A, 0x45, 0xDF, 0xA3}, 0x80)
	got := bestLabelName(t, r, data)
	if got != "video/x-matroska" {
		t.Errorf("got %q; want video/x-matroska", got)
	}
}

func TestOggVorbis(t *testing.T) {
	r := newTestRegistry(t)
	page := make([]byte, 27)
	copy(page, "OggS")
	page[26] = 1 // num_segments
	page = append(page, 30)
	payload := append([]byte("\x01vorbis"), make([]byte, 23)...)
	data := append(page, payload...)
	got := bestLabelName(t, r, data)
	if got != "audio/x-vorbis" {
		t.Errorf("got %q; want audio/x-vorbis", got)
	}
}

func TestARDebianPackage(t *testing.T) {
	r := newTestRegistry(t)
	var buf bytes.Buffer
	buf.WriteString("!<arch>\n")
	name := "debian-binary"
	header := make([]byte, 60)
	copy(header[0:], name)
	for i := len(name); i < 16; i++ {
		header[i] = ' '
	}
	copy(header[16:], "0           ") // mtime
	copy(header[28:], "0     ")      // uid
	copy(header[34:], "0     ")      // gid
	copy(header[40:], "100644  ")    // mode
	copy(header[48:], "4         ") // size (10 bytes)
	header[58] = 0x60
	header[59] = 0x0A
	buf.Write(header)
	buf.WriteString("data")
	got := bestLabelName(t, r, buf.Bytes())
	if got != "application/vnd.debian.binary-package" && got != "application/x-archive" {
		t.Errorf("got %q; want a debian package or plain archive", got)
	}
}

func TestELF(t *testing.T) {
	r := newTestRegistry(t)
	data := append([]byte{0x7F, 'E', 'L', 'F', 2}, make([]byte, 32)...)
	got := bestLabelName(t, r, data)
	if got != "application/x-elf" {
		t.Errorf("got %q; want application/x-elf", got)
	}
}

func TestPlaintext(t *testing.T) {
	r := newTestRegistry(t)
	data := bytes.Repeat([]byte("hello world, this is plain ASCII text.\n"), 20)
	got := bestLabelName(t, r, data)
	if got != "text/plain" {
		t.Errorf("got %q; want text/plain", got)
	}
}

func TestURIList(t *testing.T) {
	r := newTestRegistry(t)
	data := []byte("# a uri list\nhttp://example.com/a\nhttps://example.com/b\n")
	got := bestLabelName(t, r, data)
	if got != "text/uri-list" {
		t.Errorf("got %q; want text/uri-list", got)
	}
}

func TestXMLProlog(t *testing.T) {
	r := newTestRegistry(t)
	data := []byte(`<?xml version="1.0"?><root/>`)
	got := bestLabelName(t, r, data)
	if got != "application/xml" {
		t.Errorf("got %q; want application/xml", got)
	}
}

func TestSMIL(t *testing.T) {
	r := newTestRegistry(t)
	data := []byte(`<?xml version="1.0"?><smil><body/></smil>`)
	got := bestLabelName(t, r, data)
	if got != "application/smil" {
		t.Errorf("got %q; want application/smil", got)
	}
}

func TestADTS(t *testing.T) {
	r := newTestRegistry(t)
	// 12-bit syncword, MPEG-4, layer 0, no CRC, profile AAC-LC,
	// 44.1kHz, frame length 200.
	hdr := []byte{0xFF, 0xF1, 0x50, 0x80, 0x00, 0x1F, 0xFC}
	hdr[3] = (hdr[3] & 0xFC) | byte((200>>11)&0x3)
	hdr[4] = byte((200 >> 3) & 0xFF)
	hdr[5] = (hdr[5] & 0x1F) | byte((200&0x7)<<5)
	data := append(hdr, make([]byte, 200)...)
	got := bestLabelName(t, r, data)
	if got != "audio/aac" {
		t.Errorf("got %q; want audio/aac", got)
	}
}

func TestADIF(t *testing.T) {
	r := newTestRegistry(t)
	data := append([]byte("ADIF"), make([]byte, 20)...)
	got := bestLabelName(t, r, data)
	if got != "audio/aac" {
		t.Errorf("got %q; want audio/aac", got)
	}
}

func TestMP3FrameRun(t *testing.T) {
	r := newTestRegistry(t)
	// MPEG-1 Layer III, 128kbps, 44.1kHz, no CRC, no padding: a
	// well-known header (0xFF 0xFB 0x90 0x00) whose frame length works
	// out to 144000*128/44100 = 417 bytes (integer division). Five
	// consecutive copies reach TRY_HEADERS.
	header := []byte{0xFF, 0xFB, 0x90, 0x00}
	const frameLen = 417
	var buf bytes.Buffer
	for i := 0; i < 5; i++ {
		buf.Write(header)
		buf.Write(make([]byte, frameLen-len(header)))
	}
	got := bestLabelName(t, r, buf.Bytes())
	if got != "audio/mpeg" {
		t.Errorf("got %q; want audio/mpeg", got)
	}
}

func TestMP3NoSyncNoMatch(t *testing.T) {
	r := newTestRegistry(t)
	data := bytes.Repeat([]byte{0x00, 0x01, 0x02, 0x03}, 100)
	got := bestLabelName(t, r, data)
	if got == "audio/mpeg" {
		t.Errorf("matched audio/mpeg against data with no MPEG sync byte")
	}
}

func TestID3v1TrailerZeroesMP3Probability(t *testing.T) {
	r := newTestRegistry(t)
	header := []byte{0xFF, 0xFB, 0x90, 0x00}
	const frameLen = 417
	var buf bytes.Buffer
	for i := 0; i < 5; i++ {
		buf.Write(header)
		buf.Write(make([]byte, frameLen-len(header)))
	}
	buf.Truncate(buf.Len() - 128)
	buf.WriteString("TAG" + strings.Repeat("\x00", 125))
	// tag/id3v1 still recognizes the trailer as application/x-id3, but
	// mp3Probe itself must not also suggest audio/mpeg once one is present.
	suggestions := r.Recognize(typesniff.NewReaderAtSource(bytes.NewReader(buf.Bytes())))
	for _, s := range suggestions {
		if s.Label.Name == "audio/mpeg" {
			t.Errorf("mp3Probe suggested audio/mpeg despite a trailing ID3v1 tag")
		}
	}
}

func TestMPEGSystemStreamV1(t *testing.T) {
	r := newTestRegistry(t)
	// 00 00 01 BA pack header whose 8-byte body passes every marker-bit
	// check validPackHeader requires, then nothing else: the source ends
	// right there, so the walk succeeds on exhaustion with one packet.
	data := []byte{0x00, 0x00, 0x01, 0xBA, 0x21, 0x00, 0x01, 0x00, 0x01, 0x80, 0x00, 0x01}
	got := bestLabelName(t, r, data)
	if got != "video/mpeg" {
		t.Errorf("got %q; want video/mpeg", got)
	}
}

func TestMPEGSystemStreamV2(t *testing.T) {
	r := newTestRegistry(t)
	// The pack header's fifth byte (0x90) has top bits '10', marking an
	// MPEG-2 program stream pack per mpegSystemV2Probe; it also fails
	// validPackHeader's 0x21 check, so the MPEG-1 probe stays silent.
	data := []byte{0x00, 0x00, 0x01, 0xBA, 0x90, 0x00, 0x00, 0x00}
	suggestions := r.Recognize(typesniff.NewReaderAtSource(bytes.NewReader(data)))
	found := false
	for _, s := range suggestions {
		if s.Label.Name != "video/mpeg" {
			continue
		}
		for _, a := range s.Label.Attrs {
			if a.Key == "mpegversion" && a.Value.String() == "2" {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("no video/mpeg suggestion carried mpegversion=2; got %+v", suggestions)
	}
}

func TestHLSMediaPlaylist(t *testing.T) {
	r := newTestRegistry(t)
	data := []byte("#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n" +
		"#EXTINF:9.009,\nhttp://media.example.com/first.ts\n" +
		"#EXT-X-ENDLIST\n")
	got := bestLabelName(t, r, data)
	if got != "application/vnd.apple.mpegurl" {
		t.Errorf("got %q; want application/vnd.apple.mpegurl", got)
	}
}
