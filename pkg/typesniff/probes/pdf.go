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
	"io"

	"rsc.io/pdf"

	"github.com/go4media/typesniff/pkg/typesniff"
)

// ctxReaderAt adapts a typesniff.Context's Peek into an io.ReaderAt, the
// shape rsc.io/pdf.NewReader requires (the same call
// app/scanningcabinet/scancab/pdf.go makes against an *os.File). A PDF's
// cross-reference table lives near the end of the file, so pdf.NewReader
// needs true random access, not just a prefix window.
type ctxReaderAt struct {
	ctx  *typesniff.Context
	size int64
}

func (r ctxReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= r.size {
		return 0, io.EOF
	}
	want := int64(len(p))
	avail := r.size - off
	if want > avail {
		want = avail
	}
	b, ok := r.ctx.Peek(off, int(want))
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	n := copy(p, b)
	if int64(n) < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

// pdfProbe confirms the "%PDF-" magic (already handled at Maximum by
// archive.go's fixed-magic table) by additionally parsing the document
// with rsc.io/pdf and reading its page count. A file can carry a correct
// header while its body or cross-reference table is corrupt, truncated,
// or simply not a PDF past the first bytes (some polyglot files start
// with a valid PDF header and are something else entirely); a successful
// parse with at least one page is much stronger evidence of a genuine PDF
// than the header alone.
func pdfProbe(ctx *typesniff.Context, _ any) {
	magic, ok := ctx.Peek(0, 5)
	if !ok || !bytes.Equal(magic, []byte("%PDF-")) {
		return
	}
	size, ok := ctx.Length()
	if !ok {
		return // pdf.NewReader needs a known size to find the xref table
	}
	doc, err := pdf.NewReader(ctxReaderAt{ctx: ctx, size: size}, size)
	if err != nil {
		return
	}
	if doc.NumPage() < 1 {
		return
	}
	ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("application/pdf",
		typesniff.IntAttr("pages", int64(doc.NumPage()))))
}

func pdfRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "document/pdf-deep",
			Rank:       typesniff.RankSecondary,
			Probe:      pdfProbe,
			Extensions: []string{"pdf"},
			Default:    typesniff.MustLabel("application/pdf"),
		},
	}
}
