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

// ebmlMagic is the EBML document magic, "video/webm"'s seed entry in
// pkg/magic's prefixTable (0x1A 0x45 0xDF 0xA3); Matroska and WebM are
// both EBML documents distinguished only by their DocType element.
var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// ebmlVint decodes an EBML variable-length integer starting at data[0]:
// one plus the number of leading zero bits in the first byte (1-8) gives
// the element's total length in bytes, and the length-marker bit is masked
// out of the value (the leading zeros above it are zero already).
func ebmlVint(data []byte) (value uint64, length int, ok bool) {
	if len(data) == 0 {
		return 0, 0, false
	}
	first := data[0]
	length = 1
	mask := byte(0x80)
	for mask != 0 && first&mask == 0 {
		length++
		mask >>= 1
	}
	if length > 8 || length > len(data) {
		return 0, 0, false
	}
	value = uint64(first) &^ uint64(mask)
	for i := 1; i < length; i++ {
		value = value<<8 | uint64(data[i])
	}
	return value, length, true
}

const ebmlDocTypeID = 0x4282

// matroskaProbe confirms the EBML magic, decodes the header element's
// size, and scans within it for the DocType element (ID 0x4282) to read
// its string value ("matroska" or "webm"). If the DocType can't be found
// within the declared header size it still suggests Likely on the EBML
// magic alone, since no other format in this catalog starts with it.
func matroskaProbe(ctx *typesniff.Context, _ any) {
	magic, ok := ctx.Peek(0, 4)
	if !ok || !bytes.Equal(magic, ebmlMagic) {
		return
	}

	sizeBytes, ok := ctx.Peek(4, 8)
	if !ok {
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("video/x-matroska"))
		return
	}
	headerSize, sizeLen, ok := ebmlVint(sizeBytes)
	if !ok {
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("video/x-matroska"))
		return
	}

	bodyOff := int64(4 + sizeLen)
	body, ok := ctx.Peek(bodyOff, int(headerSize))
	if !ok {
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("video/x-matroska"))
		return
	}

	docType, ok := findEBMLDocType(body)
	if !ok {
		ctx.Suggest(typesniff.Likely, typesniff.MustLabel("video/x-matroska"))
		return
	}
	switch docType {
	case "webm":
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("video/webm"))
	default:
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("video/x-matroska", typesniff.StringAttr("doctype", docType)))
	}
}

// findEBMLDocType walks elements in body (the EBML header's contents)
// looking for the DocType element, returning its string value.
func findEBMLDocType(body []byte) (string, bool) {
	pos := 0
	for pos < len(body) {
		id, idLen, ok := ebmlVint(body[pos:])
		if !ok {
			return "", false
		}
		sizePos := pos + idLen
		if sizePos >= len(body) {
			return "", false
		}
		size, sizeLen, ok := ebmlVint(body[sizePos:])
		if !ok {
			return "", false
		}
		valPos := sizePos + sizeLen
		valEnd := valPos + int(size)
		if valEnd > len(body) {
			return "", false
		}
		if id == ebmlDocTypeID {
			return string(bytes.TrimRight(body[valPos:valEnd], "\x00")), true
		}
		pos = valEnd
	}
	return "", false
}

func matroskaRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{
			Name:       "container/matroska",
			Rank:       typesniff.RankPrimary,
			Probe:      matroskaProbe,
			Extensions: []string{"mkv", "mka", "webm"},
			Default:    typesniff.MustLabel("video/x-matroska"),
		},
	}
}
