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

package typesniff

import "bytes"

// StartsWithProbe builds a probe that peeks len(pattern) bytes at offset 0
// and suggests label at probability if they equal pattern exactly. This is
// the generic "starts-with" kernel (spec.md §4.3); the probe catalog's
// dozens of trivial fixed-magic formats are all this kernel applied to a
// different (pattern, probability, label) triple, rather than dozens of
// hand-written near-duplicates.
func StartsWithProbe(pattern []byte, probability Probability, label Label) ProbeFunc {
	pat := append([]byte(nil), pattern...)
	return func(ctx *Context, _ any) {
		window, ok := ctx.Peek(0, len(pat))
		if !ok {
			return
		}
		if bytes.Equal(window, pat) {
			ctx.Suggest(probability, label)
		}
	}
}

// StartsWithAtProbe is StartsWithProbe generalized to an arbitrary offset,
// for the catalog's fixed-offset magic tests (e.g. "ftyp" at byte 4,
// "M.K." at byte 1080).
func StartsWithAtProbe(offset int64, pattern []byte, probability Probability, label Label) ProbeFunc {
	pat := append([]byte(nil), pattern...)
	return func(ctx *Context, _ any) {
		window, ok := ctx.Peek(offset, len(pat))
		if !ok {
			return
		}
		if bytes.Equal(window, pat) {
			ctx.Suggest(probability, label)
		}
	}
}

// RIFFFormProbe builds a probe for the RIFF-form kernel (spec.md §4.3):
// peek 12 bytes at offset 0, require "RIFF" at [0:4) and formTag at
// [8:12), and suggest label at Maximum. WAV, AVI, CDXA, and DSMF are all
// this kernel with a different four-byte form tag.
func RIFFFormProbe(formTag [4]byte, label Label) ProbeFunc {
	return func(ctx *Context, _ any) {
		window, ok := ctx.Peek(0, 12)
		if !ok {
			return
		}
		if !bytes.Equal(window[0:4], []byte("RIFF")) {
			return
		}
		if !bytes.Equal(window[8:12], formTag[:]) {
			return
		}
		ctx.Suggest(Maximum, label)
	}
}
