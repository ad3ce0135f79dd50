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

// Package probes is the built-in format catalog: one Register call per
// probe, wired against a typesniff.Registry. Hosts that want a working
// recognizer out of the box call Register once at startup; hosts that
// want a narrower or extended catalog build their own registry and
// register only the probes they want, plus their own.
package probes

import (
	"go4.org/legal"

	"github.com/go4media/typesniff/pkg/typesniff"
)

func init() {
	// The fixed-magic prefix table in simple.go and riff.go is carried
	// over from the file(1) magic database by way of pkg/magic; that
	// database requires this notice to travel with any redistribution
	// of its data.
	legal.RegisterLicense(`
$File: LEGAL.NOTICE,v 1.15 2006/05/03 18:48:33 christos Exp $
Copyright (c) Ian F. Darwin 1986, 1987, 1989, 1990, 1991, 1992, 1994, 1995.
Software written by Ian F. Darwin and others;
maintained 1994- Christos Zoulas.

This software is not subject to any export provision of the United States
Department of Commerce, and may be exported to any country or planet.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:
1. Redistributions of source code must retain the above copyright
   notice immediately at the beginning of the file, without modification,
   this list of conditions, and the following disclaimer.
2. Redistributions in binary form must reproduce the above copyright
   notice, this list of conditions and the following disclaimer in the
   documentation and/or other materials provided with the distribution.

THIS SOFTWARE IS PROVIDED BY THE AUTHOR AND CONTRIBUTORS ''AS IS'' AND
ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
ARE DISCLAIMED. IN NO EVENT SHALL THE AUTHOR OR CONTRIBUTORS BE LIABLE FOR
ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS
OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT
LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY
OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF
SUCH DAMAGE.
`)
}

// Register wires every built-in probe into r. It fails only if r already
// has a probe registered under one of these names.
func Register(r *typesniff.Registry) error {
	for _, reg := range allRegistrations() {
		if err := r.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

// allRegistrations collects every *Registrations() helper from across the
// catalog's files. Each file groups the registrations for one family of
// formats (simple fixed-magic, RIFF, tag formats, structured streams,
// container walks, text, archives, and the three library-backed deep
// probes) so that no single file holds the whole catalog.
func allRegistrations() []typesniff.Registration {
	var out []typesniff.Registration
	out = append(out, simpleRegistrations()...)
	out = append(out, riffRegistrations()...)
	out = append(out, tagRegistrations()...)
	out = append(out, mp3Registrations()...)
	out = append(out, aacRegistrations()...)
	out = append(out, mpegSystemRegistrations()...)
	out = append(out, mpegVideoRegistrations()...)
	out = append(out, isobmffRegistrations()...)
	out = append(out, matroskaRegistrations()...)
	out = append(out, oggRegistrations()...)
	out = append(out, dvRegistrations()...)
	out = append(out, wavpackRegistrations()...)
	out = append(out, trackerRegistrations()...)
	out = append(out, textRegistrations()...)
	out = append(out, archiveRegistrations()...)
	out = append(out, imageDeepRegistrations()...)
	out = append(out, pdfRegistrations()...)
	out = append(out, hlsRegistrations()...)
	return out
}
