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

// riffEntry pairs a RIFF form tag with the label it implies. WAV, AVI,
// CDXA, and DSMF are all the same "RIFF"+size+form-tag layout with a
// different four-byte tag at byte 8, so one kernel (typesniff.RIFFFormProbe)
// covers all four instead of four near-identical hand probes.
type riffEntry struct {
	name    string
	formTag [4]byte
	label   typesniff.Label
	ext     []string
}

var riffTable = []riffEntry{
	{"wav", [4]byte{'W', 'A', 'V', 'E'}, typesniff.MustLabel("audio/x-wav"), []string{"wav"}},
	{"avi", [4]byte{'A', 'V', 'I', ' '}, typesniff.MustLabel("video/x-msvideo"), []string{"avi"}},
	{"cdxa", [4]byte{'C', 'D', 'X', 'A'}, typesniff.MustLabel("application/x-cdxa"), nil},
	{"dsmf", [4]byte{'D', 'S', 'M', 'F'}, typesniff.MustLabel("audio/x-dsmf"), []string{"dsm"}},
}

func riffRegistrations() []typesniff.Registration {
	out := make([]typesniff.Registration, 0, len(riffTable))
	for _, e := range riffTable {
		e := e
		out = append(out, typesniff.Registration{
			Name:       "riff/" + e.name,
			Rank:       typesniff.RankPrimary,
			Probe:      typesniff.RIFFFormProbe(e.formTag, e.label),
			Extensions: e.ext,
			Default:    e.label,
		})
	}
	return out
}
