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
	"unicode/utf8"

	"github.com/go4media/typesniff/pkg/typesniff"
)

const (
	utf8MaxWindow      = 32768
	utf8MinWindow      = 16
	utf8InitialProb    = typesniff.Probability(95)
	utf8ShrinkPenalty  = typesniff.Probability(10)
	plaintextLargeFile = 64 * 1024
)

// validUTF8Window checks whether window is valid UTF-8, shrinking it by
// one byte at a time from the end if not: a read window cut off mid
// multi-byte rune looks invalid at its exact length but is actually fine,
// since the only "error" is the truncated trailing rune, not malformed
// data. Shrinking more than utf8.UTFMax-1 bytes without becoming valid
// means the data really is malformed, not just cut short.
func validUTF8Window(window []byte) bool {
	for shrink := 0; shrink < utf8.UTFMax && shrink < len(window); shrink++ {
		if utf8.Valid(window[:len(window)-shrink]) {
			return true
		}
	}
	return len(window) == 0
}

// utf8WindowProbability evaluates UTF-8 plausibility at offset, starting
// with a 32 KiB window and halving it on failure down to a 16-byte floor,
// losing ten points of confidence per shrink. A window can fail either
// because it doesn't fit (source shorter than the window, or past its end)
// or because it isn't valid UTF-8; both count as a shrink.
func utf8WindowProbability(ctx *typesniff.Context, offset int64) (typesniff.Probability, bool) {
	prob := utf8InitialProb
	for size := utf8MaxWindow; size >= utf8MinWindow; size /= 2 {
		if window, ok := ctx.Peek(offset, size); ok && len(window) > 0 && validUTF8Window(window) {
			return prob, true
		}
		prob -= utf8ShrinkPenalty
	}
	return typesniff.None, false
}

// plaintextProbe evaluates UTF-8 plausibility at the start of the source
// and, for sources of at least 64 KiB, independently at the midpoint,
// averaging the two — typesniff.Average's role for "does the start agree
// with the middle" checks across this catalog (mp3.go's frame scanner is
// the other user). Binary data frequently starts with a valid ASCII header
// before diverging; checking only the first window would misclassify it.
// An XML prolog is rejected up front so it doesn't mask the dedicated XML
// probes in this same file.
func plaintextProbe(ctx *typesniff.Context, _ any) {
	if prolog, ok := ctx.Peek(0, 5); ok && bytes.Equal(prolog, []byte("<?xml")) {
		return
	}

	startProb, ok := utf8WindowProbability(ctx, 0)
	if !ok {
		return
	}

	length, lengthKnown := ctx.Length()
	if !lengthKnown || length == 0 {
		if startProb > typesniff.Possible {
			startProb = typesniff.Possible
		}
		ctx.Suggest(startProb, typesniff.MustLabel("text/plain"))
		return
	}
	if length < plaintextLargeFile {
		ctx.Suggest(startProb, typesniff.MustLabel("text/plain"))
		return
	}

	midProb, ok := utf8WindowProbability(ctx, length/2)
	if !ok {
		return
	}
	ctx.Suggest(typesniff.Average(startProb, midProb), typesniff.MustLabel("text/plain"))
}

// uriListProbe recognizes text/uri-list (RFC 2483): every non-blank,
// non-comment ('#') line in a short prefix of the file looks like an
// absolute URI ("scheme:" followed by non-whitespace).
func uriListProbe(ctx *typesniff.Context, _ any) {
	window := 512
	if length, ok := ctx.Length(); ok && length < int64(window) {
		window = int(length)
	}
	text, ok := ctx.Peek(0, window)
	if !ok {
		return
	}
	lines := strings.Split(string(text), "\n")
	if len(lines) > 1 {
		// The last line may have been cut off mid-URI by the window;
		// only the complete lines before it count as evidence.
		lines = lines[:len(lines)-1]
	}
	sawURI := false
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !looksLikeURI(line) {
			return
		}
		sawURI = true
	}
	if sawURI {
		ctx.Suggest(typesniff.Maximum, typesniff.MustLabel("text/uri-list"))
	}
}

func looksLikeURI(s string) bool {
	colon := strings.IndexByte(s, ':')
	if colon <= 0 {
		return false
	}
	scheme := s[:colon]
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return colon+1 < len(s)
}

// xmlElementTarget configures one registration of xmlPrologProbe: either it
// requires a specific root element name (anyElement false, Element set,
// e.g. "smil"), or it matches generically regardless of what the root
// element turns out to be (anyElement true). The source this spec is
// modeled on represented "any element" as an empty element name compared
// against with strings.EqualFold, which happens to also match a document
// whose root element name really is empty; anyElement makes that case an
// explicit branch instead of relying on the empty string falling through.
type xmlElementTarget struct {
	element     string
	anyElement  bool
	probability typesniff.Probability
	label       typesniff.Label
}

func isASCIIAlpha(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isXMLNameByte(b byte) bool {
	return isASCIIAlpha(b) || b >= '0' && b <= '9' || b == '-' || b == '_' || b == ':'
}

// findFirstElementName advances past the prolog (`<?…?>`) and any doctype
// or comment markup (`<!…>`) to find the first element-start: a '<'
// immediately followed by an ASCII letter. It returns the element's name:
// that letter plus the run of name bytes immediately following it.
func findFirstElementName(body []byte) (string, bool) {
	i := 0
	for i < len(body) {
		if body[i] != '<' {
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", false
		}
		switch {
		case body[i+1] == '?':
			end := bytes.Index(body[i:], []byte("?>"))
			if end < 0 {
				return "", false
			}
			i += end + 2
		case body[i+1] == '!':
			end := bytes.IndexByte(body[i+1:], '>')
			if end < 0 {
				return "", false
			}
			i += end + 2
		case isASCIIAlpha(body[i+1]):
			j := i + 2
			for j < len(body) && isXMLNameByte(body[j]) {
				j++
			}
			return string(body[i+1 : j]), true
		default:
			return "", false
		}
	}
	return "", false
}

// xmlPrologProbe recognizes an XML document by its "<?xml" prolog, then
// advances past the prolog to the first element-start to decide whether
// this registration's configured target matches: either a specific
// required root element (emit at target.probability, typically MAXIMUM
// for a recognized vocabulary like SMIL) or, for the generic "any
// element" registration, unconditionally once the prolog itself is
// confirmed (emit at MINIMUM for bare application/xml).
func xmlPrologProbe(ctx *typesniff.Context, userData any) {
	target := userData.(xmlElementTarget)

	size := 256
	if length, ok := ctx.Length(); ok && length < int64(size) {
		size = int(length)
	}
	window, ok := ctx.Peek(0, size)
	if !ok || !bytes.HasPrefix(window, []byte("<?xml")) {
		return
	}

	if target.anyElement {
		ctx.Suggest(target.probability, target.label)
		return
	}

	name, ok := findFirstElementName(window)
	if !ok || name != target.element {
		return
	}
	ctx.Suggest(target.probability, target.label)
}

func textRegistrations() []typesniff.Registration {
	return []typesniff.Registration{
		{Name: "text/plain", Rank: typesniff.RankMarginal, Probe: plaintextProbe, Extensions: []string{"txt"}, Default: typesniff.MustLabel("text/plain")},
		{Name: "text/uri-list", Rank: typesniff.RankSecondary, Probe: uriListProbe, Extensions: []string{"uri", "uris"}, Default: typesniff.MustLabel("text/uri-list")},
		{
			Name:       "text/xml-smil",
			Rank:       typesniff.RankPrimary,
			Probe:      xmlPrologProbe,
			Extensions: []string{"smil"},
			Default:    typesniff.MustLabel("application/smil"),
			UserData: xmlElementTarget{
				element:     "smil",
				probability: typesniff.Maximum,
				label:       typesniff.MustLabel("application/smil"),
			},
		},
		{
			Name:       "text/xml-prolog",
			Rank:       typesniff.RankSecondary,
			Probe:      xmlPrologProbe,
			Extensions: []string{"xml"},
			Default:    typesniff.MustLabel("application/xml"),
			UserData: xmlElementTarget{
				anyElement:  true,
				probability: typesniff.Minimum,
				label:       typesniff.MustLabel("application/xml"),
			},
		},
	}
}
