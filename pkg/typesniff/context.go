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

// Context is the Probe Context: the single object a probe receives. It
// bundles a Peeker, a Sink, and a length query so a probe never needs to
// hold or manage its own source handle.
//
// A Context is reused across every probe in one recognition run; a probe
// must not retain it or any window it returns past the call that produced
// them.
type Context struct {
	peeker Peeker
	sink   *Aggregator
}

// newContext builds a Context over src, reporting to agg.
func newContext(src Peeker, agg *Aggregator) *Context {
	return &Context{peeker: src, sink: agg}
}

// Peek requests a bounds-checked window of length bytes starting at
// offset (negative offsets count from the end of the source). See
// Peeker.Peek for the exact contract.
func (c *Context) Peek(offset int64, length int) ([]byte, bool) {
	return c.peeker.Peek(offset, length)
}

// Length reports the source's total size, if known.
func (c *Context) Length() (int64, bool) {
	return c.peeker.Length()
}

// Suggest records a suggestion against the run's Sink.
func (c *Context) Suggest(p Probability, l Label) {
	c.sink.Suggest(p, l)
}

// ProbeFunc is a probe: a pure function over a Context and the user data it
// was registered with. A probe that finds nothing simply returns without
// calling Suggest; per spec.md §7, a probe never aborts the dispatcher —
// the worst case is silence.
type ProbeFunc func(ctx *Context, userData any)
