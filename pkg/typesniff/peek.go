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

// Peeker is the Byte Window Provider: safe, bounded, non-blocking access
// to an underlying source at a signed byte offset. It is the only way a
// probe touches the source; a probe never sees a raw reader.
//
// Peek is idempotent: two calls with identical (offset, length) within one
// recognition run return identical bytes. Probes may rely on this instead
// of caching windows themselves.
type Peeker interface {
	// Peek returns exactly length bytes starting at offset, or ok=false if
	// those bytes are not available — offset out of range, length known
	// not to fit, or (for a streaming source) not buffered yet. It never
	// returns a short or partial window.
	//
	// A negative offset counts from the end of the source and is only
	// resolvable when Length reports a known length; Peek(-128, 3) asks
	// for the first three of the last 128 bytes of the source.
	Peek(offset int64, length int) (window []byte, ok bool)

	// Length returns the total size of the source, or ok=false if it is
	// unknown (an unbounded or still-streaming source).
	Length() (size int64, ok bool)
}
