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

// Cursor is a movable position over a Context's source, backed
// entirely by Peek calls. It replaces the raw-pointer-plus-ad-hoc-length
// walks that format scanners tend to reach for (box chains, packet walks,
// sub-block walks): every read re-peeks at the cursor's current absolute
// position, so there is no way to read past what Peek actually handed
// back, and no stale-length bug from advancing into a shorter window than
// the one that was checked.
type Cursor struct {
	ctx *Context
	pos int64
}

// NewCursor returns a Cursor positioned at start.
func NewCursor(ctx *Context, start int64) *Cursor {
	return &Cursor{ctx: ctx, pos: start}
}

// Pos returns the cursor's current absolute offset.
func (c *Cursor) Pos() int64 {
	return c.pos
}

// Seek moves the cursor to an absolute offset.
func (c *Cursor) Seek(pos int64) {
	c.pos = pos
}

// Advance moves the cursor forward by n bytes (n may be negative).
func (c *Cursor) Advance(n int64) {
	c.pos += n
}

// Peek returns n bytes at the cursor's current position without moving it.
func (c *Cursor) Peek(n int) ([]byte, bool) {
	return c.ctx.Peek(c.pos, n)
}

// PeekAt returns n bytes at an absolute offset, independent of the
// cursor's current position, for looking ahead without committing to a
// move.
func (c *Cursor) PeekAt(offset int64, n int) ([]byte, bool) {
	return c.ctx.Peek(offset, n)
}

// Take returns n bytes at the cursor's current position and advances past
// them. It fails (and leaves the cursor unmoved) if those bytes are not
// available.
func (c *Cursor) Take(n int) ([]byte, bool) {
	b, ok := c.ctx.Peek(c.pos, n)
	if !ok {
		return nil, false
	}
	c.pos += int64(n)
	return b, true
}
