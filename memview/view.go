/*
 * MIT License
 *
 * Copyright (c) 2026 p1harness contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package memview wraps a guest module's shared linear memory (a wazero
// api.Memory) with the typed, byte-granular access primitives the
// host/guest ABI needs: bounds-checked slicing, NUL-terminated string
// and fixed-layout record reads, and little-endian writes. Every
// operation re-samples the memory's current size, since it may grow
// between calls and is never assumed aligned.
package memview

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/arinc653/p1harness/internal/apexerr"
)

// Memory is the subset of wazero's api.Memory this package needs. Any
// api.Memory value satisfies it structurally, and tests can supply a
// lightweight fake without spinning up a real wazero runtime.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	WriteUint32Le(offset uint32, v uint32) bool
	WriteUint64Le(offset uint32, v uint64) bool
	WriteByte(offset uint32, v byte) bool
	Size() uint32
}

// View is the host-side handle onto one guest instance's shared memory.
type View struct {
	mem Memory
}

// New wraps an already-instantiated guest memory.
func New(mem Memory) *View {
	return &View{mem: mem}
}

// Slice returns a live, volatile view into [ptr, ptr+length) — mutations
// through the returned slice are visible to the guest and vice versa,
// since wazero backs api.Memory.Read with the module's actual backing
// array rather than a copy.
func (v *View) Slice(ptr, length uint32) ([]byte, error) {
	b, ok := v.mem.Read(ptr, length)
	if !ok {
		return nil, apexerr.New(apexerr.Abi, "out of range: ptr=%d len=%d size=%d", ptr, length, v.mem.Size())
	}
	return b, nil
}

// ReadBytes returns an independent copy of [ptr, ptr+length).
func (v *View) ReadBytes(ptr, length uint32) ([]byte, error) {
	s, err := v.Slice(ptr, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(s))
	copy(out, s)
	return out, nil
}

// ReadCString reads up to maxLen bytes starting at ptr, stops at the
// first NUL (or maxLen if none is found), and decodes the result as
// UTF-8, failing with an Abi error if it isn't valid.
func (v *View) ReadCString(ptr, maxLen uint32) (string, error) {
	raw, err := v.Slice(ptr, maxLen)
	if err != nil {
		return "", err
	}

	n := bytes.IndexByte(raw, 0)
	if n < 0 {
		n = len(raw)
	}
	s := raw[:n]

	if !utf8.Valid(s) {
		return "", apexerr.New(apexerr.Abi, "bad encoding at ptr=%d", ptr)
	}
	return string(s), nil
}

// ReadRecord decodes a fixed-layout little-endian record at ptr into out,
// which must be a pointer to a struct made only of fixed-size numeric
// fields (no strings, slices or maps — those are read separately, e.g.
// via ReadCString for the name suffix of a ProcessAttribute).
func (v *View) ReadRecord(ptr uint32, out any) error {
	size := uint32(binary.Size(out))
	raw, err := v.Slice(ptr, size)
	if err != nil {
		return err
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, out); err != nil {
		return apexerr.Wrap(apexerr.Abi, err, "bad record at ptr=%d", ptr)
	}
	return nil
}

// WriteBytes writes bytes at ptr, volatile and byte-granular.
func (v *View) WriteBytes(ptr uint32, data []byte) error {
	if !v.mem.Write(ptr, data) {
		return apexerr.New(apexerr.Abi, "out of range write: ptr=%d len=%d size=%d", ptr, len(data), v.mem.Size())
	}
	return nil
}

// WriteI32 writes a little-endian 32-bit signed integer at ptr.
func (v *View) WriteI32(ptr uint32, val int32) error {
	if !v.mem.WriteUint32Le(ptr, uint32(val)) {
		return apexerr.New(apexerr.Abi, "out of range write: ptr=%d size=4", ptr)
	}
	return nil
}

// WriteI64 writes a little-endian 64-bit signed integer at ptr.
func (v *View) WriteI64(ptr uint32, val int64) error {
	if !v.mem.WriteUint64Le(ptr, uint64(val)) {
		return apexerr.New(apexerr.Abi, "out of range write: ptr=%d size=8", ptr)
	}
	return nil
}

// WriteU8 writes a single byte at ptr.
func (v *View) WriteU8(ptr uint32, val uint8) error {
	if !v.mem.WriteByte(ptr, val) {
		return apexerr.New(apexerr.Abi, "out of range write: ptr=%d size=1", ptr)
	}
	return nil
}

// Size returns the current memory size in bytes, re-sampled on every call
// since the guest may grow its memory at any time.
func (v *View) Size() uint32 {
	return v.mem.Size()
}
