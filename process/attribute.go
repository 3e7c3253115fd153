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

// Package process implements the partition's process table: the registry
// of guest processes, the wire decode of their attribute records and
// their worker-thread lifecycle.
package process

import (
	"github.com/arinc653/p1harness/internal/apexerr"
)

// attributeHeader is the fixed 32-byte little-endian prefix of the
// attribute wire layout; the NUL-terminated name follows immediately
// after and is decoded separately since binary.Read can't target a
// string.
type attributeHeader struct {
	Period       int64
	TimeCapacity int64
	EntryPoint   int32
	StackSize    uint32
	BasePriority int32
	Deadline     int32
}

// HeaderSize is the fixed portion of the wire layout, in bytes.
const HeaderSize = 32

// NameMaxLen is the maximum length of an attribute's name field.
const NameMaxLen = 32

// Attribute is the decoded form of a guest-exported process attribute
// record.
type Attribute struct {
	Period       int64
	TimeCapacity int64
	EntryPoint   int32
	StackSize    uint32
	BasePriority int32
	Deadline     int32
	Name         string
}

// memReader is the subset of memview.View that DecodeAttribute needs;
// declared locally so this package doesn't import memview just for a type.
type memReader interface {
	ReadRecord(ptr uint32, out any) error
	ReadCString(ptr, maxLen uint32) (string, error)
}

// DecodeAttribute reads a process attribute at ptr: the 32-byte header
// via ReadRecord, then the NUL-terminated name immediately following it.
func DecodeAttribute(v memReader, ptr uint32) (Attribute, error) {
	var h attributeHeader
	if err := v.ReadRecord(ptr, &h); err != nil {
		return Attribute{}, err
	}

	name, err := v.ReadCString(ptr+HeaderSize, NameMaxLen)
	if err != nil {
		return Attribute{}, err
	}

	return Attribute{
		Period:       h.Period,
		TimeCapacity: h.TimeCapacity,
		EntryPoint:   h.EntryPoint,
		StackSize:    h.StackSize,
		BasePriority: h.BasePriority,
		Deadline:     h.Deadline,
		Name:         name,
	}, nil
}

// Validate rejects attributes the harness cannot host: empty/over-long
// names (the wire layout caps the name at NameMaxLen, but a caller
// constructing an Attribute by hand could still exceed it) and zero stack
// sizes.
func (a Attribute) Validate() error {
	if a.Name == "" {
		return apexerr.New(apexerr.Abi, "process attribute: empty name")
	}
	if len(a.Name) > NameMaxLen {
		return apexerr.New(apexerr.Abi, "process attribute: name %q exceeds %d bytes", a.Name, NameMaxLen)
	}
	if a.StackSize == 0 {
		return apexerr.New(apexerr.Abi, "process attribute %q: zero stack size", a.Name)
	}
	return nil
}
