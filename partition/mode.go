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

package partition

import "sync/atomic"

// Mode is the partition's operating mode. Values match the ARINC 653
// OPERATING_MODE_TYPE encoding a guest passes to SET_PARTITION_MODE.
// Only the ColdStart->Normal transition has side effects; the harness
// otherwise just records whichever mode it observes.
type Mode int32

const (
	Idle Mode = iota
	ColdStart
	WarmStart
	Normal
)

func (m Mode) String() string {
	switch m {
	case ColdStart:
		return "ColdStart"
	case WarmStart:
		return "WarmStart"
	case Normal:
		return "Normal"
	case Idle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// modeCell is a small typed wrapper around sync/atomic.Value: lock-free
// reads of the operating mode from any worker thread, with a ColdStart
// default so a freshly-built cell never surfaces an untyped zero value.
type modeCell struct {
	v atomic.Value
}

func newModeCell(initial Mode) *modeCell {
	c := &modeCell{}
	c.v.Store(initial)
	return c
}

func (c *modeCell) Load() Mode {
	if v, ok := c.v.Load().(Mode); ok {
		return v
	}
	return ColdStart
}

func (c *modeCell) Store(m Mode) {
	c.v.Store(m)
}
