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

package process

// Handle identifies the worker thread running a spawned process: a
// harness-assigned thread id (correlated back to a pid by Table.ByThreadID)
// and a channel that receives one value when the entry function returns:
// nil, or the guest's trap.
type Handle struct {
	ThreadID uint64
	Done     <-chan error
}

// Process is one entry in the Process Table: its declared attribute, its
// enabled flag and, once spawned, its worker-thread handle.
type Process struct {
	Attribute Attribute
	Enabled   bool
	handle    *Handle
}

// Spawned reports whether SpawnAll has already launched this process.
func (p *Process) Spawned() bool {
	return p.handle != nil
}

// Handle returns the worker-thread handle, or nil if not yet spawned.
func (p *Process) Handle() *Handle {
	return p.handle
}
