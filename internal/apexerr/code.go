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

// Package apexerr defines the five error kinds the partition harness
// surfaces internally: ConfigError, AbiError, StateError, TransportError
// and GuestError.
package apexerr

// Kind identifies which of the five internal error categories an Error
// belongs to.
type Kind uint16

const (
	// Unknown is the zero value; never returned by this package.
	Unknown Kind = iota

	// Config covers unknown port names, malformed channel URIs and
	// unrecognised protocol tags.
	Config

	// Abi covers shared-memory out-of-range access, bad UTF-8 and bad
	// record decoding.
	Abi

	// State covers duplicate names, already-spawned processes, processes
	// not enabled and unknown PID/SID lookups.
	State

	// Transport covers socket-level failures. When a sampling port's
	// write or read hits one, the sampling port table logs it and does
	// not propagate it; a failure to set up a port's socket is returned
	// from port creation.
	Transport

	// Guest covers a trap inside the guest module.
	Guest
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "ConfigError"
	case Abi:
		return "AbiError"
	case State:
		return "StateError"
	case Transport:
		return "TransportError"
	case Guest:
		return "GuestError"
	default:
		return "UnknownError"
	}
}
