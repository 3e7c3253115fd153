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

package sampling

import "time"

// Validity classifies a Message relative to a port's refresh interval.
type Validity int

const (
	Invalid Validity = iota
	Valid
)

func (v Validity) String() string {
	if v == Valid {
		return "Valid"
	}
	return "Invalid"
}

// Message is the last-received datagram cached by a port, plus the
// instant it was received.
type Message struct {
	Bytes     []byte
	Timestamp time.Time
}

// ValidityAt classifies the message as of now, against refresh: Valid iff
// now-Timestamp <= refresh. This is always a fresh evaluation; a message
// that was Valid at reception reports Invalid on a later call once its
// age exceeds refresh, whether or not anyone read it in between.
func (m Message) ValidityAt(now time.Time, refresh time.Duration) Validity {
	if now.Sub(m.Timestamp) <= refresh {
		return Valid
	}
	return Invalid
}
