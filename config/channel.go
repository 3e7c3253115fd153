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

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/arinc653/p1harness/internal/apexerr"
)

// ParseChannelURI parses a channel declaration of the form
//
//	"udp"|"tcp" "://" name "@" host ":" port
//
// e.g. "udp://ping@127.0.0.1:9000".
func ParseChannelURI(raw string) (Channel, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Channel{}, apexerr.Wrap(apexerr.Config, err, "malformed channel URI %q", raw)
	}

	proto := strings.ToLower(u.Scheme)
	switch proto {
	case "udp", "tcp":
	default:
		return Channel{}, apexerr.New(apexerr.Config, "channel URI %q: unrecognised protocol %q", raw, u.Scheme)
	}

	if u.User == nil || u.User.Username() == "" {
		return Channel{}, apexerr.New(apexerr.Config, "channel URI %q: missing name before '@'", raw)
	}
	name := u.User.Username()

	if u.Host == "" {
		return Channel{}, apexerr.New(apexerr.Config, "channel URI %q: missing host:port", raw)
	}

	return Channel{
		Name:      name,
		Protocol:  proto,
		Addresses: []string{u.Host},
	}, nil
}

// MustParseChannelURI is ParseChannelURI but panics on error; useful in
// tests and in cobra flag defaults where the URI is a compile-time literal.
func MustParseChannelURI(raw string) Channel {
	ch, err := ParseChannelURI(raw)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return ch
}
