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

// Package config holds the configuration snapshot a PartitionContext is
// built from: the guest import/export names and the declared sampling
// channels. Loading this from a file is out of scope for the hard core;
// this package only defines the shape and a programmatic/viper-backed way
// to populate it.
package config

import (
	"strings"

	"github.com/arinc653/p1harness/internal/apexerr"
)

// Direction says which way a sampling port moves data: Source ports may
// only write, Destination ports may only read. Values match the ARINC
// 653 PORT_DIRECTION_TYPE encoding used on the guest side.
type Direction int

const (
	DirectionSource Direction = iota
	DirectionDestination
)

func (d Direction) String() string {
	switch d {
	case DirectionSource:
		return "Source"
	case DirectionDestination:
		return "Destination"
	default:
		return "Unknown"
	}
}

// Channel is one declared sampling channel, as it would appear on the
// command line (`--channel udp://ping@127.0.0.1:9000`) or under a config
// file's `channels:` key.
type Channel struct {
	Name      string
	Protocol  string // "udp" or "tcp"; only "udp" is wired to a transport
	Addresses []string
}

// Config is the snapshot PartitionContext carries: guest import/export
// names and the declared channel list.
type Config struct {
	ImportNamespace string // default "arinc653:p1@0.1.0"
	MemoryModule    string // default "env"
	MemoryField     string // default "memory"
	AllocExport     string // default "__apex_wasm_proc_alloc"
	MainExport      string // default "main"
	Argc            int32
	Argv            int32

	Channels []Channel
}

// Default returns a Config with the stock import/export names and no
// declared channels.
func Default() Config {
	return Config{
		ImportNamespace: "arinc653:p1@0.1.0",
		MemoryModule:    "env",
		MemoryField:     "memory",
		AllocExport:     "__apex_wasm_proc_alloc",
		MainExport:      "main",
	}
}

// ChannelByName looks up a declared channel case-insensitively, returning
// ok=false if CREATE_SAMPLING_PORT names something not configured.
func (c Config) ChannelByName(name string) (Channel, bool) {
	for _, ch := range c.Channels {
		if strings.EqualFold(ch.Name, name) {
			return ch, true
		}
	}
	return Channel{}, false
}

// Validate checks every declared channel's protocol is recognised (udp
// or tcp); it does not require the protocol be wired end to end (tcp
// parses but port creation still refuses it, see
// apexerr.ErrUnsupportedProtocol).
func (c Config) Validate() error {
	for _, ch := range c.Channels {
		switch strings.ToLower(ch.Protocol) {
		case "udp", "tcp":
		default:
			return apexerr.New(apexerr.Config, "channel %q: unrecognised protocol %q", ch.Name, ch.Protocol)
		}
		if ch.Name == "" {
			return apexerr.New(apexerr.Config, "channel with empty name")
		}
		if len(ch.Addresses) == 0 {
			return apexerr.New(apexerr.Config, "channel %q: no addresses", ch.Name)
		}
	}
	return nil
}
