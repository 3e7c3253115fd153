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

// Package sampling implements the sampling-port table: a registry of
// named, unidirectional, lossy channels layered over datagram.Port,
// with validity-based freshness semantics.
package sampling

import (
	"strings"
	"time"

	"github.com/arinc653/p1harness/config"
	"github.com/arinc653/p1harness/datagram"
	"github.com/arinc653/p1harness/internal/apexerr"
)

// Port is one registered sampling channel.
type Port struct {
	Name      string
	Direction config.Direction
	MaxSize   int
	Refresh   time.Duration

	transport datagram.Port
	cache     Message
}

func newPort(ch config.Channel, direction config.Direction, maxSize int, refresh time.Duration, origin time.Time) (*Port, error) {
	if strings.ToLower(ch.Protocol) != "udp" {
		return nil, apexerr.ErrUnsupportedProtocol
	}

	var (
		tp  datagram.Port
		err error
	)
	switch direction {
	case config.DirectionSource:
		tp, err = datagram.NewSource(ch.Addresses)
	case config.DirectionDestination:
		tp, err = datagram.NewDestination(ch.Addresses)
	default:
		return nil, apexerr.New(apexerr.Config, "channel %q: invalid direction %d", ch.Name, direction)
	}
	if err != nil {
		return nil, err
	}

	return &Port{
		Name:      ch.Name,
		Direction: direction,
		MaxSize:   maxSize,
		Refresh:   refresh,
		transport: tp,
		// The cache starts empty at the harness's boot timestamp, so once
		// refresh has elapsed since boot it classifies Invalid until the
		// first real datagram lands.
		cache: Message{Bytes: []byte{}, Timestamp: origin},
	}, nil
}

func (p *Port) close() error {
	return p.transport.Close()
}
