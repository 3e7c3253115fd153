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

// Package datagram implements the unidirectional, non-blocking datagram
// endpoint one sampling port is built on. It speaks UDP; a channel whose
// declared protocol tag says otherwise is refused at port-creation time
// with apexerr.ErrUnsupportedProtocol.
package datagram

import (
	"errors"
	"net"
	"os"
	"time"

	"github.com/arinc653/p1harness/internal/apexerr"
)

// Port is one direction of a sampling channel's transport.
type Port interface {
	// Send writes one datagram. Only valid on a Source port.
	Send(b []byte) error
	// Recv returns one datagram up to maxSize bytes, or
	// apexerr.ErrWouldBlock if none is pending. Only valid on a
	// Destination port.
	Recv(maxSize int) ([]byte, error)
	Close() error
}

type sourcePort struct {
	conn *net.UDPConn
}

// NewSource binds to an ephemeral local address and connects to the first
// of addrs.
func NewSource(addrs []string) (Port, error) {
	if len(addrs) == 0 {
		return nil, apexerr.New(apexerr.Config, "source port: no peer address declared")
	}

	raddr, err := net.ResolveUDPAddr("udp", addrs[0])
	if err != nil {
		return nil, apexerr.Wrap(apexerr.Config, err, "resolving peer address %q", addrs[0])
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, apexerr.Wrap(apexerr.Transport, err, "dialing %q", addrs[0])
	}

	return &sourcePort{conn: conn}, nil
}

func (p *sourcePort) Send(b []byte) error {
	if _, err := p.conn.Write(b); err != nil {
		if isWouldBlock(err) {
			return apexerr.ErrWouldBlock
		}
		return apexerr.Wrap(apexerr.Transport, err, "send")
	}
	return nil
}

func (p *sourcePort) Recv(int) ([]byte, error) {
	return nil, apexerr.New(apexerr.State, "wrong direction: Source port cannot Recv")
}

func (p *sourcePort) Close() error {
	return p.conn.Close()
}

type destinationPort struct {
	conn *net.UDPConn
}

// NewDestination binds to the first of addrs that resolves and binds,
// with an ephemeral local fallback if none bind. Only one address is
// bound; the remaining declared addresses are not listened on.
func NewDestination(addrs []string) (Port, error) {
	var (
		conn *net.UDPConn
		err  error
	)

	for _, a := range addrs {
		var laddr *net.UDPAddr
		laddr, err = net.ResolveUDPAddr("udp", a)
		if err != nil {
			continue
		}
		conn, err = net.ListenUDP("udp", laddr)
		if err == nil {
			break
		}
	}

	if conn == nil {
		conn, err = net.ListenUDP("udp", nil)
		if err != nil {
			return nil, apexerr.Wrap(apexerr.Transport, err, "binding destination port")
		}
	}

	return &destinationPort{conn: conn}, nil
}

func (p *destinationPort) Send([]byte) error {
	return apexerr.New(apexerr.State, "wrong direction: Destination port cannot Send")
}

// Recv waits at most one millisecond: the read deadline is set just
// ahead of "now" (a deadline already reached fails the read before the
// socket is looked at), so a datagram already queued in the kernel
// buffer is returned immediately and an empty buffer surfaces as
// apexerr.ErrWouldBlock instead of parking the calling worker thread.
func (p *destinationPort) Recv(maxSize int) ([]byte, error) {
	if err := p.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return nil, apexerr.Wrap(apexerr.Transport, err, "set read deadline")
	}

	buf := make([]byte, maxSize)
	n, err := p.conn.Read(buf)
	if err != nil {
		if isWouldBlock(err) {
			return nil, apexerr.ErrWouldBlock
		}
		return nil, apexerr.Wrap(apexerr.Transport, err, "recv")
	}
	return buf[:n], nil
}

func (p *destinationPort) Close() error {
	return p.conn.Close()
}

func isWouldBlock(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
