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

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arinc653/p1harness/config"
	"github.com/arinc653/p1harness/internal/apexerr"
	"github.com/arinc653/p1harness/internal/obslog"
)

// Table is the registry of declared sampling channels that have been
// turned into live ports via Create. One lock is held across every
// operation: both Write and Read mutate the last-message cache or the
// underlying socket buffer, so there is no read-only path to optimise.
type Table struct {
	mu   sync.Mutex
	cfg  config.Config
	now  func() time.Time
	log  *logrus.Entry
	boot time.Time

	ports []*Port
}

// NewTable builds an empty table against the declared channel list in cfg.
// boot is the harness's own creation time, used to stamp every new port's
// initial cache.
func NewTable(cfg config.Config, boot time.Time) *Table {
	return &Table{
		cfg:  cfg,
		now:  time.Now,
		log:  obslog.Component("sampling"),
		boot: boot,
	}
}

// Create registers a new port for a channel name already present in the
// harness configuration.
func (t *Table) Create(name string, maxSize int, direction config.Direction, refresh time.Duration) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.cfg.ChannelByName(name)
	if !ok {
		return -1, apexerr.New(apexerr.Config, "unknown port %q", name)
	}

	for _, p := range t.ports {
		if strings.EqualFold(p.Name, name) {
			return -1, apexerr.New(apexerr.State, "duplicate port %q", name)
		}
	}

	p, err := newPort(ch, direction, maxSize, refresh, t.boot)
	if err != nil {
		return -1, err
	}

	t.ports = append(t.ports, p)
	sid := len(t.ports) - 1
	t.log.WithFields(logrus.Fields{"sid": sid, "name": name, "direction": direction.String()}).Info("sampling port created")
	return sid, nil
}

func (t *Table) portLocked(sid int) (*Port, error) {
	if sid < 0 || sid >= len(t.ports) {
		return nil, apexerr.New(apexerr.State, "unknown sid %d", sid)
	}
	return t.ports[sid], nil
}

// Write forwards bytes to the port's transport. Transport errors are
// logged and swallowed; sampling is inherently lossy.
func (t *Table) Write(sid int, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.portLocked(sid)
	if err != nil {
		return err
	}
	if p.Direction != config.DirectionSource {
		return apexerr.New(apexerr.State, "wrong direction for sid %d: write requires Source", sid)
	}

	if err := p.transport.Send(data); err != nil {
		t.log.WithFields(logrus.Fields{"sid": sid, "name": p.Name}).WithError(err).Warn("sampling write dropped")
		return nil
	}
	return nil
}

// Read fetches the latest datagram if one is pending, otherwise returns
// the cached message; validity is always computed fresh against now.
func (t *Table) Read(sid int) (Message, Validity, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.portLocked(sid)
	if err != nil {
		return Message{}, Invalid, err
	}
	if p.Direction != config.DirectionDestination {
		return Message{}, Invalid, apexerr.New(apexerr.State, "wrong direction for sid %d: read requires Destination", sid)
	}

	now := t.now()

	data, err := p.transport.Recv(p.MaxSize)
	switch {
	case err == nil:
		p.cache = Message{Bytes: data, Timestamp: now}
	case errors.Is(err, apexerr.ErrWouldBlock):
		// fall through, return cached message
	default:
		t.log.WithFields(logrus.Fields{"sid": sid, "name": p.Name}).WithError(err).Warn("sampling read transport error")
	}

	return p.cache, p.cache.ValidityAt(now, p.Refresh), nil
}

// Close tears down every registered port's transport; used at shutdown.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.ports {
		_ = p.close()
	}
}
