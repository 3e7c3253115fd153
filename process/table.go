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

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/arinc653/p1harness/internal/apexerr"
	"github.com/arinc653/p1harness/internal/obslog"
)

// Launcher instantiates a fresh guest module instance sharing the
// partition's linear memory, resolves attr.EntryPoint in the guest's
// indirect function table, and starts a worker thread running that entry
// point to completion. The launcher in package guest runs it on a
// goroutine locked to its OS thread; attr.StackSize does not size that
// thread. The returned Handle must carry a distinct ThreadID per call.
type Launcher func(ctx context.Context, pid int, attr Attribute) (Handle, error)

// Table is the registry of guest processes in insertion order, guarded
// by a single reader/writer lock.
type Table struct {
	mu   sync.RWMutex
	proc []*Process
	log  *logrus.Entry
}

// NewTable builds an empty process table.
func NewTable() *Table {
	return &Table{log: obslog.Component("process")}
}

// Insert adds a process with the given attribute, enabled=false and no
// handle, rejecting a case-insensitive duplicate name.
func (t *Table) Insert(attr Attribute) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.proc {
		if strings.EqualFold(p.Attribute.Name, attr.Name) {
			return -1, apexerr.New(apexerr.State, "duplicate process name %q", attr.Name)
		}
	}

	t.proc = append(t.proc, &Process{Attribute: attr})
	pid := len(t.proc) - 1
	t.log.WithFields(logrus.Fields{"pid": pid, "name": attr.Name}).Info("process created")
	return pid, nil
}

// ByPID returns the process at pid, failing with StateError if out of
// range.
func (t *Table) ByPID(pid int) (*Process, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byPIDLocked(pid)
}

func (t *Table) byPIDLocked(pid int) (*Process, error) {
	if pid < 0 || pid >= len(t.proc) {
		return nil, apexerr.New(apexerr.State, "unknown pid %d", pid)
	}
	return t.proc[pid], nil
}

// ByThreadID scans for the process whose worker-thread id equals tid. A
// linear scan is fine here: n is the partition's process count, always
// small.
func (t *Table) ByThreadID(tid uint64) (*Process, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, p := range t.proc {
		if h := p.Handle(); h != nil && h.ThreadID == tid {
			return p, true
		}
	}
	return nil, false
}

// Enable marks a process as eligible for spawning on the next
// SET_PARTITION_MODE(Normal) transition. It does not itself launch a
// worker thread.
func (t *Table) Enable(pid int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.byPIDLocked(pid)
	if err != nil {
		return err
	}
	p.Enabled = true
	t.log.WithField("pid", pid).Info("process started (enabled)")
	return nil
}

// SpawnAll launches every currently-enabled, not-yet-spawned process in
// insertion order via launch, each into its own worker thread sharing the
// partition's linear memory. Spawning an already-spawned process is an
// error and stops the fan-out.
func (t *Table) SpawnAll(ctx context.Context, launch Launcher) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for pid, p := range t.proc {
		if !p.Enabled {
			continue
		}
		if p.Spawned() {
			return apexerr.New(apexerr.State, "process %q already spawned", p.Attribute.Name)
		}

		h, err := launch(ctx, pid, p.Attribute)
		if err != nil {
			return apexerr.Wrap(apexerr.State, err, "spawning process %q", p.Attribute.Name)
		}
		p.handle = &h
		t.log.WithFields(logrus.Fields{"pid": pid, "name": p.Attribute.Name, "tid": h.ThreadID}).Info("process spawned")
	}
	return nil
}

// Drain takes ownership of every process's handle and waits for all
// spawned worker threads to finish, fanning the joins in with an
// errgroup.Group. A worker that ends with an error (such as a guest
// trap) has that error observed here at join time and logged, never
// propagated to the others.
func (t *Table) Drain(ctx context.Context) []*Process {
	t.mu.Lock()
	procs := t.proc
	t.proc = nil
	t.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, p := range procs {
		p := p
		h := p.Handle()
		if h == nil {
			continue
		}
		g.Go(func() error {
			if err := <-h.Done; err != nil {
				t.log.WithField("tid", h.ThreadID).WithError(err).Error("worker thread ended with error")
			}
			return nil
		})
	}
	_ = g.Wait()

	return procs
}
