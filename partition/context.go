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

// Package partition implements the partition lifecycle controller: the
// shared partition context, the operating-mode state machine, and
// SET_PARTITION_MODE(Normal)'s spawn-then-park sequence.
package partition

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arinc653/p1harness/config"
	"github.com/arinc653/p1harness/internal/obslog"
	"github.com/arinc653/p1harness/process"
	"github.com/arinc653/p1harness/sampling"
)

// processPidKey is the context key a worker thread's entry-point call is
// tagged with, letting every nested host import recover "which process is
// this" without an OS thread-id lookup — the context is already threaded
// through every call wazero makes on the guest's behalf.
type processPidKey struct{}

// WithProcessPID returns a context tagged with pid, for use by whatever
// invokes a spawned process's entry point.
func WithProcessPID(ctx context.Context, pid int) context.Context {
	return context.WithValue(ctx, processPidKey{}, pid)
}

func pidFromContext(ctx context.Context) (int, bool) {
	pid, ok := ctx.Value(processPidKey{}).(int)
	return pid, ok
}

// Context is the process-wide partition state, built once after
// configuration load and shared by the main thread and every worker
// thread until all of them have joined.
type Context struct {
	Config    config.Config
	Processes *process.Table
	Sampling  *sampling.Table

	mode *modeCell

	shutdownMu   sync.Mutex
	shutdownCond *sync.Cond
	shutdownSet  bool

	boot time.Time
	log  *logrus.Entry
}

// NewContext builds a fresh partition context in ColdStart with empty
// process and sampling tables.
func NewContext(cfg config.Config) *Context {
	boot := time.Now()
	c := &Context{
		Config:    cfg,
		Processes: process.NewTable(),
		Sampling:  sampling.NewTable(cfg, boot),
		mode:      newModeCell(ColdStart),
		boot:      boot,
		log:       obslog.Component("partition"),
	}
	c.shutdownCond = sync.NewCond(&c.shutdownMu)
	return c
}

// Mode returns the current operating mode.
func (c *Context) Mode() Mode {
	return c.mode.Load()
}

// ProcessName resolves the current process for attribution: the name of
// the process whose worker thread issued the call, or "main" if ctx
// carries no process tag (i.e. the call came from the main thread).
func (c *Context) ProcessName(ctx context.Context) string {
	pid, ok := pidFromContext(ctx)
	if !ok {
		return "main"
	}
	p, err := c.Processes.ByPID(pid)
	if err != nil {
		return "main"
	}
	return p.Attribute.Name
}

// requestShutdown sets the shutdown flag and wakes every goroutine parked
// in waitForShutdown. Safe to call more than once or concurrently.
func (c *Context) requestShutdown() {
	c.shutdownMu.Lock()
	c.shutdownSet = true
	c.shutdownMu.Unlock()
	c.shutdownCond.Broadcast()
}

// waitForShutdown blocks the calling goroutine until requestShutdown has
// been observed. This is what parks the main thread inside
// SET_PARTITION_MODE(Normal).
func (c *Context) waitForShutdown() {
	c.shutdownMu.Lock()
	defer c.shutdownMu.Unlock()
	for !c.shutdownSet {
		c.shutdownCond.Wait()
	}
}
