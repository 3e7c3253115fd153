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

package partition

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arinc653/p1harness/config"
	"github.com/arinc653/p1harness/internal/obslog"
	"github.com/arinc653/p1harness/process"
	"github.com/arinc653/p1harness/sampling"
)

// Controller is the object every host-import trampoline in package abi
// calls through. It holds no wazero dependency of its own: abi depends
// on a narrow interface this type satisfies structurally, never the
// reverse, so the two packages never import each other.
type Controller struct {
	ctx    *Context
	launch process.Launcher
	log    *logrus.Entry
}

// NewController binds a partition context to the Launcher that spawns a
// worker thread for one enabled process. launch is supplied by whatever
// layer owns the wazero runtime (it is the only seam through which this
// package needs to know instances exist).
func NewController(pctx *Context, launch process.Launcher) *Controller {
	return &Controller{ctx: pctx, launch: launch, log: obslog.Component("controller")}
}

// CreateProcess validates and inserts a process attribute (CREATE_PROCESS).
func (c *Controller) CreateProcess(attr process.Attribute) (int, error) {
	if err := attr.Validate(); err != nil {
		return -1, err
	}
	return c.ctx.Processes.Insert(attr)
}

// Start marks a process enabled (START). No thread is launched here.
func (c *Controller) Start(pid int) error {
	return c.ctx.Processes.Enable(pid)
}

// SetPartitionMode implements SET_PARTITION_MODE. Only the transition to
// Normal has any effect: spawn every enabled process, flip the mode, then
// park the calling goroutine (the guest's main thread) until shutdown is
// requested. Any other target mode is recorded and otherwise a no-op.
func (c *Controller) SetPartitionMode(ctx context.Context, mode Mode) error {
	if mode != Normal {
		c.ctx.mode.Store(mode)
		return nil
	}

	if err := c.ctx.Processes.SpawnAll(ctx, c.launch); err != nil {
		return err
	}
	c.ctx.mode.Store(Normal)
	c.ctx.waitForShutdown()
	return nil
}

// CreateSamplingPort registers a sampling channel (CREATE_SAMPLING_PORT).
func (c *Controller) CreateSamplingPort(name string, maxSize int, direction config.Direction, refresh time.Duration) (int, error) {
	return c.ctx.Sampling.Create(name, maxSize, direction, refresh)
}

// WriteSamplingMessage sends a datagram on a Source port
// (WRITE_SAMPLING_MESSAGE).
func (c *Controller) WriteSamplingMessage(sid int, data []byte) error {
	return c.ctx.Sampling.Write(sid, data)
}

// ReadSamplingMessage fetches the latest message on a Destination port
// (READ_SAMPLING_MESSAGE).
func (c *Controller) ReadSamplingMessage(sid int) (sampling.Message, sampling.Validity, error) {
	return c.ctx.Sampling.Read(sid)
}

// ReportApplicationMessage logs msg at info level, attributed to the
// calling process (REPORT_APPLICATION_MESSAGE).
func (c *Controller) ReportApplicationMessage(ctx context.Context, msg string) {
	c.log.WithField("process", c.ctx.ProcessName(ctx)).Info(msg)
}

// RaiseApplicationError logs msg at error level with the guest-supplied
// error code, attributed to the calling process
// (RAISE_APPLICATION_ERROR).
func (c *Controller) RaiseApplicationError(ctx context.Context, code int32, msg string) {
	c.log.WithFields(logrus.Fields{
		"process": c.ctx.ProcessName(ctx),
		"code":    code,
	}).Error(msg)
}

// PeriodicWait is a no-op in this harness (PERIODIC_WAIT): period
// enforcement is left to the host scheduler.
func (c *Controller) PeriodicWait() error {
	return nil
}

// RequestShutdown wakes the thread parked in SetPartitionMode without
// draining or joining anything, for a caller that can't wait for the
// full sequence to finish — typically an os/signal handler wired up by
// whatever owns the guest's main-thread call. The guest's main is
// expected to return shortly after, at which point the caller of
// SetPartitionMode/main should call Shutdown to actually drain and join.
func (c *Controller) RequestShutdown() {
	c.ctx.requestShutdown()
}

// Shutdown runs the harness-side shutdown sequence: wake the thread
// parked in SetPartitionMode, drain and join every worker thread,
// then tear down sampling transports. Safe to call from whatever
// triggers the guest's shutdown — main returning, or an external signal.
func (c *Controller) Shutdown(ctx context.Context) []*process.Process {
	c.ctx.requestShutdown()
	procs := c.ctx.Processes.Drain(ctx)
	c.ctx.Sampling.Close()
	return procs
}

// Mode returns the current operating mode, mostly useful for tests and
// diagnostics; no ABI operation exposes it directly.
func (c *Controller) Mode() Mode {
	return c.ctx.Mode()
}

// ProcessName resolves the calling process's name for ctx. Exposed so
// the ABI shim can log it ahead of every host call, not only
// REPORT_APPLICATION_MESSAGE and RAISE_APPLICATION_ERROR.
func (c *Controller) ProcessName(ctx context.Context) string {
	return c.ctx.ProcessName(ctx)
}
