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

// Package abi registers the host-import surface a guest module calls
// into: one wazero host function per ARINC operation, under the
// configurable import namespace (default "arinc653:p1@0.1.0"). Every
// trampoline marshals its arguments through memview and calls a method
// on the narrow controller interface below; this package never imports
// wazero's guest-bootstrap concerns and the controller it drives never
// imports wazero at all.
package abi

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arinc653/p1harness/config"
	"github.com/arinc653/p1harness/internal/apexerr"
	"github.com/arinc653/p1harness/internal/obslog"
	"github.com/arinc653/p1harness/partition"
	"github.com/arinc653/p1harness/process"
	"github.com/arinc653/p1harness/sampling"
)

// controller is the subset of *partition.Controller the ABI surface
// needs. Declaring it locally (rather than depending on the concrete
// type) lets this package's trampolines be exercised against a fake in
// tests without building a real PartitionContext.
type controller interface {
	CreateProcess(attr process.Attribute) (int, error)
	Start(pid int) error
	SetPartitionMode(ctx context.Context, mode partition.Mode) error
	CreateSamplingPort(name string, maxSize int, direction config.Direction, refresh time.Duration) (int, error)
	WriteSamplingMessage(sid int, data []byte) error
	ReadSamplingMessage(sid int) (sampling.Message, sampling.Validity, error)
	ReportApplicationMessage(ctx context.Context, msg string)
	RaiseApplicationError(ctx context.Context, code int32, msg string)
	PeriodicWait() error
	ProcessName(ctx context.Context) string
}

// memory is the subset of memview.View the trampolines call through;
// declared so a test can supply any type satisfying it.
type memory interface {
	ReadBytes(ptr, length uint32) ([]byte, error)
	ReadCString(ptr, maxLen uint32) (string, error)
	ReadRecord(ptr uint32, out any) error
	WriteBytes(ptr uint32, data []byte) error
	WriteI32(ptr uint32, val int32) error
	WriteI64(ptr uint32, val int64) error
	WriteU8(ptr uint32, val uint8) error
}

// Shim holds the controller every trampoline calls through, plus a
// logger. The status byte written back to the guest is always 0, but a
// non-nil error's Kind is logged at Warn so the distinction isn't lost.
type Shim struct {
	ctrl controller
	log  *logrus.Entry
}

// NewShim builds a Shim bound to ctrl. ctrl is ordinarily a
// *partition.Controller; any type implementing the controller interface
// above works, which is what makes this package's own tests possible
// without a wazero runtime.
func NewShim(ctrl controller) *Shim {
	return &Shim{ctrl: ctrl, log: obslog.Component("abi")}
}

// logCall records which process issued a host call, at debug level,
// before the call is dispatched. Every operation gets it, not just the
// two that log process-attributed messages at info/error level.
func (s *Shim) logCall(ctx context.Context, op string) {
	s.log.WithFields(logrus.Fields{"op": op, "process": s.ctrl.ProcessName(ctx)}).Debug("host call")
}

// writeStatus writes a zero status byte at statusPtr on every path.
// When err is non-nil its Kind is logged at Warn, so a future ARINC
// return-code translation table has something to build on without
// changing any trampoline signature.
func (s *Shim) writeStatus(m memory, statusPtr uint32, err error) {
	if err != nil {
		s.log.WithField("kind", apexerr.KindOf(err)).WithError(err).Warn("host call failed")
	}
	if werr := m.WriteU8(statusPtr, 0); werr != nil {
		s.log.WithError(werr).Error("failed writing status byte")
	}
}
