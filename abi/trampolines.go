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

package abi

import (
	"context"
	"time"

	"github.com/arinc653/p1harness/config"
	"github.com/arinc653/p1harness/internal/apexerr"
	"github.com/arinc653/p1harness/partition"
	"github.com/arinc653/p1harness/process"
)

// directionFromWire maps the PORT_DIRECTION_TYPE value a guest passes to
// CREATE_SAMPLING_PORT onto config.Direction.
func directionFromWire(v uint32) (config.Direction, error) {
	switch v {
	case 0:
		return config.DirectionSource, nil
	case 1:
		return config.DirectionDestination, nil
	default:
		return 0, apexerr.New(apexerr.Abi, "invalid port direction %d", v)
	}
}

// createProcess implements CREATE_PROCESS: decode a process attribute at
// attrPtr, insert it, write the resulting PID at pidOutPtr as an i64.
func (s *Shim) createProcess(ctx context.Context, m memory, attrPtr, pidOutPtr, statusPtr uint32) {
	s.logCall(ctx, "CREATE_PROCESS")
	attr, err := process.DecodeAttribute(m, attrPtr)
	if err != nil {
		s.writeStatus(m, statusPtr, err)
		return
	}

	pid, err := s.ctrl.CreateProcess(attr)
	if err != nil {
		s.writeStatus(m, statusPtr, err)
		return
	}

	if werr := m.WriteI64(pidOutPtr, int64(pid)); werr != nil {
		s.writeStatus(m, statusPtr, werr)
		return
	}
	s.writeStatus(m, statusPtr, nil)
}

// start implements START: mark the process at pid enabled.
func (s *Shim) start(ctx context.Context, m memory, pid int64, statusPtr uint32) {
	s.logCall(ctx, "START")
	err := s.ctrl.Start(int(pid))
	s.writeStatus(m, statusPtr, err)
}

// setPartitionMode implements SET_PARTITION_MODE. When modeCode is
// Normal this call blocks the calling (guest main) thread until
// shutdown, exactly mirroring the semantics of partition.Controller.
func (s *Shim) setPartitionMode(ctx context.Context, m memory, modeCode, statusPtr uint32) {
	s.logCall(ctx, "SET_PARTITION_MODE")
	err := s.ctrl.SetPartitionMode(ctx, partition.Mode(int32(modeCode)))
	s.writeStatus(m, statusPtr, err)
}

// createSamplingPort implements CREATE_SAMPLING_PORT. The name is read
// as a NUL-terminated string of at most NameMaxLen bytes; refreshNs is
// nanoseconds; the new SID is written at sidOutPtr as an i64.
func (s *Shim) createSamplingPort(ctx context.Context, m memory, namePtr, maxMsgSize, direction uint32, refreshNs int64, sidOutPtr, statusPtr uint32) {
	s.logCall(ctx, "CREATE_SAMPLING_PORT")
	name, err := m.ReadCString(namePtr, process.NameMaxLen)
	if err != nil {
		s.writeStatus(m, statusPtr, err)
		return
	}

	dir, err := directionFromWire(direction)
	if err != nil {
		s.writeStatus(m, statusPtr, err)
		return
	}

	sid, err := s.ctrl.CreateSamplingPort(name, int(maxMsgSize), dir, time.Duration(refreshNs))
	if err != nil {
		s.writeStatus(m, statusPtr, err)
		return
	}

	if werr := m.WriteI64(sidOutPtr, int64(sid)); werr != nil {
		s.writeStatus(m, statusPtr, werr)
		return
	}
	s.writeStatus(m, statusPtr, nil)
}

// writeSamplingMessage implements WRITE_SAMPLING_MESSAGE.
func (s *Shim) writeSamplingMessage(ctx context.Context, m memory, sid int64, bufPtr, length, statusPtr uint32) {
	s.logCall(ctx, "WRITE_SAMPLING_MESSAGE")
	data, err := m.ReadBytes(bufPtr, length)
	if err != nil {
		s.writeStatus(m, statusPtr, err)
		return
	}
	err = s.ctrl.WriteSamplingMessage(int(sid), data)
	s.writeStatus(m, statusPtr, err)
}

// readSamplingMessage implements READ_SAMPLING_MESSAGE: the caller's
// buffer at bufPtr is assumed sized to the port's declared max size;
// only len(msg.Bytes) bytes are written, and the validity plus actual
// length are reported as i32s through their out-pointers.
func (s *Shim) readSamplingMessage(ctx context.Context, m memory, sid int64, bufPtr, lenOutPtr, validityOutPtr, statusPtr uint32) {
	s.logCall(ctx, "READ_SAMPLING_MESSAGE")
	msg, validity, err := s.ctrl.ReadSamplingMessage(int(sid))
	if err != nil {
		s.writeStatus(m, statusPtr, err)
		return
	}

	if werr := m.WriteBytes(bufPtr, msg.Bytes); werr != nil {
		s.writeStatus(m, statusPtr, werr)
		return
	}
	if werr := m.WriteI32(validityOutPtr, int32(validity)); werr != nil {
		s.writeStatus(m, statusPtr, werr)
		return
	}
	if werr := m.WriteI32(lenOutPtr, int32(len(msg.Bytes))); werr != nil {
		s.writeStatus(m, statusPtr, werr)
		return
	}
	s.writeStatus(m, statusPtr, nil)
}

// reportApplicationMessage implements REPORT_APPLICATION_MESSAGE: logged
// at info, attributed to the calling process by the controller. The
// message is read as a string, stopping at the first NUL if the guest
// wrote one inside the declared length.
func (s *Shim) reportApplicationMessage(ctx context.Context, m memory, bufPtr, length, statusPtr uint32) {
	s.logCall(ctx, "REPORT_APPLICATION_MESSAGE")
	msg, err := m.ReadCString(bufPtr, length)
	if err != nil {
		s.writeStatus(m, statusPtr, err)
		return
	}
	s.ctrl.ReportApplicationMessage(ctx, msg)
	s.writeStatus(m, statusPtr, nil)
}

// raiseApplicationError implements RAISE_APPLICATION_ERROR: logged at
// error, with the guest-supplied code.
func (s *Shim) raiseApplicationError(ctx context.Context, m memory, code int32, bufPtr, length, statusPtr uint32) {
	s.logCall(ctx, "RAISE_APPLICATION_ERROR")
	msg, err := m.ReadCString(bufPtr, length)
	if err != nil {
		s.writeStatus(m, statusPtr, err)
		return
	}
	s.ctrl.RaiseApplicationError(ctx, code, msg)
	s.writeStatus(m, statusPtr, nil)
}

// periodicWait implements PERIODIC_WAIT, which this harness accepts but
// does not enforce.
func (s *Shim) periodicWait(ctx context.Context, m memory, statusPtr uint32) {
	s.logCall(ctx, "PERIODIC_WAIT")
	s.writeStatus(m, statusPtr, s.ctrl.PeriodicWait())
}
