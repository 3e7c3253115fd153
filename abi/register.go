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

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/arinc653/p1harness/memview"
	"github.com/arinc653/p1harness/partition"
)

// view adapts a live api.Module's shared memory to a memory for this
// call only — wazero may hand back a different api.Memory per
// instantiation (one per spawned process shares the *bytes* but the
// host still addresses it through whichever module object issued the
// call), so this is rebuilt on every trampoline invocation rather than
// cached on the Shim.
func view(mod api.Module) *memview.View {
	return memview.New(mod.Memory())
}

// Register builds the "arinc653:p1@0.1.0" host module (or whatever
// namespace cfg names) exposing one function per ARINC operation, and
// instantiates it against r. ctrl is ordinarily the
// *partition.Controller backing this runtime; pid is threaded through
// ctx by the caller of a spawned process's entry point
// (partition.WithProcessPID), never by this package.
func Register(ctx context.Context, r wazero.Runtime, namespace string, ctrl *partition.Controller) (api.Module, error) {
	s := NewShim(ctrl)
	b := r.NewHostModuleBuilder(namespace)

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, attrPtr, pidOutPtr, statusPtr uint32) {
			s.createProcess(ctx, view(mod), attrPtr, pidOutPtr, statusPtr)
		}).
		Export("CREATE_PROCESS")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, pid int64, statusPtr uint32) {
			s.start(ctx, view(mod), pid, statusPtr)
		}).
		Export("START")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, modeCode, statusPtr uint32) {
			s.setPartitionMode(ctx, view(mod), modeCode, statusPtr)
		}).
		Export("SET_PARTITION_MODE")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, namePtr, maxMsgSize, direction uint32, refreshNs int64, sidOutPtr, statusPtr uint32) {
			s.createSamplingPort(ctx, view(mod), namePtr, maxMsgSize, direction, refreshNs, sidOutPtr, statusPtr)
		}).
		Export("CREATE_SAMPLING_PORT")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, sid int64, bufPtr, length, statusPtr uint32) {
			s.writeSamplingMessage(ctx, view(mod), sid, bufPtr, length, statusPtr)
		}).
		Export("WRITE_SAMPLING_MESSAGE")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, sid int64, bufPtr, lenOutPtr, validityOutPtr, statusPtr uint32) {
			s.readSamplingMessage(ctx, view(mod), sid, bufPtr, lenOutPtr, validityOutPtr, statusPtr)
		}).
		Export("READ_SAMPLING_MESSAGE")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, bufPtr, length, statusPtr uint32) {
			s.reportApplicationMessage(ctx, view(mod), bufPtr, length, statusPtr)
		}).
		Export("REPORT_APPLICATION_MESSAGE")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, code int32, bufPtr, length, statusPtr uint32) {
			s.raiseApplicationError(ctx, view(mod), code, bufPtr, length, statusPtr)
		}).
		Export("RAISE_APPLICATION_ERROR")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, statusPtr uint32) {
			s.periodicWait(ctx, view(mod), statusPtr)
		}).
		Export("PERIODIC_WAIT")

	return b.Instantiate(ctx)
}
