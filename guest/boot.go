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

// Package guest owns the one seam the rest of this repo deliberately
// avoids: constructing the wazero runtime, compiling and instantiating
// the guest module, and wiring the ABI host imports (package abi) to a
// freshly built partition.Controller. Nothing else in this repo imports
// wazero directly.
package guest

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/arinc653/p1harness/abi"
	"github.com/arinc653/p1harness/config"
	"github.com/arinc653/p1harness/internal/apexerr"
	"github.com/arinc653/p1harness/internal/obslog"
	"github.com/arinc653/p1harness/partition"
	"github.com/arinc653/p1harness/process"
)

// callIndirectExport is the guest-exported trampoline this harness calls
// to run one indirect-table entry to completion. wazero's host side has
// no way to invoke a wasm table slot directly (call_indirect is
// guest-internal), so the guest module must export this function in
// addition to its allocator and main.
const callIndirectExport = "__apex_call_indirect"

// Harness is a fully wired, bootable partition: one compiled guest
// module instantiated for the main thread, the ARINC host imports
// registered against it, and a Controller ready to run the guest's main.
type Harness struct {
	runtime wazero.Runtime
	mod     api.Module
	ctrl    *partition.Controller
	cfg     config.Config
	log     *logrus.Entry
}

// Boot compiles wasmBytes, refuses to start if its imported shared
// memory (module/field per cfg, default env/memory) has no declared
// maximum page count, provisions that memory, registers the ARINC host
// imports, instantiates the guest for the main thread, and calls its
// allocator export. The returned Harness is ready for Run.
func Boot(ctx context.Context, cfg config.Config, wasmBytes []byte) (*Harness, error) {
	log := obslog.Component("guest")

	r := wazero.NewRuntime(ctx)

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		r.Close(ctx)
		return nil, apexerr.Wrap(apexerr.Guest, err, "compiling guest module")
	}

	minPages, maxPages, ok := importedMemoryLimits(compiled, cfg.MemoryModule, cfg.MemoryField)
	if !ok {
		r.Close(ctx)
		return nil, apexerr.New(apexerr.Config, "guest does not declare a shared memory %s.%s with a maximum size", cfg.MemoryModule, cfg.MemoryField)
	}

	memBuilder := r.NewHostModuleBuilder(cfg.MemoryModule)
	memBuilder.ExportMemoryWithMax(cfg.MemoryField, minPages, maxPages)
	if _, err := memBuilder.Instantiate(ctx); err != nil {
		r.Close(ctx)
		return nil, apexerr.Wrap(apexerr.Config, err, "instantiating shared memory module %s", cfg.MemoryModule)
	}

	pctx := partition.NewContext(cfg)
	launcher := &instanceLauncher{runtime: r, compiled: compiled, cfg: cfg}
	ctrl := partition.NewController(pctx, launcher.launch)

	if _, err := abi.Register(ctx, r, cfg.ImportNamespace, ctrl); err != nil {
		r.Close(ctx)
		return nil, apexerr.Wrap(apexerr.Abi, err, "registering host imports under %s", cfg.ImportNamespace)
	}

	mod, err := newInstance(ctx, r, compiled, cfg, "")
	if err != nil {
		r.Close(ctx)
		return nil, err
	}

	return &Harness{runtime: r, mod: mod, ctrl: ctrl, cfg: cfg, log: log}, nil
}

// Run invokes the guest's main export and blocks until it returns,
// either because SET_PARTITION_MODE(Normal) parked and was later woken
// by shutdown, or because main never reached Normal at all. A
// SIGINT/SIGTERM observed while main is parked calls
// Controller.RequestShutdown so the guest can unwind on its own terms.
// Once main returns, Run always performs the full drain-and-join
// sequence.
func (h *Harness) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			h.log.Info("shutdown signal received")
			h.ctrl.RequestShutdown()
		case <-done:
		}
	}()

	mainFn := h.mod.ExportedFunction(h.cfg.MainExport)
	if mainFn == nil {
		close(done)
		return apexerr.New(apexerr.Config, "guest does not export %s", h.cfg.MainExport)
	}

	_, err := mainFn.Call(ctx, uint64(uint32(h.cfg.Argc)), uint64(uint32(h.cfg.Argv)))
	close(done)

	h.ctrl.Shutdown(ctx)

	if err != nil {
		return apexerr.Wrap(apexerr.Guest, err, "guest main trapped")
	}
	return nil
}

// Close releases the wazero runtime and every module instantiated
// against it.
func (h *Harness) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

// newInstance instantiates compiled under the given module name (empty
// keeps the compiled module's own name, used for the main instance) and
// runs its allocator export once, which must return 1. Every instance
// imports the same host-provisioned memory, so they all share one
// linear address space.
func newInstance(ctx context.Context, r wazero.Runtime, compiled wazero.CompiledModule, cfg config.Config, name string) (api.Module, error) {
	modCfg := wazero.NewModuleConfig().WithStdout(os.Stdout).WithStderr(os.Stderr)
	if name != "" {
		modCfg = modCfg.WithName(name)
	}

	mod, err := r.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, apexerr.Wrap(apexerr.Guest, err, "instantiating guest module")
	}

	alloc := mod.ExportedFunction(cfg.AllocExport)
	if alloc == nil {
		_ = mod.Close(ctx)
		return nil, apexerr.New(apexerr.Config, "guest does not export %s", cfg.AllocExport)
	}
	res, err := alloc.Call(ctx)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, apexerr.Wrap(apexerr.Guest, err, "%s trapped", cfg.AllocExport)
	}
	if len(res) != 1 || res[0] != 1 {
		_ = mod.Close(ctx)
		return nil, apexerr.New(apexerr.Guest, "%s did not return success", cfg.AllocExport)
	}

	return mod, nil
}

// instanceLauncher spawns one worker thread per enabled process, each
// running in a fresh instance of the compiled guest module. Instances
// share the partition's linear memory through the host-provisioned
// memory import, so a new instance costs only fresh globals and tables.
type instanceLauncher struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	cfg      config.Config
}

func (l *instanceLauncher) launch(ctx context.Context, pid int, attr process.Attribute) (process.Handle, error) {
	inst, err := newInstance(ctx, l.runtime, l.compiled, l.cfg, fmt.Sprintf("proc-%d", pid))
	if err != nil {
		return process.Handle{}, err
	}

	fn := inst.ExportedFunction(callIndirectExport)
	if fn == nil {
		_ = inst.Close(ctx)
		return process.Handle{}, apexerr.New(apexerr.Config, "guest does not export %s", callIndirectExport)
	}

	tidCh := make(chan uint64, 1)
	done := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		tidCh <- process.CurrentThreadID()

		tagged := partition.WithProcessPID(ctx, pid)
		_, err := fn.Call(tagged, uint64(uint32(attr.EntryPoint)))
		if err != nil {
			done <- apexerr.Wrap(apexerr.Guest, err, "process %q trapped", attr.Name)
			return
		}
		done <- nil
	}()

	tid := <-tidCh
	return process.Handle{ThreadID: tid, Done: done}, nil
}

// importedMemoryLimits scans compiled's imports for a memory matching
// module/field and reports its declared min/max page counts. ok is
// false if no such import exists or it has no declared maximum.
func importedMemoryLimits(compiled wazero.CompiledModule, module, field string) (min, max uint32, ok bool) {
	for _, def := range compiled.ImportedMemories() {
		impModule, impName, isImport := def.Import()
		if !isImport || impModule != module || impName != field {
			continue
		}
		m, hasMax := def.Max()
		if !hasMax {
			return 0, 0, false
		}
		return def.Min(), m, true
	}
	return 0, 0, false
}
