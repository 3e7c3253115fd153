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

// Command harness runs a single guest WebAssembly module inside the
// ARINC 653-style partition harness.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arinc653/p1harness/config"
	"github.com/arinc653/p1harness/internal/obslog"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		importNamespace string
		memoryModule    string
		memoryField     string
		allocExport     string
		mainExport      string
		argc            int32
		argv            int32
		channels        []string
		verbose         int
	)

	cmd := &cobra.Command{
		Use:   "harness <guest-module.wasm>",
		Short: "Run a guest bytecode module inside the ARINC 653-style partition harness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose > 0 {
				obslog.SetLevel(logrus.DebugLevel)
			}

			cfg := config.Default()
			cfg.ImportNamespace = importNamespace
			cfg.MemoryModule = memoryModule
			cfg.MemoryField = memoryField
			cfg.AllocExport = allocExport
			cfg.MainExport = mainExport
			cfg.Argc = argc
			cfg.Argv = argv

			for _, raw := range channels {
				ch, err := config.ParseChannelURI(raw)
				if err != nil {
					return err
				}
				cfg.Channels = append(cfg.Channels, ch)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runHarness(cmd.Context(), cfg, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&importNamespace, "import-namespace", config.Default().ImportNamespace, "guest import namespace for ARINC host functions")
	flags.StringVar(&memoryModule, "memory-module", config.Default().MemoryModule, "import module name of the guest's shared memory")
	flags.StringVar(&memoryField, "memory-field", config.Default().MemoryField, "import field name of the guest's shared memory")
	flags.StringVar(&allocExport, "alloc-export", config.Default().AllocExport, "guest export called once per instance before main")
	flags.StringVar(&mainExport, "main-export", config.Default().MainExport, "guest export run as the partition's main thread")
	flags.Int32Var(&argc, "argc", 0, "argc value passed to the guest's main export")
	flags.Int32Var(&argv, "argv", 0, "argv pointer value passed to the guest's main export")
	flags.StringArrayVar(&channels, "channel", nil, `declare a sampling channel, "udp"|"tcp"://name@host:port (repeatable)`)
	flags.CountVarP(&verbose, "verbose", "v", "enable debug logging")

	return cmd
}
