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

// Package obslog hands every subsystem of the harness a pre-fielded
// logrus.Entry instead of the package-global logger, so log lines are
// always attributable to a component (and, where relevant, a pid/sid)
// without every call site re-stating it.
package obslog

import (
	"os"
	"sync"

	"github.com/hashicorp/go-uuid"
	"github.com/sirupsen/logrus"
)

var (
	once   sync.Once
	root   *logrus.Logger
	bootID string
)

func base() *logrus.Logger {
	once.Do(func() {
		root = logrus.New()
		root.SetOutput(os.Stderr)
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		root.SetLevel(logrus.InfoLevel)

		id, err := uuid.GenerateUUID()
		if err != nil {
			id = "unknown"
		}
		bootID = id
	})
	return root
}

// SetLevel adjusts the verbosity of the root logger; the CLI calls it
// with DebugLevel when its --verbose (-v) flag is given.
func SetLevel(lvl logrus.Level) {
	base().SetLevel(lvl)
}

// Component returns a logrus.Entry scoped to a named subsystem
// ("partition", "abi", "sampling", "process", ...), carrying the boot id
// so log lines from a single harness run can be correlated.
func Component(name string) *logrus.Entry {
	return base().WithFields(logrus.Fields{
		"component": name,
		"boot_id":   bootID,
	})
}

// Process returns a logrus.Entry scoped to a named subsystem and tagged
// with the originating guest process name, as required for
// REPORT_APPLICATION_MESSAGE/RAISE_APPLICATION_ERROR attribution.
func Process(component, processName string) *logrus.Entry {
	return Component(component).WithField("process", processName)
}
