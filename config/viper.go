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

package config

import (
	"github.com/spf13/viper"

	"github.com/arinc653/p1harness/internal/apexerr"
)

// wireNames mirrors the overridable guest import/export names the CLI
// exposes; FromViper reads them from whatever viper.Viper the caller has
// already populated (flags, env, file — all out of this package's concern).
type wireNames struct {
	ImportNamespace string   `mapstructure:"import_namespace"`
	MemoryModule    string   `mapstructure:"memory_module"`
	MemoryField     string   `mapstructure:"memory_field"`
	AllocExport     string   `mapstructure:"alloc_export"`
	MainExport      string   `mapstructure:"main_export"`
	Argc            int32    `mapstructure:"argc"`
	Argv            int32    `mapstructure:"argv"`
	Channels        []string `mapstructure:"channels"`
}

// FromViper builds a Config by unmarshalling v, falling back to Default()
// for any field viper has no value for, and parsing each "channels" entry
// with ParseChannelURI.
func FromViper(v *viper.Viper) (Config, error) {
	d := Default()

	var w wireNames
	if err := v.Unmarshal(&w); err != nil {
		return Config{}, apexerr.Wrap(apexerr.Config, err, "unmarshalling config")
	}

	if w.ImportNamespace != "" {
		d.ImportNamespace = w.ImportNamespace
	}
	if w.MemoryModule != "" {
		d.MemoryModule = w.MemoryModule
	}
	if w.MemoryField != "" {
		d.MemoryField = w.MemoryField
	}
	if w.AllocExport != "" {
		d.AllocExport = w.AllocExport
	}
	if w.MainExport != "" {
		d.MainExport = w.MainExport
	}
	d.Argc = w.Argc
	d.Argv = w.Argv

	for _, raw := range w.Channels {
		ch, err := ParseChannelURI(raw)
		if err != nil {
			return Config{}, err
		}
		d.Channels = append(d.Channels, ch)
	}

	if err := d.Validate(); err != nil {
		return Config{}, err
	}
	return d, nil
}
