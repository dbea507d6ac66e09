// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"strings"
)

// Env sources configuration from environment variables. Each variable
// name is treated as a single top level key.
type Env struct {
	environ func() []string
}

// FromEnv returns a [Source] backed by the variables of the current
// process environment. It is typically layered after a file based
// source so deployments can override individual values.
func FromEnv() Env {
	return Env{
		environ: os.Environ,
	}
}

// Apply implements the [Source] interface.
func (src Env) Apply(store Store) error {
	m := make(Map)
	for _, pair := range src.environ() {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		m[name] = value
	}
	return m.Apply(store)
}
