// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"strings"

	"github.com/postman-open-technologies/httpbin/config/key"
)

// Env represents a Source where its underlying values
// are extracted from environment variables.
//
// Only variables starting with the configured prefix are applied.
// The remainder of the variable name is lower cased and split on "_"
// to form a key chain, e.g. HTTPBIN_HTTP_PORT sets http.port.
type Env struct {
	prefix  string
	environ func() []string
}

// FromEnv returns a Source which will apply its config
// from the environment variables available to the
// current process.
func FromEnv(prefix string) Env {
	return Env{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// Apply implements the Source interface.
func (src Env) Apply(store Store) error {
	prefix := strings.ToUpper(src.prefix)
	if prefix != "" && !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}

	for _, pair := range src.environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(k, prefix)
		if !ok || name == "" {
			continue
		}

		chain := key.Path(strings.ReplaceAll(strings.ToLower(name), "_", "."))
		if len(chain) == 0 {
			continue
		}
		err := store.Set(chain, v)
		if err != nil {
			return err
		}
	}
	return nil
}
