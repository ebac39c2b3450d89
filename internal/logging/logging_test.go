// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("will mask all sensitive keys", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, slog.LevelInfo)

		attrs := make([]any, 0, len(SensitiveKeys))
		for _, key := range SensitiveKeys {
			attrs = append(attrs, slog.String(key, "secret"))
		}
		log.Info("request", attrs...)

		var record map[string]any
		err := json.Unmarshal(buf.Bytes(), &record)
		if !assert.Nil(t, err) {
			return
		}
		for _, key := range SensitiveKeys {
			assert.Equal(t, "****", record[key], key)
		}
	})

	t.Run("will drop records below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, slog.LevelWarn)

		log.Info("ignored")

		assert.Empty(t, buf.String())
	})
}
