// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"bytes"
	_ "embed"
	"log/slog"

	"github.com/postman-open-technologies/httpbin/config"
	"github.com/postman-open-technologies/httpbin/internal/otelconfig"
)

//go:embed default_config.yaml
var defaultConfig []byte

// DefaultConfig is the base [config.Source] every other source is
// layered on top of. It is rendered as a text/template first so
// PORT, LOG_LEVEL and the standard OTEL_* variables are honoured.
func DefaultConfig() config.Source {
	return config.FromYaml(config.RenderTextTemplate(bytes.NewReader(defaultConfig)))
}

// Config is the complete configuration of the httpbin server.
type Config struct {
	HTTP struct {
		Host string `config:"host"`
		Port uint16 `config:"port"`
	} `config:"http"`

	Logging struct {
		Level slog.Level `config:"level"`
	} `config:"logging"`

	OTel otelconfig.Config `config:"otel"`

	Static struct {
		// Dir overlays the embedded assets with files from disk.
		Dir string `config:"dir"`

		// Prefix is substituted for {{prefix}} in the HTML templates.
		Prefix string `config:"prefix"`
	} `config:"static"`

	Server struct {
		Product string `config:"product"`
		Version string `config:"version"`
	} `config:"server"`
}
