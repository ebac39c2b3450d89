// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides layered configuration management.
//
// A configuration is built by applying one or more [Source]s, in order, to a
// single key value store. Later sources override the values set by earlier
// ones, which allows an embedded base config to be refined by a config file,
// environment variables and, lastly, command line overrides:
//
//	m, err := config.Read(
//	    config.FromYaml(config.RenderTextTemplate(bytes.NewReader(base), config.TemplateFunc("env", os.Getenv))),
//	    config.FromEnv("HTTPBIN"),
//	    config.Map{"http": map[string]any{"port": 9090}},
//	)
//
// The merged values are decoded into a struct with [Manager.Unmarshal], using
// the "config" struct tag for field names.
package config
