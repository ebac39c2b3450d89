// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command httpbin serves the httpbin HTTP request and response service.
package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/postman-open-technologies/httpbin"
	"github.com/postman-open-technologies/httpbin/app"
	"github.com/postman-open-technologies/httpbin/config"

	"github.com/spf13/cobra"
)

// DefaultPort is used when the port argument can not be parsed.
const DefaultPort = 8080

func main() {
	err := newCmd().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "httpbin [port]",
		Short:        "HTTP request and response service",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder := withSignals(app.NewBuilder(app.Output(cmd.OutOrStdout())))

			return httpbin.Run[app.Config](
				cmd.Context(),
				builder,
				app.DefaultConfig(),
				fileSource(configPath),
				config.FromEnv("HTTPBIN"),
				portSource(args),
			)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML or JSON config file layered over the defaults")
	return cmd
}

func withSignals(b httpbin.AppBuilder[app.Config]) httpbin.AppBuilder[app.Config] {
	return httpbin.AppBuilderFunc[app.Config](func(ctx context.Context, cfg app.Config) (httpbin.App, error) {
		a, err := b.Build(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return httpbin.WithSignalNotifications(a, os.Interrupt, syscall.SIGTERM), nil
	})
}

func fileSource(path string) config.Source {
	if path == "" {
		return nil
	}
	return config.FromFile(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// portSource overrides http.port from the CLI argument. An unparseable port
// silently becomes DefaultPort.
func portSource(args []string) config.Source {
	if len(args) == 0 {
		return nil
	}

	port, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		port = DefaultPort
	}
	return config.Map{
		"http": map[string]any{
			"port": uint16(port),
		},
	}
}
