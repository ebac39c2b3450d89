// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpbin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/postman-open-technologies/httpbin/config"
	"github.com/postman-open-technologies/httpbin/internal/try"

	"github.com/stretchr/testify/assert"
)

type portConfig struct {
	HTTP struct {
		Port uint `config:"port"`
	} `config:"http"`
}

func TestRun(t *testing.T) {
	t.Run("will return a ConfigReadError", func(t *testing.T) {
		t.Run("if a config source fails to apply", func(t *testing.T) {
			readErr := errors.New("failed to read")
			src := config.SourceFunc(func(config.Store) error {
				return readErr
			})

			err := Run(context.Background(), AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				return nil, nil
			}), src)

			var cerr ConfigReadError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}
			if !assert.ErrorIs(t, err, readErr) {
				return
			}
		})
	})

	t.Run("will return a ConfigUnmarshalError", func(t *testing.T) {
		t.Run("if the config can not be decoded", func(t *testing.T) {
			src := config.FromYaml(strings.NewReader("http:\n  port: not-a-port\n"))

			err := Run(context.Background(), AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				return nil, nil
			}), src)

			var cerr ConfigUnmarshalError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}
		})
	})

	t.Run("will return an AppBuildError", func(t *testing.T) {
		t.Run("if the builder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			err := Run(context.Background(), AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				return nil, buildErr
			}))

			var berr AppBuildError
			if !assert.ErrorAs(t, err, &berr) {
				return
			}
			if !assert.ErrorIs(t, err, buildErr) {
				return
			}
		})

		t.Run("if the builder panics", func(t *testing.T) {
			err := Run(context.Background(), AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				panic("bad build")
			}))

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, "bad build", perr.Value) {
				return
			}
		})
	})

	t.Run("will return an AppRunError", func(t *testing.T) {
		t.Run("if the app fails", func(t *testing.T) {
			runErr := errors.New("failed to run")
			err := Run(context.Background(), AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				return AppFunc(func(context.Context) error {
					return runErr
				}), nil
			}))

			var rerr AppRunError
			if !assert.ErrorAs(t, err, &rerr) {
				return
			}
			if !assert.ErrorIs(t, err, runErr) {
				return
			}
		})

		t.Run("if the app panics", func(t *testing.T) {
			err := Run(context.Background(), AppBuilderFunc[portConfig](func(context.Context, portConfig) (App, error) {
				return AppFunc(func(context.Context) error {
					panic(errors.New("bad run"))
				}), nil
			}))

			var rerr AppRunError
			if !assert.ErrorAs(t, err, &rerr) {
				return
			}

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
		})
	})

	t.Run("will pass the decoded config to the builder", func(t *testing.T) {
		var port uint
		err := Run(
			context.Background(),
			AppBuilderFunc[portConfig](func(_ context.Context, cfg portConfig) (App, error) {
				port = cfg.HTTP.Port
				return AppFunc(func(context.Context) error { return nil }), nil
			}),
			config.FromYaml(strings.NewReader("http:\n  port: 8080\n")),
			config.Map{"http": map[string]any{"port": 9090}},
		)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, uint(9090), port) {
			return
		}
	})
}

func TestErrors(t *testing.T) {
	cause := errors.New("cause")

	testCases := []struct {
		Name string
		Err  error
		Msg  string
	}{
		{Name: "ConfigReadError", Err: ConfigReadError{Cause: cause}, Msg: "failed to read config source(s): cause"},
		{Name: "ConfigUnmarshalError", Err: ConfigUnmarshalError{Cause: cause}, Msg: "failed to unmarshal read config source(s) into custom type: cause"},
		{Name: "AppBuildError", Err: AppBuildError{Cause: cause}, Msg: "failed to build app: cause"},
		{Name: "AppRunError", Err: AppRunError{Cause: cause}, Msg: "failed to run app: cause"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			if !assert.Equal(t, testCase.Msg, testCase.Err.Error()) {
				return
			}
			if !assert.ErrorIs(t, testCase.Err, cause) {
				return
			}
		})
	}
}
