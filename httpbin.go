// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpbin

import (
	"context"
	"fmt"

	"github.com/postman-open-technologies/httpbin/config"
	"github.com/postman-open-technologies/httpbin/internal/try"
)

// App represents the entry point for user specific code.
type App interface {
	Run(context.Context) error
}

// AppFunc is a functional implementation of the [App] interface.
type AppFunc func(context.Context) error

// Run implements the [App] interface.
func (f AppFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// AppBuilder represents anything which can initialize an [App].
type AppBuilder[T any] interface {
	Build(ctx context.Context, cfg T) (App, error)
}

// AppBuilderFunc is a functional implementation of
// the [AppBuilder] interface.
type AppBuilderFunc[T any] func(context.Context, T) (App, error)

// Build implements the [AppBuilder] interface.
func (f AppBuilderFunc[T]) Build(ctx context.Context, cfg T) (App, error) {
	return f(ctx, cfg)
}

// Run reads the provided config sources, unmarshals them into
// the generic config type, uses the config and builder to build
// the [App] and, lastly, runs the returned [App].
//
// Panics in either the builder or the app are returned as errors.
func Run[T any](ctx context.Context, builder AppBuilder[T], srcs ...config.Source) error {
	m, err := config.Read(srcs...)
	if err != nil {
		return ConfigReadError{Cause: err}
	}

	var cfg T
	err = m.Unmarshal(&cfg)
	if err != nil {
		return ConfigUnmarshalError{Cause: err}
	}

	app, err := build(ctx, builder, cfg)
	if err != nil {
		return AppBuildError{Cause: err}
	}

	err = run(ctx, app)
	if err != nil {
		return AppRunError{Cause: err}
	}
	return nil
}

func build[T any](ctx context.Context, builder AppBuilder[T], cfg T) (_ App, err error) {
	defer try.Recover(&err)

	return builder.Build(ctx, cfg)
}

func run(ctx context.Context, app App) (err error) {
	defer try.Recover(&err)

	return app.Run(ctx)
}

// ConfigReadError is returned by [Run] when a config source fails to apply.
type ConfigReadError struct {
	Cause error
}

// Error implements the [error] interface.
func (e ConfigReadError) Error() string {
	return fmt.Sprintf("failed to read config source(s): %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigReadError) Unwrap() error {
	return e.Cause
}

// ConfigUnmarshalError is returned by [Run] when the config can not be
// decoded into the builder's config type.
type ConfigUnmarshalError struct {
	Cause error
}

// Error implements the [error] interface.
func (e ConfigUnmarshalError) Error() string {
	return fmt.Sprintf("failed to unmarshal read config source(s) into custom type: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigUnmarshalError) Unwrap() error {
	return e.Cause
}

// AppBuildError
type AppBuildError struct {
	Cause error
}

// Error implements the [error] interface.
func (e AppBuildError) Error() string {
	return fmt.Sprintf("failed to build app: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e AppBuildError) Unwrap() error {
	return e.Cause
}

// AppRunError
type AppRunError struct {
	Cause error
}

// Error implements the [error] interface.
func (e AppRunError) Error() string {
	return fmt.Sprintf("failed to run app: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e AppRunError) Unwrap() error {
	return e.Cause
}
