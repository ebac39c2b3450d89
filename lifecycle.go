// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httpbin

import (
	"context"
	"errors"
	"os"
	"os/signal"
)

// WithSignalNotifications wraps a given [App] in an implementation
// that cancels the [context.Context] that's passed to app.Run if an [os.Signal]
// is received by the running process.
func WithSignalNotifications(app App, signals ...os.Signal) App {
	return AppFunc(func(ctx context.Context) error {
		sigCtx, cancel := signal.NotifyContext(ctx, signals...)
		defer cancel()

		return app.Run(sigCtx)
	})
}

// LifecycleHook represents functionality that needs to be performed
// at a specific "time" relative to the execution of [App.Run].
type LifecycleHook interface {
	Run(context.Context) error
}

// LifecycleHookFunc is a convenient helper type for implementing a [LifecycleHook]
// from just a regular func.
type LifecycleHookFunc func(context.Context) error

// Run implements the [LifecycleHook] interface.
func (f LifecycleHookFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// ComposeLifecycleHooks combines multiple [LifecycleHook]s into a single hook.
// Every hook runs even if an earlier one fails and all errors are joined.
func ComposeLifecycleHooks(hooks ...LifecycleHook) LifecycleHook {
	return LifecycleHookFunc(func(ctx context.Context) error {
		errs := make([]error, 0, len(hooks))
		for _, hook := range hooks {
			err := hook.Run(ctx)
			if err == nil {
				continue
			}
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})
}

// Lifecycle
type Lifecycle struct {
	// PostRun is always executed regardless if the underlying [App]
	// returns an error or panics.
	PostRun LifecycleHook
}

// WithLifecycleHooks wraps a given [App] in an implementation
// that runs [LifecycleHook]s around the execution of app.Run.
func WithLifecycleHooks(app App, lifecycle Lifecycle) App {
	return AppFunc(func(ctx context.Context) (err error) {
		defer runPostRunHook(ctx, lifecycle.PostRun, &err)

		return app.Run(ctx)
	})
}

// the hook runs on a context which outlives cancellation of ctx so
// cleanup after a shutdown signal still completes
func runPostRunHook(ctx context.Context, hook LifecycleHook, err *error) {
	if hook == nil {
		return
	}

	hookErr := hook.Run(context.WithoutCancel(ctx))
	*err = errors.Join(*err, hookErr)
}
