// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app provides helpers for common [wirebind.App] implementation patterns.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/wirebind/wirebind"
	"github.com/wirebind/wirebind/internal/try"
	"github.com/wirebind/wirebind/lifecycle"
)

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Recover will wrap the given [wirebind.App] with panic recovery.
// If the recovered panic value implements [error] then it will
// be directly returned. If it does not implement [error] then a
// [wirebind.PanicError] will be returned instead.
func Recover(app wirebind.App) wirebind.App {
	return runFunc(func(ctx context.Context) (err error) {
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

// WithSignalNotifications wraps a given [wirebind.App] in an implementation
// that cancels the [context.Context] that's passed to app.Run if an [os.Signal]
// is received by the running process.
func WithSignalNotifications(app wirebind.App, signals ...os.Signal) wirebind.App {
	return runFunc(func(ctx context.Context) error {
		sigCtx, cancel := signal.NotifyContext(ctx, signals...)
		defer cancel()

		return app.Run(sigCtx)
	})
}

// PostRun wraps a given [wirebind.App] in an implementation that runs
// the given [lifecycle.Hook] after app.Run returns. The hook is always
// executed regardless if the underlying app returns an error or panics.
func PostRun(app wirebind.App, hook lifecycle.Hook) wirebind.App {
	return runFunc(func(ctx context.Context) (err error) {
		defer runPostRunHook(ctx, hook, &err)
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

func runPostRunHook(ctx context.Context, hook lifecycle.Hook, err *error) {
	if hook == nil {
		return
	}

	hookErr := hook.Run(ctx)

	// errors.Join will not return an error if both
	// *err and hookErr are nil.
	*err = errors.Join(*err, hookErr)
}
