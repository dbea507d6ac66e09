// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/wirebind/wirebind"
	"github.com/wirebind/wirebind/lifecycle"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	t.Run("will return a PanicError", func(t *testing.T) {
		t.Run("if the app panics with a non-error value", func(t *testing.T) {
			app := Recover(runFunc(func(ctx context.Context) error {
				panic("hello")
			}))

			err := app.Run(context.Background())

			var perr wirebind.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, "hello", perr.Value) {
				return
			}
		})

		t.Run("if the app panics with an error value", func(t *testing.T) {
			panicErr := errors.New("oh no")
			app := Recover(runFunc(func(ctx context.Context) error {
				panic(panicErr)
			}))

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, panicErr) {
				return
			}
		})
	})

	t.Run("will return the underlying error", func(t *testing.T) {
		t.Run("if the app does not panic", func(t *testing.T) {
			runErr := errors.New("failed to run")
			app := Recover(runFunc(func(ctx context.Context) error {
				return runErr
			}))

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, runErr) {
				return
			}

			var perr wirebind.PanicError
			if !assert.False(t, errors.As(err, &perr)) {
				return
			}
		})
	})
}

func TestWithSignalNotifications(t *testing.T) {
	t.Run("will pass through the run result", func(t *testing.T) {
		t.Run("if no signal is received", func(t *testing.T) {
			runErr := errors.New("failed to run")
			app := WithSignalNotifications(runFunc(func(ctx context.Context) error {
				return runErr
			}))

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, runErr) {
				return
			}
		})
	})

	t.Run("will cancel the run context", func(t *testing.T) {
		t.Run("if the parent context is cancelled", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			app := WithSignalNotifications(runFunc(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}))

			err := app.Run(ctx)
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
		})
	})
}

func TestPostRun(t *testing.T) {
	t.Run("will run the hook", func(t *testing.T) {
		t.Run("if the app runs successfully", func(t *testing.T) {
			ran := false
			app := PostRun(
				runFunc(func(ctx context.Context) error {
					return nil
				}),
				lifecycle.HookFunc(func(ctx context.Context) error {
					ran = true
					return nil
				}),
			)

			err := app.Run(context.Background())
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, ran) {
				return
			}
		})

		t.Run("if the app returns an error", func(t *testing.T) {
			ran := false
			runErr := errors.New("failed to run")
			app := PostRun(
				runFunc(func(ctx context.Context) error {
					return runErr
				}),
				lifecycle.HookFunc(func(ctx context.Context) error {
					ran = true
					return nil
				}),
			)

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, runErr) {
				return
			}
			if !assert.True(t, ran) {
				return
			}
		})

		t.Run("if the app panics", func(t *testing.T) {
			ran := false
			app := PostRun(
				runFunc(func(ctx context.Context) error {
					panic("hello")
				}),
				lifecycle.HookFunc(func(ctx context.Context) error {
					ran = true
					return nil
				}),
			)

			err := app.Run(context.Background())

			var perr wirebind.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.True(t, ran) {
				return
			}
		})
	})

	t.Run("will join the hook error onto the run error", func(t *testing.T) {
		t.Run("if both the app and the hook fail", func(t *testing.T) {
			runErr := errors.New("failed to run")
			hookErr := errors.New("failed to clean up")
			app := PostRun(
				runFunc(func(ctx context.Context) error {
					return runErr
				}),
				lifecycle.HookFunc(func(ctx context.Context) error {
					return hookErr
				}),
			)

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, runErr) {
				return
			}
			if !assert.ErrorIs(t, err, hookErr) {
				return
			}
		})
	})

	t.Run("will not run a hook", func(t *testing.T) {
		t.Run("if the hook is nil", func(t *testing.T) {
			app := PostRun(
				runFunc(func(ctx context.Context) error {
					return nil
				}),
				nil,
			)

			err := app.Run(context.Background())
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}
