// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package wirebind

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wirebind/wirebind/config"
	"github.com/wirebind/wirebind/lifecycle"

	"github.com/stretchr/testify/assert"
)

type sourceFunc func(config.Store) error

func (f sourceFunc) Apply(store config.Store) error {
	return f(store)
}

type appFunc func(context.Context) error

func (f appFunc) Run(ctx context.Context) error {
	return f(ctx)
}

func TestRun(t *testing.T) {
	t.Run("will return a ConfigReadError", func(t *testing.T) {
		t.Run("if a config source fails to apply", func(t *testing.T) {
			applyErr := errors.New("failed to apply")
			src := sourceFunc(func(config.Store) error {
				return applyErr
			})

			builder := AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (App, error) {
				return nil, nil
			})

			err := Run(context.Background(), builder, src)

			var cerr ConfigReadError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}
			if !assert.ErrorIs(t, err, applyErr) {
				return
			}
			if !assert.NotEmpty(t, cerr.Error()) {
				return
			}
		})
	})

	t.Run("will return a ConfigUnmarshalError", func(t *testing.T) {
		t.Run("if a config value cannot be coerced to the config type", func(t *testing.T) {
			type cfg struct {
				Port int `config:"port"`
			}

			builder := AppBuilderFunc[cfg](func(ctx context.Context, c cfg) (App, error) {
				return nil, nil
			})

			err := Run(
				context.Background(),
				builder,
				config.FromYaml(strings.NewReader("port: not a number")),
			)

			var uerr ConfigUnmarshalError
			if !assert.ErrorAs(t, err, &uerr) {
				return
			}
			if !assert.NotEmpty(t, uerr.Error()) {
				return
			}
		})
	})

	t.Run("will return an AppBuildError", func(t *testing.T) {
		t.Run("if the builder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			builder := AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (App, error) {
				return nil, buildErr
			})

			err := Run(context.Background(), builder)

			var berr AppBuildError
			if !assert.ErrorAs(t, err, &berr) {
				return
			}
			if !assert.ErrorIs(t, err, buildErr) {
				return
			}
		})
	})

	t.Run("will return an AppRunError", func(t *testing.T) {
		t.Run("if the app fails to run", func(t *testing.T) {
			runErr := errors.New("failed to run")
			builder := AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (App, error) {
				return appFunc(func(ctx context.Context) error {
					return runErr
				}), nil
			})

			err := Run(context.Background(), builder)

			var rerr AppRunError
			if !assert.ErrorAs(t, err, &rerr) {
				return
			}
			if !assert.ErrorIs(t, err, runErr) {
				return
			}
		})
	})

	t.Run("will not return an error", func(t *testing.T) {
		t.Run("if the config unmarshals and the app runs", func(t *testing.T) {
			type cfg struct {
				Hello string `config:"hello"`
			}

			var got cfg
			builder := AppBuilderFunc[cfg](func(ctx context.Context, c cfg) (App, error) {
				got = c
				return appFunc(func(ctx context.Context) error {
					return nil
				}), nil
			})

			err := Run(
				context.Background(),
				builder,
				config.FromYaml(strings.NewReader("hello: world")),
			)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "world", got.Hello) {
				return
			}
		})
	})

	t.Run("will run registered lifecycle hooks", func(t *testing.T) {
		t.Run("if the builder registers a post run hook", func(t *testing.T) {
			ran := false
			builder := AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (App, error) {
				lc, ok := lifecycle.FromContext(ctx)
				if !ok {
					return nil, errors.New("no lifecycle context")
				}
				lc.OnPostRun(lifecycle.HookFunc(func(context.Context) error {
					ran = true
					return nil
				}))

				return appFunc(func(ctx context.Context) error {
					return nil
				}), nil
			})

			err := Run(context.Background(), builder)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, ran) {
				return
			}
		})

		t.Run("even if the app fails to run", func(t *testing.T) {
			ran := false
			runErr := errors.New("failed to run")
			builder := AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (App, error) {
				lc, _ := lifecycle.FromContext(ctx)
				lc.OnPostRun(lifecycle.HookFunc(func(context.Context) error {
					ran = true
					return nil
				}))

				return appFunc(func(ctx context.Context) error {
					return runErr
				}), nil
			})

			err := Run(context.Background(), builder)
			if !assert.ErrorIs(t, err, runErr) {
				return
			}
			if !assert.True(t, ran) {
				return
			}
		})
	})
}
