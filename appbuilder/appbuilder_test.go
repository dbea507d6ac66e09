// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wirebind/wirebind"
	"github.com/wirebind/wirebind/config"
	"github.com/wirebind/wirebind/lifecycle"

	"github.com/stretchr/testify/assert"
)

type appFunc func(context.Context) error

func (f appFunc) Run(ctx context.Context) error {
	return f(ctx)
}

func TestRecover(t *testing.T) {
	t.Run("will return a PanicError", func(t *testing.T) {
		t.Run("if the builder panics", func(t *testing.T) {
			builder := Recover(wirebind.AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (wirebind.App, error) {
				panic("hello")
			}))

			_, err := builder.Build(context.Background(), struct{}{})

			var perr wirebind.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, "hello", perr.Value) {
				return
			}
		})
	})

	t.Run("will return the built app", func(t *testing.T) {
		t.Run("if the builder does not panic", func(t *testing.T) {
			builder := Recover(wirebind.AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (wirebind.App, error) {
				return appFunc(func(ctx context.Context) error {
					return nil
				}), nil
			}))

			app, err := builder.Build(context.Background(), struct{}{})
			if !assert.Nil(t, err) {
				return
			}
			if !assert.NotNil(t, app) {
				return
			}
		})
	})
}

func TestFromConfig(t *testing.T) {
	t.Run("will unmarshal the builder config", func(t *testing.T) {
		t.Run("if the source applies cleanly", func(t *testing.T) {
			type cfg struct {
				Hello string `config:"hello"`
			}

			var got cfg
			builder := FromConfig(wirebind.AppBuilderFunc[cfg](func(ctx context.Context, c cfg) (wirebind.App, error) {
				got = c
				return appFunc(func(ctx context.Context) error {
					return nil
				}), nil
			}))

			_, err := builder.Build(
				context.Background(),
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

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the source fails to apply", func(t *testing.T) {
			builder := FromConfig(wirebind.AppBuilderFunc[struct{}](func(ctx context.Context, cfg struct{}) (wirebind.App, error) {
				return nil, nil
			}))

			_, err := builder.Build(
				context.Background(),
				config.FromYaml(strings.NewReader("hello: world:\n\t- hi")),
			)
			if !assert.Error(t, err) {
				return
			}
		})
	})
}

type otelConfig struct {
	initErr error

	initialized bool
}

func (c *otelConfig) InitializeOTel(ctx context.Context) error {
	c.initialized = true
	return c.initErr
}

func TestOTel(t *testing.T) {
	t.Run("will initialize the otel sdk", func(t *testing.T) {
		t.Run("if the config implements OTelInitializer", func(t *testing.T) {
			cfg := &otelConfig{}
			builder := OTel(wirebind.AppBuilderFunc[*otelConfig](func(ctx context.Context, cfg *otelConfig) (wirebind.App, error) {
				return appFunc(func(ctx context.Context) error {
					return nil
				}), nil
			}))

			ctx := lifecycle.NewContext(context.Background(), &lifecycle.Context{})

			app, err := builder.Build(ctx, cfg)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.NotNil(t, app) {
				return
			}
			if !assert.True(t, cfg.initialized) {
				return
			}
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the otel sdk fails to initialize", func(t *testing.T) {
			initErr := errors.New("failed to initialize")
			cfg := &otelConfig{initErr: initErr}

			builder := OTel(wirebind.AppBuilderFunc[*otelConfig](func(ctx context.Context, cfg *otelConfig) (wirebind.App, error) {
				return nil, nil
			}))

			_, err := builder.Build(context.Background(), cfg)
			if !assert.ErrorIs(t, err, initErr) {
				return
			}
		})

		t.Run("if the context has already been cancelled", func(t *testing.T) {
			cfg := &otelConfig{}
			builder := OTel(wirebind.AppBuilderFunc[*otelConfig](func(ctx context.Context, cfg *otelConfig) (wirebind.App, error) {
				return nil, nil
			}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := builder.Build(ctx, cfg)
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
			if !assert.False(t, cfg.initialized) {
				return
			}
		})

		t.Run("if the underlying builder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			builder := OTel(wirebind.AppBuilderFunc[*otelConfig](func(ctx context.Context, cfg *otelConfig) (wirebind.App, error) {
				return nil, buildErr
			}))

			_, err := builder.Build(context.Background(), &otelConfig{})
			if !assert.ErrorIs(t, err, buildErr) {
				return
			}
		})
	})

	t.Run("will wrap the app with a post run hook", func(t *testing.T) {
		t.Run("if no lifecycle context is present", func(t *testing.T) {
			builder := OTel(wirebind.AppBuilderFunc[*otelConfig](func(ctx context.Context, cfg *otelConfig) (wirebind.App, error) {
				return appFunc(func(ctx context.Context) error {
					return nil
				}), nil
			}))

			app, err := builder.Build(context.Background(), &otelConfig{})
			if !assert.Nil(t, err) {
				return
			}

			err = app.Run(context.Background())
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}
