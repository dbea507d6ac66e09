// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package appbuilder provides helpers for common [wirebind.AppBuilder] implementation patterns.
package appbuilder

import (
	"context"

	"github.com/wirebind/wirebind"
	"github.com/wirebind/wirebind/config"
	"github.com/wirebind/wirebind/internal/try"
)

// Recover will wrap the given [wirebind.AppBuilder] with panic recovery.
func Recover[T any](builder wirebind.AppBuilder[T]) wirebind.AppBuilder[T] {
	return wirebind.AppBuilderFunc[T](func(ctx context.Context, cfg T) (_ wirebind.App, err error) {
		defer try.Recover(&err)

		return builder.Build(ctx, cfg)
	})
}

// FromConfig returns a [wirebind.AppBuilder] which unmarshals
// the given [wirebind.AppBuilder]s input type, T, from a [config.Source].
func FromConfig[T any](builder wirebind.AppBuilder[T]) wirebind.AppBuilder[config.Source] {
	return wirebind.AppBuilderFunc[config.Source](func(ctx context.Context, src config.Source) (wirebind.App, error) {
		m, err := config.Read(src)
		if err != nil {
			return nil, err
		}

		var cfg T
		err = m.Unmarshal(&cfg)
		if err != nil {
			return nil, err
		}

		return builder.Build(ctx, cfg)
	})
}
