// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package wirebind provides a minimal framework for building and running
// HTTP services over a hand rolled wire codec.
//
// The package is built around two core abstractions:
//
//   - AppBuilder[T]: A generic interface for constructing an application
//     from an unmarshalled config value
//   - App: An interface representing a runnable application
//
// # Basic Usage
//
// Define your config type with "config" struct tags, implement an
// [AppBuilder] for it and hand both to [Run] along with your config
// sources:
//
//	type Config struct {
//	    Http struct {
//	        Addr string `config:"addr"`
//	    } `config:"http"`
//	}
//
//	func build(ctx context.Context, cfg Config) (wirebind.App, error) {
//	    return rest.NewApp(
//	        rest.Addr(cfg.Http.Addr),
//	        rest.Register(...),
//	    ), nil
//	}
//
//	func main() {
//	    err := wirebind.Run(
//	        context.Background(),
//	        wirebind.AppBuilderFunc[Config](build),
//	        config.FromYaml(config.NewFileReader(os.DirFS("."), "config.yaml")),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Request handlers themselves are declared with the rest/endpoint
// package and served by the rest package.
package wirebind
