// Copyright (c) 2025 Wirebind Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"embed"

	"github.com/wirebind/wirebind"
	"github.com/wirebind/wirebind/appbuilder"
	"github.com/wirebind/wirebind/config"
	"github.com/wirebind/wirebind/example/itemsvc/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//go:embed config.yaml
var configDir embed.FS

func main() {
	cmd := &cobra.Command{
		Use:          "itemsvc",
		Short:        "Run the item service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wirebind.Run(
				cmd.Context(),
				appbuilder.Recover(
					appbuilder.OTel(
						wirebind.AppBuilderFunc[service.Config](service.Init),
					),
				),
				config.FromYaml(
					config.NewFileReader(configDir, "config.yaml"),
				),
				config.FromEnv(),
			)
		},
	}

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		log, _ := zap.NewProduction()
		log.Fatal("failed to run item service", zap.Error(err))
	}
}
