package cmd

import (
	"github.com/spf13/cobra"

	"github.com/priyanshu2307/Newschat/config"
	srv "github.com/priyanshu2307/Newschat/internal/server"
)

func serveCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			return srv.Run(cfg)
		},
	}
}
