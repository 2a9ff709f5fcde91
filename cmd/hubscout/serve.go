package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/hubscout/internal/server"
)

func newServeCommand(env *cliEnv, g *globalFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "以 HTTP 服务提供解析接口（/stream/{kind}/{id}.json）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli := g.cliArgs(cmd)
			cli.Listen = listen
			cli.ListenSet = cmd.Flags().Changed("listen")

			eff, err := env.loadConfig(cli)
			if err != nil {
				return err
			}
			log, closer, err := env.logger(eff)
			if err != nil {
				return err
			}
			defer closer.Close()

			reg, err := env.buildRegistry(eff, true, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("listen", eff.Listen).Strs("providers", reg.Names()).Msg("serve")
			return server.New(reg, log).ListenAndServe(ctx, eff.Listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "监听地址（默认 :7000）")
	return cmd
}
