package main

import (
	"github.com/spf13/cobra"

	"github.com/John-Robertt/hubscout/internal/config"
)

// globalFlags 是所有子命令共享的参数。
type globalFlags struct {
	configPath string
	logLevel   string
}

func (g *globalFlags) cliArgs(cmd *cobra.Command) config.CLIArgs {
	return config.CLIArgs{
		ConfigPath:  g.configPath,
		LogLevel:    g.logLevel,
		LogLevelSet: cmd.Flags().Changed("log-level"),
	}
}

func newRootCommand(env *cliEnv) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "hubscout",
		Short:         "把 TMDB ID 解析为目录站上的可播放链接",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "配置文件路径（默认读取当前目录的 "+config.FileName+"）")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "日志级别：trace/debug/info/warn/error")

	root.AddCommand(newStreamsCommand(env, g))
	root.AddCommand(newServeCommand(env, g))
	root.AddCommand(newProvidersCommand(env, g))
	return root
}
