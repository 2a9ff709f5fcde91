package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type providerInfo struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
}

type baseURLer interface {
	BaseURL() string
}

func newProvidersCommand(env *cliEnv, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "列出内置站点及其生效域名",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eff, err := env.loadConfig(g.cliArgs(cmd))
			if err != nil {
				return err
			}
			log, closer, err := env.logger(eff)
			if err != nil {
				return err
			}
			defer closer.Close()

			reg, err := env.buildRegistry(eff, false, log)
			if err != nil {
				return err
			}

			infos := make([]providerInfo, 0, len(reg.Names()))
			for _, name := range reg.Names() {
				info := providerInfo{Name: name}
				if p, ok := reg.Get(name); ok {
					if b, ok := p.(baseURLer); ok {
						info.BaseURL = b.BaseURL()
					}
				}
				infos = append(infos, info)
			}

			if isTTY(env.stdout) {
				for _, info := range infos {
					fmt.Fprintf(env.stdout, "%-12s %s\n", info.Name, info.BaseURL)
				}
				return nil
			}
			return json.NewEncoder(env.stdout).Encode(infos)
		},
	}
}
