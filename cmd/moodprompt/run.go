package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/moodprompt/bot"
	corecmd "github.com/m3rciful/moodprompt/core/cmd"
	coreconfig "github.com/m3rciful/moodprompt/core/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := coreconfig.LoadDotEnv(envFiles...); err != nil {
			return fmt.Errorf("run: %w", err)
		}
		return corecmd.Run(corecmd.Options{
			ConfigPath:   cfgFile,
			ConfigEnvVar: "CONFIG_PATH",
			LoadConfig:   bot.LoadConfig,
			Bootstrap:    bot.Bootstrap,
			Context:      cmd.Context(),
		})
	},
}
