package main

import (
	"github.com/spf13/cobra"

	"github.com/m3rciful/moodprompt/core/buildinfo"
)

var (
	cfgFile  string
	envFiles []string
)

var rootCmd = &cobra.Command{
	Use:   "moodprompt",
	Short: "Telegram bot that turns a mood, a palette and a subject into an image prompt",
	Long: `moodprompt runs a Telegram bot that asks the user for a mood, a color
palette and a subject through inline menus, then a short description, and
replies with a prompt ready for an image generator.

Configuration comes from an optional YAML file overlaid by environment
variables. BOT_TOKEN is required to run the bot.`,
	Version:       buildinfo.String(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: $CONFIG_PATH, else environment only)",
	)
	rootCmd.PersistentFlags().StringSliceVar(
		&envFiles, "env-file", nil, "env files loaded before reading configuration (default: ./.env if present)",
	)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(versionCmd)
}
