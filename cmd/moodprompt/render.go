package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m3rciful/moodprompt/bot/catalog"
)

var (
	renderCatalog string
	renderMood    string
	renderPalette string
	renderSubject string
	renderList    bool
)

var renderCmd = &cobra.Command{
	Use:   "render [description]",
	Short: "Render a prompt without Telegram",
	Long: `Render prints the prompt the bot would send for the given choices.
Use --list to print the available moods, palettes and subjects.`,
	Example: `  moodprompt render --mood joyful --palette pastel --subject flowers "a lighthouse at dawn"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(renderCatalog)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if renderList {
			for _, f := range catalog.Families {
				fmt.Fprintf(out, "%s:\n", f)
				for _, o := range cat.Options(f) {
					fmt.Fprintf(out, "  %-12s %s\n", o.ID, o.Label)
				}
			}
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("render: description is required")
		}
		for _, check := range []struct {
			family catalog.Family
			id     string
		}{
			{catalog.FamilyMood, renderMood},
			{catalog.FamilyPalette, renderPalette},
			{catalog.FamilySubject, renderSubject},
		} {
			if _, err := cat.Lookup(check.family, check.id); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}

		prompt, err := cat.Render(catalog.Selection{
			Mood:      renderMood,
			Palette:   renderPalette,
			Subject:   renderSubject,
			UserInput: strings.Join(args, " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, prompt)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderCatalog, "catalog", "", "catalog YAML file (default: built-in)")
	renderCmd.Flags().StringVar(&renderMood, "mood", "", "mood id")
	renderCmd.Flags().StringVar(&renderPalette, "palette", "", "palette id")
	renderCmd.Flags().StringVar(&renderSubject, "subject", "", "subject id")
	renderCmd.Flags().BoolVar(&renderList, "list", false, "list available options and exit")
}
