package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/reload/internal/app"
	"go.trai.ch/reload/internal/core/domain"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Unload and reload the units touched by changed sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := runOptions(cmd)
			if err != nil {
				return err
			}
			noThrow, _ := cmd.Flags().GetBool("no-throw")
			full, _ := cmd.Flags().GetBool("full")
			asJSON, _ := cmd.Flags().GetBool("json")
			opts.Throw = !noThrow
			opts.Full = full

			report, err := c.app.Run(cmd.Context(), opts)
			if report != nil {
				if perr := printReport(cmd.OutOrStdout(), report, asJSON); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			if !report.OK() {
				return domain.ErrRunFailed
			}
			return nil
		},
	}

	addRunFlags(cmd)
	cmd.Flags().StringSlice("exclude-unload", nil, "Never unload these units (repeatable)")
	cmd.Flags().StringSlice("exclude-reload", nil, "Never unload or reload these units (repeatable)")
	cmd.Flags().Bool("no-throw", false, "Report a failed run instead of returning its error")
	cmd.Flags().Bool("full", false, "Ignore the watermark and re-read every source")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	return cmd
}

// addRunFlags registers the flags shared by run and watch.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("mode", "m", string(domain.ModeChanged),
		"Which units to reload: changed, all-loaded, all-discovered or pattern")
	cmd.Flags().StringP("pattern", "p", "", "Regular expression over unit ids, used in pattern mode")
}

// runOptions reads the shared flags. Exclusion flags are read when the command has them.
func runOptions(cmd *cobra.Command) (app.RunOptions, error) {
	modeName, _ := cmd.Flags().GetString("mode")
	mode, err := domain.ParseMode(modeName)
	if err != nil {
		return app.RunOptions{}, err
	}
	pattern, _ := cmd.Flags().GetString("pattern")

	opts := app.RunOptions{Mode: mode, Pattern: pattern}
	if cmd.Flags().Lookup("exclude-unload") != nil {
		opts.ExcludeUnload, _ = cmd.Flags().GetStringSlice("exclude-unload")
		opts.ExcludeReload, _ = cmd.Flags().GetStringSlice("exclude-reload")
	}
	return opts, nil
}
