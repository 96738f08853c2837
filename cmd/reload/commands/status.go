package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/reload/internal/core/domain"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the persisted scan state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, state, err := c.app.Status(cmd.Context())
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), state)
			}
			return printStatus(cmd.OutOrStdout(), cfg, state)
		},
	}
	cmd.Flags().Bool("json", false, "Print the scan state as JSON")
	return cmd
}

func printStatus(w io.Writer, cfg *domain.Config, state *domain.ScanState) error {
	watermark := "never"
	if state.Watermark > 0 {
		watermark = time.Unix(0, state.Watermark).UTC().Format(time.RFC3339)
	}

	broken := make([]string, 0, len(state.Broken))
	for id, msg := range state.Broken {
		broken = append(broken, id.String()+" ("+msg+")")
	}
	slices.Sort(broken)

	lines := []string{
		"root:           " + cfg.Root,
		"state:          " + cfg.State.Path,
		"last scan:      " + watermark,
		"sources:        " + fmt.Sprint(len(state.Sources)),
		"units:          " + fmt.Sprint(len(state.Units)),
		"loaded:         " + list(domain.Strings(state.Loaded.Sorted())),
		"pending unload: " + list(domain.Strings(state.PendingUnload)),
		"pending load:   " + list(domain.Strings(state.PendingLoad)),
		"broken:         " + list(broken),
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
