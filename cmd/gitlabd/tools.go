package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/gitlabd/internal/catalog"
	"github.com/fyrsmithlabs/gitlabd/internal/gate"
)

// toolsCmd prints the tools the current configuration would expose, which
// makes gate behavior inspectable without attaching an MCP client.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the current configuration exposes",
	Long: `List every tool the server would advertise with the current
configuration. Tools hidden by read-only mode or disabled feature flags
are not shown; pass --all to include them with the reason they are off.`,
	RunE: runTools,
}

var toolsAll bool

func init() {
	toolsCmd.Flags().BoolVar(&toolsAll, "all", false, "include gated-off tools with the reason")
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := catalog.New()
	g := gate.New(reg, cfg)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tEFFECT\tGROUP\tSTATUS")
	for _, def := range reg.List() {
		if g.Available(def) {
			fmt.Fprintf(w, "%s\t%s\t%s\tavailable\n", def.Name, def.Effect, def.Group)
			continue
		}
		if toolsAll {
			fmt.Fprintf(w, "%s\t%s\t%s\toff: %s\n", def.Name, def.Effect, def.Group, g.Reason(def))
		}
	}
	return nil
}
