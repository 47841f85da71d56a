package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-modgraph/dsp/graph"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <patch>",
		Short: "Print the modules, links and parameter ids of a patch",
		Long: `Build a patch and print its modules in registration order, its links
by label and slot name, and the host parameter id of every input slot.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, o, _, err := loadGraph(rootOpts, args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer o.Terminate()

			return printGraph(cmd.OutOrStdout(), o)
		},
	}

	return cmd
}

func printGraph(w io.Writer, o *graph.Orchestrator) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "POS\tID\tLABEL\tTYPE\tKIND\n")

	for i, m := range o.Modules() {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", i, m.ID(), m.Name(), m.Type(), m.Kind())
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(tw, "LINK\tSTATE\n")

	for _, l := range o.Links() {
		state := "enabled"
		if !l.Enabled {
			state = "disabled"
		}

		fmt.Fprintf(tw, "%s -> %s\t%s\n", endpoint(o, l.Source, l.SourceSlot), endpoint(o, l.Target, l.TargetSlot), state)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(tw, "PARAMETER\tINPUT\n")

	for _, m := range o.Modules() {
		for _, s := range m.InputSlots() {
			fmt.Fprintf(tw, "0x%08x\t%s\n", graph.ParameterID(m.ID(), s.ID), endpoint(o, m.ID(), s.ID))
		}
	}

	return tw.Flush()
}

func endpoint(o *graph.Orchestrator, id graph.ModuleID, slot graph.SlotID) string {
	m, ok := o.Module(id)
	if !ok {
		return fmt.Sprintf("%d.%d", id, slot)
	}

	return m.Name() + "." + m.SlotName(slot)
}
