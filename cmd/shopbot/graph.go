package main

import (
	"fmt"

	"github.com/aretw0/shopbot/internal/presentation/graph"
	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the conversation state machine",
	Long:  `Outputs a Mermaid diagram (graph TD) of every allowed state transition.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("highlight")

		var overlay *graph.GraphOverlay
		if raw != "" {
			state, err := domain.ParseState(raw)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{CurrentState: state}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(domain.Transitions, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("highlight", "", "Persisted state tag to highlight (e.g. HANDLE_CART)")
}
