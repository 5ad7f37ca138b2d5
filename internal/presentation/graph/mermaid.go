package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/shopbot/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	CurrentState domain.State
}

// GenerateMermaid produces a Mermaid flowchart from a state table.
// It applies semantic styling:
// - Initial: ((Circle))
// - Awaiting free text: [/Parallelogram/]
// - Default: [Rectangle]
// Self-loops are kept so that in-place actions (add to cart, delete line) stay visible.
func GenerateMermaid(transitions []domain.Transition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, s := range domain.States() {
		opener, closer := "[", "]"
		switch s {
		case domain.StateInitial:
			opener, closer = "((", "))"
		case domain.StateAwaitingEmail:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(string(s)), opener, s.Label(), closer)
	}

	for _, t := range transitions {
		label := string(t.On)
		if t.On == domain.TriggerAny {
			label = "any"
		}
		label = strings.ReplaceAll(label, "\"", "'")
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(string(t.From)), label, sanitizeMermaidID(string(t.To)))
	}

	// Reset is accepted from every state.
	for _, s := range domain.States() {
		if s == domain.StateInitial {
			continue
		}
		fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n",
			sanitizeMermaidID(string(s)), domain.ResetCommand, sanitizeMermaidID(string(domain.StateInitial)))
	}

	if overlay != nil && overlay.CurrentState != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentState)))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
