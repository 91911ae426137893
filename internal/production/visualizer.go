package production

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/comalice/hsmx"
	"github.com/comalice/hsmx/internal/primitives"
)

// DefaultVisualizer renders definitions and live hierarchies as Graphviz DOT.
type DefaultVisualizer struct{}

const dotHeader = `digraph Statechart {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
  "__start" [shape=point];
`

// ExportDOT generates Graphviz DOT source for a definition. States named
// in active are highlighted.
func (v *DefaultVisualizer) ExportDOT(config primitives.MachineConfig, active []string) string {
	var buf bytes.Buffer
	buf.WriteString(dotHeader)

	isActive := make(map[string]bool, len(active))
	for _, id := range active {
		isActive[id] = true
	}

	for _, root := range config.States {
		renderState(&buf, root, isActive)
	}

	fmt.Fprintf(&buf, "  %q -> %q;\n", "__start", config.Initial)
	for _, edge := range collectEdges(config) {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q%s];\n", edge.From, edge.To, edge.Label, edge.Style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportHierarchyDOT renders a compiled hierarchy. Handlers are code, so
// only the tree and the initial children are drawn.
func (v *DefaultVisualizer) ExportHierarchyDOT(h *hsmx.Hierarchy, active []hsmx.StateID) string {
	var buf bytes.Buffer
	buf.WriteString(dotHeader)

	isActive := make(map[hsmx.StateID]bool, len(active))
	for _, id := range active {
		isActive[id] = true
	}

	var render func(id hsmx.StateID)
	render = func(id hsmx.StateID) {
		name := h.Name(id)
		if h.IsLeaf(id) {
			fmt.Fprintf(&buf, "  %q [label=%q%s];\n", name, name, leafStyle(isActive[id]))
			return
		}
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+name)
		fmt.Fprintf(&buf, "    label=%q%s;\n", name, clusterStyle(isActive[id]))
		fmt.Fprintf(&buf, "    %q [label=%q shape=ellipse];\n", name, name)
		for _, child := range h.Children(id) {
			render(child)
		}
		buf.WriteString("  }\n")
	}
	for _, id := range h.Children(hsmx.Top) {
		render(id)
	}

	if initial, ok := h.Initial(hsmx.Top); ok {
		fmt.Fprintf(&buf, "  %q -> %q;\n", "__start", h.Name(initial))
	}
	for _, id := range h.States() {
		if initial, ok := h.Initial(id); ok {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", h.Name(id), h.Name(initial))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the machine config to JSON.
func (v *DefaultVisualizer) ExportJSON(config primitives.MachineConfig) ([]byte, error) {
	return json.MarshalIndent(config, "", "  ")
}

// Edge represents a transition edge.
type Edge struct {
	From  string
	To    string
	Label string
	Style string
}

// collectEdges collects all transitions in declaration order, plus dashed
// edges from composites to their initial child.
func collectEdges(config primitives.MachineConfig) []Edge {
	all, err := config.Flatten()
	if err != nil {
		return nil
	}
	var edges []Edge
	for _, id := range config.StateIDs() {
		state := all[id]
		if state.Initial != "" {
			edges = append(edges, Edge{From: id, To: state.Initial, Style: " style=dashed"})
		}
		for _, event := range state.Events() {
			for _, trans := range state.On[event] {
				label := event
				if trans.Guard != "" {
					label = fmt.Sprintf("%s [%s]", event, trans.Guard)
				}
				to := trans.Target
				if trans.IsInternal() {
					to = id
					label += " (internal)"
				}
				edges = append(edges, Edge{From: id, To: to, Label: label})
			}
		}
	}
	return edges
}

// renderState recursively renders states and subgraphs.
func renderState(buf *bytes.Buffer, state *primitives.StateConfig, active map[string]bool) {
	if len(state.Children) == 0 {
		fmt.Fprintf(buf, "  %q [label=%q%s];\n", state.ID, state.ID, leafStyle(active[state.ID]))
		return
	}
	fmt.Fprintf(buf, "  subgraph %q {\n", "cluster_"+state.ID)
	fmt.Fprintf(buf, "    label=%q%s;\n", state.ID, clusterStyle(active[state.ID]))
	fmt.Fprintf(buf, "    %q [label=%q shape=ellipse];\n", state.ID, state.ID)
	for _, child := range state.Children {
		renderState(buf, child, active)
	}
	buf.WriteString("  }\n")
}

func leafStyle(active bool) string {
	if active {
		return " style=filled fillcolor=lightgreen"
	}
	return ""
}

func clusterStyle(active bool) string {
	if active {
		return " style=filled fillcolor=orange"
	}
	return ""
}
