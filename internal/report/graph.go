// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"strconv"
	"text/template"

	"github.com/telekom/hoptrace/internal/traceroute"
)

// graphNode is a node of the rendered route graph.
type graphNode struct {
	ID    string
	Label string
	Shape string
}

type graphEdge struct {
	From string
	To   string
}

type graphData struct {
	Title string
	Nodes []graphNode
	Edges []graphEdge
}

// dotTemplate renders a left to right digraph with dotted edges in hop order.
var dotTemplate = template.Must(template.New("route").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`digraph route {
	label={{ quote .Title }};
	labelloc="t";
	rankdir="LR";
	fontname="Sans-Serif";
	node [fontname="Sans-Serif", fontsize="12"];
	edge [color="black", style="dotted", arrowhead="none"];
{{- range .Nodes }}
	{{ .ID }} [label={{ quote .Label }}, shape="{{ .Shape }}"];
{{- end }}
{{- range .Edges }}
	{{ .From }} -> {{ .To }};
{{- end }}
}
`))

// WriteDOT renders the route as a Graphviz DOT graph.
// Missed hops become plain "*" placeholder nodes, all other hops router
// nodes labeled with their name and round-trip time.
func WriteDOT(w io.Writer, route traceroute.Route) error {
	data := graphData{Title: fmt.Sprintf("Traceroute to host %s", route.Target)}
	for _, hop := range route.Hops {
		n := graphNode{ID: fmt.Sprintf("hop%d", hop.Step), Label: traceroute.MissMarker, Shape: "plaintext"}
		if !hop.Missed() {
			n.Label = fmt.Sprintf("[%s] %d ms", hop.Name, hop.ElapsedMS)
			n.Shape = "box"
		}
		if len(data.Nodes) > 0 {
			data.Edges = append(data.Edges, graphEdge{From: data.Nodes[len(data.Nodes)-1].ID, To: n.ID})
		}
		data.Nodes = append(data.Nodes, n)
	}

	if err := dotTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render route graph: %w", err)
	}
	return nil
}
