package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/netsim/topogen/internal/topology"
)

// WriteNodes writes one "id lat lon" line per node in ID order.
func WriteNodes(w io.Writer, g *topology.Graph) error {
	bw := bufio.NewWriter(w)
	for _, n := range g.Nodes() {
		fmt.Fprintf(bw, "%d %.6f %.6f\n", n.ID, n.Location.Lat, n.Location.Lon)
	}
	return bw.Flush()
}

// WriteEdges writes one "u v weight_km" line per edge, sorted by (u, v).
func WriteEdges(w io.Writer, g *topology.Graph) error {
	bw := bufio.NewWriter(w)
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "%d %d %.3f\n", e.U, e.V, e.WeightKm)
	}
	return bw.Flush()
}
