package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/topology"
)

const (
	svgBackground = "fill:rgb(250,250,247)"
	svgGraticule  = "stroke:rgb(220,220,215);stroke-width:0.5"
	svgEdge       = "stroke:rgb(73,10,61);stroke-width:0.7;stroke-opacity:0.8"
	svgCable      = "stroke:rgb(138,155,15);stroke-width:1;stroke-opacity:0.9"
	svgNode       = "fill:rgb(233,127,2)"
	svgLanding    = "fill:rgb(189,21,80)"
)

// plate maps coordinates onto a width x height equirectangular canvas.
type plate struct {
	width, height int
}

func (p plate) x(lon float64) int {
	return int(math.Round((lon + 180) / 360 * float64(p.width)))
}

func (p plate) y(lat float64) int {
	return int(math.Round((90 - lat) / 180 * float64(p.height)))
}

// WriteSVG renders g on a plate carrée map. Edges crossing the antimeridian are
// split at the map border.
func WriteSVG(w io.Writer, g *topology.Graph, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	p := plate{width: width, height: height}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(fmt.Sprintf("topology: %d nodes, %d edges", g.NumNodes(), g.NumEdges()))
	canvas.Rect(0, 0, width, height, svgBackground)

	canvas.Gstyle(svgGraticule)
	for lon := -180.0; lon <= 180; lon += 30 {
		canvas.Line(p.x(lon), 0, p.x(lon), height)
	}
	for lat := -60.0; lat <= 60; lat += 30 {
		canvas.Line(0, p.y(lat), width, p.y(lat))
	}
	canvas.Gend()

	for _, e := range g.Edges() {
		style := svgEdge
		if e.Kind == topology.KindGroundTruth {
			style = svgCable
		}
		a, b := g.Node(e.U).Location, g.Node(e.V).Location
		for _, seg := range splitAntimeridian(a.Lat, a.Lon, b.Lat, b.Lon) {
			canvas.Line(p.x(seg[1]), p.y(seg[0]), p.x(seg[3]), p.y(seg[2]), style)
		}
	}

	for _, n := range g.Nodes() {
		if n.Location.Role == location.RoleWaypoint {
			continue
		}
		style := svgNode
		if n.Location.IsGroundTruth() {
			style = svgLanding
		}
		canvas.Circle(p.x(n.Location.Lon), p.y(n.Location.Lat), 2, style)
	}

	canvas.End()
	return nil
}

// splitAntimeridian returns one or two segments (lat1, lon1, lat2, lon2). A segment
// whose longitude span exceeds 180 degrees is drawn the short way round.
func splitAntimeridian(lat1, lon1, lat2, lon2 float64) [][4]float64 {
	if math.Abs(lon2-lon1) <= 180 {
		return [][4]float64{{lat1, lon1, lat2, lon2}}
	}
	if lon1 > lon2 {
		lat1, lon1, lat2, lon2 = lat2, lon2, lat1, lon1
	}
	// lon1 is west, lon2 east; the short path leaves lon1 westwards.
	span := (lon1 + 180) + (180 - lon2)
	f := 0.5
	if span > 0 {
		f = (lon1 + 180) / span
	}
	latCross := lat1 + f*(lat2-lat1)
	return [][4]float64{
		{lat1, lon1, latCross, -180},
		{latCross, 180, lat2, lon2},
	}
}
