package export

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/topology"
)

// Style is an RGB colour given as hex "rrggbb" plus an opacity in [0, 1].
type Style struct {
	Color string
	Alpha float64
}

// KMLStyles holds the four styles used in a KML document.
type KMLStyles struct {
	Pins         Style
	Edges        Style
	Seacable     Style
	SeacablePins Style
}

// kmlColor converts "rrggbb" and an alpha to KML's "aabbggrr".
func kmlColor(s Style) (string, error) {
	c := strings.TrimPrefix(s.Color, "#")
	rgb, err := hex.DecodeString(c)
	if err != nil || len(rgb) != 3 {
		return "", fmt.Errorf("invalid colour %q", s.Color)
	}
	if s.Alpha < 0 || s.Alpha > 1 || math.IsNaN(s.Alpha) {
		return "", fmt.Errorf("alpha %v out of [0, 1]", s.Alpha)
	}
	a := byte(math.Round(s.Alpha * 255))
	return hex.EncodeToString([]byte{a, rgb[2], rgb[1], rgb[0]}), nil
}

type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Xmlns    string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name    string      `xml:"name"`
	Styles  []kmlStyle  `xml:"Style"`
	Folders []kmlFolder `xml:"Folder"`
}

type kmlStyle struct {
	ID        string        `xml:"id,attr"`
	IconStyle *kmlIconStyle `xml:"IconStyle,omitempty"`
	LineStyle *kmlLineStyle `xml:"LineStyle,omitempty"`
}

type kmlIconStyle struct {
	Color string  `xml:"color"`
	Scale float64 `xml:"scale"`
}

type kmlLineStyle struct {
	Color string  `xml:"color"`
	Width float64 `xml:"width"`
}

type kmlFolder struct {
	Name       string         `xml:"name"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name        string         `xml:"name"`
	Description string         `xml:"description,omitempty"`
	StyleURL    string         `xml:"styleUrl"`
	Point       *kmlPoint      `xml:"Point,omitempty"`
	LineString  *kmlLineString `xml:"LineString,omitempty"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlLineString struct {
	Tessellate  int    `xml:"tessellate"`
	Coordinates string `xml:"coordinates"`
}

func coord(l location.Location) string {
	return fmt.Sprintf("%.6f,%.6f,0", l.Lon, l.Lat)
}

// WriteKML renders g as a KML document with one pin per node (waypoints excepted)
// and one line per edge. Ground-truth edges and landing points use the sea cable
// styles.
func WriteKML(w io.Writer, g *topology.Graph, name string, styles KMLStyles) error {
	doc := kmlDocument{Name: name}
	for _, s := range []struct {
		id    string
		style Style
		line  bool
	}{
		{"pin", styles.Pins, false},
		{"edge", styles.Edges, true},
		{"seacable", styles.Seacable, true},
		{"seacablepin", styles.SeacablePins, false},
	} {
		color, err := kmlColor(s.style)
		if err != nil {
			return fmt.Errorf("style %s: %w", s.id, err)
		}
		ks := kmlStyle{ID: s.id}
		if s.line {
			ks.LineStyle = &kmlLineStyle{Color: color, Width: 1.5}
		} else {
			ks.IconStyle = &kmlIconStyle{Color: color, Scale: 0.6}
		}
		doc.Styles = append(doc.Styles, ks)
	}

	nodes := kmlFolder{Name: "Nodes"}
	for _, n := range g.Nodes() {
		if n.Location.Role == location.RoleWaypoint {
			continue
		}
		style := "#pin"
		if n.Location.IsGroundTruth() {
			style = "#seacablepin"
		}
		label := n.Location.Name
		if label == "" {
			label = fmt.Sprintf("node %d", n.ID)
		}
		nodes.Placemarks = append(nodes.Placemarks, kmlPlacemark{
			Name:        label,
			Description: fmt.Sprintf("id %d, %s, degree %d", n.ID, n.Location.Role, g.Degree(n.ID)),
			StyleURL:    style,
			Point:       &kmlPoint{Coordinates: coord(n.Location)},
		})
	}

	edges := kmlFolder{Name: "Edges"}
	for _, e := range g.Edges() {
		style := "#edge"
		if e.Kind == topology.KindGroundTruth {
			style = "#seacable"
		}
		a, b := g.Node(e.U).Location, g.Node(e.V).Location
		edges.Placemarks = append(edges.Placemarks, kmlPlacemark{
			Name:        fmt.Sprintf("%d-%d", e.U, e.V),
			Description: fmt.Sprintf("%.1f km", e.WeightKm),
			StyleURL:    style,
			LineString:  &kmlLineString{Tessellate: 1, Coordinates: coord(a) + " " + coord(b)},
		})
	}
	doc.Folders = []kmlFolder{nodes, edges}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(kmlRoot{Xmlns: "http://www.opengis.net/kml/2.2", Document: doc}); err != nil {
		return fmt.Errorf("encoding KML: %w", err)
	}
	return enc.Flush()
}
