package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "geo", "force", "circle", or "grid"
	Title  string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout: "geo",
		Title:  "Network Topology",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"geo", "force", "circle", "grid"}

// GenerateHTML generates a self-contained HTML file for the graph visualization.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}

	if graph.IsEmpty() {
		return generateEmptyHTML(opts.Title)
	}

	graphJSON, err := graph.ToCytoscapeJSON(opts.Layout == "" || opts.Layout == "geo")
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     opts.Title,
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
		Stats:     graph.Stats(),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// validateLayout checks if the layout option is valid.
func validateLayout(layout string) error {
	switch layout {
	case "", "geo", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be geo, force, circle, or grid", layout)
	}
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	GraphJSON template.JS
	Layout    string
	Stats     Stats
}

// Stats is shown in the page header.
type Stats struct {
	Nodes      int
	Edges      int
	CableEdges int
	Roles      []RoleCount
}

// RoleCount is the number of nodes with one role.
type RoleCount struct {
	Role  string
	Count int
}

// Stats counts the nodes per role, in first-seen order, and the edges per kind.
func (g *GraphData) Stats() Stats {
	st := Stats{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	idx := make(map[string]int)
	for _, n := range g.Nodes {
		i, ok := idx[n.Type]
		if !ok {
			i = len(st.Roles)
			idx[n.Type] = i
			st.Roles = append(st.Roles, RoleCount{Role: n.Type})
		}
		st.Roles[i].Count++
	}
	for _, e := range g.Edges {
		if e.Kind == "ground_truth" {
			st.CableEdges++
		}
	}
	return st
}

// layoutToCytoscape converts user-facing layout names to Cytoscape.js layout names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "force":
		return "cose"
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	default:
		return "preset"
	}
}

var emptyTemplate = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.}}</title></head>
<body style="font: 14px system-ui, sans-serif; text-align: center; margin-top: 20vh; color: #666">
  <h2>{{.}}: no nodes</h2>
  <p>The generated topology is empty. Lower <code>cities.min_population</code> or add cities.</p>
</body>
</html>`))

// generateEmptyHTML returns HTML for an empty graph state.
func generateEmptyHTML(title string) (string, error) {
	var buf bytes.Buffer
	if err := emptyTemplate.Execute(&buf, title); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
<style>
  html, body { margin: 0; height: 100%; font: 13px/1.4 system-ui, sans-serif; color: #222; }
  header { display: flex; gap: 18px; align-items: center; padding: 6px 12px; background: #20232a; color: #eee; }
  header h1 { font-size: 15px; margin: 0 12px 0 0; }
  header .stat b { color: #E97F02; }
  header input { margin-left: auto; padding: 3px 6px; border: 0; border-radius: 3px; }
  header label { cursor: pointer; }
  #map { position: absolute; top: 34px; bottom: 0; left: 0; right: 0; background: #fbfbf8; }
  #info { position: absolute; right: 10px; bottom: 10px; min-width: 180px; padding: 8px 10px;
          background: rgba(255,255,255,0.95); border: 1px solid #bbb; border-radius: 4px; display: none; }
  #info .role { font-size: 10px; letter-spacing: .05em; text-transform: uppercase; color: #777; }
  #info .name { font-weight: 600; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <span class="stat"><b>{{.Stats.Nodes}}</b> nodes</span>
  <span class="stat"><b>{{.Stats.Edges}}</b> edges</span>
  {{if .Stats.CableEdges}}<span class="stat"><b>{{.Stats.CableEdges}}</b> cable</span>
  <label><input type="checkbox" id="cables" checked> show cables</label>{{end}}
  {{range .Stats.Roles}}<span class="stat">{{.Role}}: {{.Count}}</span>{{end}}
  <input id="find" type="search" placeholder="find node">
</header>
<div id="map"></div>
<div id="info"></div>
<script>
(function () {
  var cy = cytoscape({
    container: document.getElementById('map'),
    elements: {{.GraphJSON}},
    layout: { name: "{{.Layout}}", animate: false, fit: true },
    minZoom: 0.05,
    style: [
      { selector: 'node', style: {
          'background-color': '#E97F02', 'label': 'data(label)', 'font-size': 5,
          'text-valign': 'top', 'color': '#444',
          'width': 'mapData(degree, 0, 12, 3, 12)', 'height': 'mapData(degree, 0, 12, 3, 12)' } },
      { selector: 'node[type = "metropolis"]', style: { 'background-color': '#C44D58', 'shape': 'round-rectangle' } },
      { selector: 'node[type = "landing_point"]', style: { 'background-color': '#BD1550', 'shape': 'triangle' } },
      { selector: 'node[type = "waypoint"]', style: { 'width': 1, 'height': 1, 'label': '', 'background-color': '#8A9B0F' } },
      { selector: 'edge', style: { 'width': 0.8, 'line-color': '#490A3D', 'opacity': 0.6 } },
      { selector: 'edge[kind = "ground_truth"]', style: { 'line-color': '#8A9B0F', 'line-style': 'dashed', 'width': 1.2 } },
      { selector: '.faded', style: { 'opacity': 0.12 } },
      { selector: 'node.found', style: { 'border-width': 2, 'border-color': '#1f77b4' } }
    ]
  });

  var info = document.getElementById('info');
  function text(s) { var d = document.createElement('div'); d.textContent = s; return d.innerHTML; }

  cy.on('tap', 'node', function (evt) {
    var d = evt.target.data();
    info.innerHTML = '<div class="role">' + text(d.type) + '</div>' +
      '<div class="name">' + text(d.label || d.id) + (d.country ? ' (' + text(d.country) + ')' : '') + '</div>' +
      '<div>' + d.latitude.toFixed(4) + ', ' + d.longitude.toFixed(4) + '</div>' +
      (d.population ? '<div>population ' + d.population.toLocaleString() + '</div>' : '') +
      '<div>degree ' + d.degree + '</div>';
    info.style.display = 'block';
    cy.elements().addClass('faded');
    evt.target.closedNeighborhood().removeClass('faded');
  });
  cy.on('tap', 'edge', function (evt) {
    var d = evt.target.data();
    info.innerHTML = '<div class="role">' + text(d.kind) + '</div>' +
      '<div class="name">' + text(d.source) + ' to ' + text(d.target) + '</div>' +
      '<div>' + d.weightKm.toFixed(1) + ' km</div>';
    info.style.display = 'block';
  });
  cy.on('tap', function (evt) {
    if (evt.target === cy) {
      cy.elements().removeClass('faded found');
      info.style.display = 'none';
    }
  });

  var cables = document.getElementById('cables');
  if (cables) {
    cables.addEventListener('change', function () {
      cy.edges('[kind = "ground_truth"]').style('display', cables.checked ? 'element' : 'none');
    });
  }

  document.getElementById('find').addEventListener('input', function (e) {
    var q = e.target.value.trim().toLowerCase();
    cy.nodes().removeClass('found');
    if (!q) return;
    var hits = cy.nodes().filter(function (n) { return (n.data('label') || '').toLowerCase().indexOf(q) === 0; });
    hits.addClass('found');
    if (hits.length) cy.animate({ fit: { eles: hits, padding: 80 } }, { duration: 300 });
  });
})();
</script>
</body>
</html>`
