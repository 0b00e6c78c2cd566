package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/netsim/topogen/internal/geo"
)

// SimNode is an externally supplied simulation node.
type SimNode struct {
	ID  int     `json:"id"`
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// simNodeFile is the on-disk layout: {"nodes": [{"id", "latitude", "longitude"}]}.
type simNodeFile struct {
	Nodes []struct {
		ID        FlexibleInt   `json:"id"`
		Latitude  FlexibleFloat `json:"latitude"`
		Longitude FlexibleFloat `json:"longitude"`
	} `json:"nodes"`
}

// LoadSimNodes reads a simulation node file.
func LoadSimNodes(path string) ([]SimNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading simulation nodes: %w", ErrMalformed, err)
	}
	nodes, err := ParseSimNodes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nodes, nil
}

// ParseSimNodes decodes and validates simulation nodes. Any bad record rejects the
// whole input.
func ParseSimNodes(data []byte) ([]SimNode, error) {
	var file simNodeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing simulation nodes: %v", ErrMalformed, err)
	}

	nodes := make([]SimNode, 0, len(file.Nodes))
	seen := make(map[int]int)
	for i, n := range file.Nodes {
		switch {
		case !n.ID.Set:
			return nil, fmt.Errorf("%w: node %d: missing required field 'id'", ErrMalformed, i+1)
		case !n.Latitude.Set || !n.Longitude.Set:
			return nil, fmt.Errorf("%w: node %d: missing coordinates", ErrMalformed, i+1)
		case !geo.ValidCoordinate(n.Latitude.Value, n.Longitude.Value):
			return nil, fmt.Errorf("%w: node %d: coordinate (%g, %g) out of range",
				ErrMalformed, n.ID.Value, n.Latitude.Value, n.Longitude.Value)
		}
		if prev, dup := seen[n.ID.Value]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %d (records %d and %d)", ErrMalformed, n.ID.Value, prev, i+1)
		}
		seen[n.ID.Value] = i + 1
		nodes = append(nodes, SimNode{ID: n.ID.Value, Lat: n.Latitude.Value, Lon: n.Longitude.Value})
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}
