package simtopo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netsim/topogen/internal/importer"
	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/topology"
)

func TestAttach(t *testing.T) {
	g := topology.New([]location.Location{
		location.New(52.52, 13.40, location.RoleCity), // Berlin
		location.New(48.85, 2.35, location.RoleCity),  // Paris
		location.New(40.71, -74.0, location.RoleCity), // New York
	})
	require.NoError(t, g.AddEdge(0, 1, topology.KindGeometric))
	before := g.Edges()

	got, err := Attach(g, []importer.SimNode{
		{ID: 10, Lat: 50.11, Lon: 8.68},   // Frankfurt
		{ID: 11, Lat: 42.36, Lon: -71.06}, // Boston
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].NodeID)
	assert.InDelta(t, 424, got[0].DistanceKm, 10)
	assert.Equal(t, 2, got[1].NodeID)
	assert.Equal(t, before, g.Edges())
}

func TestAttachErrors(t *testing.T) {
	empty := topology.New(nil)
	_, err := Attach(empty, []importer.SimNode{{ID: 1}})
	assert.ErrorIs(t, err, ErrEmptyTopology)

	got, err := Attach(empty, nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	g := topology.New([]location.Location{location.New(0, 0, location.RoleCity)})
	_, err = Attach(g, []importer.SimNode{{ID: 1}, {ID: 1, Lat: 1}})
	assert.ErrorIs(t, err, importer.ErrMalformed)

	_, err = Attach(g, []importer.SimNode{{ID: 2, Lat: 100}})
	assert.ErrorIs(t, err, importer.ErrMalformed)
}
