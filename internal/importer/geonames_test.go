package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/netsim/topogen/internal/location"
)

func geoNamesRow(name, lat, lon, feature, country, pop string) string {
	f := make([]string, geoNamesColumns)
	f[0] = "1"
	f[geoNamesName] = name
	f[geoNamesLatitude] = lat
	f[geoNamesLongitude] = lon
	f[geoNamesFeature] = feature
	f[geoNamesCountry] = country
	f[geoNamesPopulation] = pop
	return strings.Join(f, "\t")
}

func TestParseGeoNames(t *testing.T) {
	dump := strings.Join([]string{
		geoNamesRow("Berlin", "52.52437", "13.41053", "P", "DE", "3426354"),
		geoNamesRow("Zugspitze", "47.42", "10.98", "T", "DE", "0"),
		geoNamesRow("Tinyville", "50.0", "10.0", "P", "DE", "120"),
		"",
		geoNamesRow("Paris", "48.85341", "2.3488", "P", "FR", "2138551"),
	}, "\n")

	cities, stats, err := ParseGeoNames(strings.NewReader(dump), 1000)
	if err != nil {
		t.Fatalf("ParseGeoNames() error = %v", err)
	}
	if len(cities) != 2 {
		t.Fatalf("got %d cities, want 2", len(cities))
	}
	if stats.Kept != 2 || stats.Skipped != 2 {
		t.Errorf("stats = %+v", stats)
	}

	berlin := cities[0]
	if berlin.Name != "Berlin" || berlin.Country != "DE" || berlin.Population != 3426354 {
		t.Errorf("berlin = %+v", berlin)
	}
	if berlin.Role != location.RoleCity || berlin.ID != location.Unassigned {
		t.Errorf("berlin role/id = %v/%d", berlin.Role, berlin.ID)
	}
}

func TestParseGeoNames_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"short row", "1\tBerlin\t52.5"},
		{"bad latitude", geoNamesRow("X", "north", "13", "P", "DE", "5000")},
		{"out of range", geoNamesRow("X", "95", "13", "P", "DE", "5000")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseGeoNames(strings.NewReader(tt.input), 0)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("ParseGeoNames() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestSampleCities(t *testing.T) {
	var cities []location.Location
	for i := 0; i < 50; i++ {
		c := location.New(float64(i), 0, location.RoleCity)
		c.Population = int64(i)
		cities = append(cities, c)
	}

	a := SampleCities(cities, 10, 7)
	b := SampleCities(cities, 10, 7)
	if len(a) != 10 {
		t.Fatalf("got %d cities, want 10", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample differs at %d for the same seed", i)
		}
		if i > 0 && a[i].Population <= a[i-1].Population {
			t.Errorf("sample must keep input order")
		}
	}

	if all := SampleCities(cities, 0, 7); len(all) != 50 {
		t.Errorf("n=0 should keep everything, got %d", len(all))
	}
}
