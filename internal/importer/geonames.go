package importer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/netsim/topogen/internal/geo"
	"github.com/netsim/topogen/internal/location"
)

// GeoNames dump column positions (tab separated, 19 columns).
const (
	geoNamesColumns    = 19
	geoNamesName       = 1
	geoNamesLatitude   = 4
	geoNamesLongitude  = 5
	geoNamesFeature    = 6
	geoNamesCountry    = 8
	geoNamesPopulation = 14
)

// GeoNamesStats summarises a GeoNames import.
type GeoNamesStats struct {
	Lines   int
	Kept    int
	Skipped int // non-populated-place features and rows below the population floor
}

// ParseGeoNames reads populated places from a GeoNames dump (allCountries.txt or
// citiesN.txt). Rows below minPopulation are skipped; a row with the wrong column
// count or unparsable coordinates fails the import.
func ParseGeoNames(r io.Reader, minPopulation int64) ([]location.Location, GeoNamesStats, error) {
	var (
		cities []location.Location
		stats  GeoNamesStats
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		stats.Lines++
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != geoNamesColumns {
			return nil, stats, fmt.Errorf("%w: line %d: expected %d columns, got %d",
				ErrMalformed, stats.Lines, geoNamesColumns, len(fields))
		}
		if fields[geoNamesFeature] != "P" {
			stats.Skipped++
			continue
		}

		lat, errLat := strconv.ParseFloat(fields[geoNamesLatitude], 64)
		lon, errLon := strconv.ParseFloat(fields[geoNamesLongitude], 64)
		if errLat != nil || errLon != nil || !geo.ValidCoordinate(lat, lon) {
			return nil, stats, fmt.Errorf("%w: line %d: bad coordinate %q, %q",
				ErrMalformed, stats.Lines, fields[geoNamesLatitude], fields[geoNamesLongitude])
		}
		pop, err := strconv.ParseInt(fields[geoNamesPopulation], 10, 64)
		if err != nil {
			pop = 0
		}
		if pop < minPopulation {
			stats.Skipped++
			continue
		}

		city := location.New(lat, lon, location.RoleCity)
		city.Name = fields[geoNamesName]
		city.Country = fields[geoNamesCountry]
		city.Population = pop
		cities = append(cities, city)
		stats.Kept++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("reading geonames dump: %w", err)
	}
	return cities, stats, nil
}
