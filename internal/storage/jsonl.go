// Package storage handles city data persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/netsim/topogen/internal/importer"
	"github.com/netsim/topogen/internal/location"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// cityRecord is the JSONL layout of a city.
type cityRecord struct {
	Name       string   `json:"name"`
	Country    string   `json:"country,omitempty"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Population int64    `json:"population"`
	Density    *float64 `json:"density,omitempty"`
}

func toRecord(l location.Location) cityRecord {
	return cityRecord{
		Name:       l.Name,
		Country:    l.Country,
		Latitude:   l.Lat,
		Longitude:  l.Lon,
		Population: l.Population,
		Density:    l.Density,
	}
}

func (r cityRecord) location() location.Location {
	l := location.New(r.Latitude, r.Longitude, location.RoleCity)
	l.Name = r.Name
	l.Country = r.Country
	l.Population = r.Population
	l.Density = r.Density
	return l
}

// ReadCities reads all cities from a JSONL file.
func ReadCities(path string) ([]location.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening cities file: %w", importer.ErrMalformed, err)
	}
	defer f.Close()

	var cities []location.Location
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var rec cityRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%w: parsing line %d: %v", importer.ErrMalformed, lineNum, err)
		}
		city := rec.location()
		if err := city.Validate(); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", importer.ErrMalformed, lineNum, err)
		}
		cities = append(cities, city)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading cities file: %w", err)
	}

	return cities, nil
}

// WriteCities writes all cities to a JSONL file, replacing existing content.
func WriteCities(path string, cities []location.Location) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating cities file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, c := range cities {
		data, err := json.Marshal(toRecord(c))
		if err != nil {
			return fmt.Errorf("encoding city %d: %w", i, err)
		}

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing city %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing cities file: %w", err)
	}
	return f.Close()
}
