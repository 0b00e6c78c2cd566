package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/netsim/topogen/internal/location"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite city database connection.
type DB struct {
	db *sql.DB
}

// selectCityFields contains the standard field list for SELECT queries.
const selectCityFields = `name, country, latitude, longitude, population, density`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	// Create schema if needed
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// ErrNoDatabase is returned when a city database to read from does not exist.
var ErrNoDatabase = errors.New("city database not found")

// OpenExistingDB opens a database that must already exist, so reading never
// creates an empty one as a side effect.
func OpenExistingDB(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDatabase, path)
	}
	return OpenDB(path)
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS cities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			country TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			population INTEGER NOT NULL DEFAULT 0,
			density REAL
		);

		CREATE INDEX IF NOT EXISTS idx_cities_population ON cities(population);
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the cities table and inserts cities in one transaction.
func (d *DB) Rebuild(cities []location.Location) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cities"); err != nil {
		return 0, fmt.Errorf("clearing cities table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO cities (name, country, latitude, longitude, population, density)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing cities insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cities {
		var density sql.NullFloat64
		if c.Density != nil {
			density = sql.NullFloat64{Float64: *c.Density, Valid: true}
		}
		if _, err := stmt.Exec(c.Name, nullableString(c.Country), c.Lat, c.Lon, c.Population, density); err != nil {
			return 0, fmt.Errorf("inserting city %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing cities: %w", err)
	}
	return len(cities), nil
}

// LoadCities returns every city with at least minPopulation inhabitants in
// insertion order.
func (d *DB) LoadCities(minPopulation int64) ([]location.Location, error) {
	rows, err := d.db.Query(`SELECT `+selectCityFields+` FROM cities WHERE population >= ? ORDER BY id`, minPopulation)
	if err != nil {
		return nil, fmt.Errorf("querying cities: %w", err)
	}
	defer rows.Close()

	var cities []location.Location
	for rows.Next() {
		var (
			name     string
			country  sql.NullString
			lat, lon float64
			pop      int64
			density  sql.NullFloat64
		)
		if err := rows.Scan(&name, &country, &lat, &lon, &pop, &density); err != nil {
			return nil, fmt.Errorf("scanning city: %w", err)
		}
		city := location.New(lat, lon, location.RoleCity)
		city.Name = name
		city.Country = country.String
		city.Population = pop
		if density.Valid {
			d := density.Float64
			city.Density = &d
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cities: %w", err)
	}
	return cities, nil
}

// Count returns the number of stored cities.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM cities").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cities: %w", err)
	}
	return n, nil
}

// nullableString converts an empty string to NULL.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
