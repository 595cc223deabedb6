package cloudcover

import (
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

// DayCache is a persistent store of fetched daily cloud-cover values, keyed
// by day and position rounded to the half-degree grid POWER resolves at.
type DayCache struct {
	db *sql.DB
}

// OpenDayCache opens (creating if necessary) a sqlite-backed day cache
func OpenDayCache(path string) (*DayCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cloud cover cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cloud cover cache database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS cloud_cover_days (
		day TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		fraction REAL NOT NULL,
		fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (day, lat, lon)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cloud cover cache table: %w", err)
	}

	return &DayCache{db: db}, nil
}

// gridCoord snaps a coordinate to the half-degree grid
func gridCoord(v float64) float64 {
	return math.Round(v*2) / 2
}

// Get looks up a cached fraction for a day and position
func (c *DayCache) Get(day string, lat, lon float64) (float64, bool, error) {
	var fraction float64
	err := c.db.QueryRow(
		`SELECT fraction FROM cloud_cover_days WHERE day = ? AND lat = ? AND lon = ?`,
		day, gridCoord(lat), gridCoord(lon),
	).Scan(&fraction)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return fraction, true, nil
}

// Put stores a fetched fraction for a day and position
func (c *DayCache) Put(day string, lat, lon, fraction float64) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO cloud_cover_days (day, lat, lon, fraction) VALUES (?, ?, ?, ?)`,
		day, gridCoord(lat), gridCoord(lon), fraction,
	)
	return err
}

// Close closes the underlying database
func (c *DayCache) Close() error {
	return c.db.Close()
}
