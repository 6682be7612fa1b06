package repository

import (
	"fmt"

	"notesvc/config"
)

// Dialect holds the SQL text for one database engine.
type Dialect struct {
	Name       string
	schema     string
	insert     string
	selectAll  string
	selectByID string
	deleteAll  string
	deleteByID string
}

var SQLite = Dialect{
	Name:       config.DriverSQLite,
	schema:     `CREATE TABLE IF NOT EXISTS notes (id INTEGER PRIMARY KEY, content TEXT UNIQUE)`,
	insert:     `INSERT INTO notes (content) VALUES (?) RETURNING id, content`,
	selectAll:  `SELECT id, content FROM notes ORDER BY id`,
	selectByID: `SELECT id, content FROM notes WHERE id = ? LIMIT 1`,
	deleteAll:  `DELETE FROM notes`,
	deleteByID: `DELETE FROM notes WHERE id = ?`,
}

var Postgres = Dialect{
	Name:       config.DriverPostgres,
	schema:     `CREATE TABLE IF NOT EXISTS notes (id BIGSERIAL PRIMARY KEY, content TEXT UNIQUE)`,
	insert:     `INSERT INTO notes (content) VALUES ($1) RETURNING id, content`,
	selectAll:  `SELECT id, content FROM notes ORDER BY id`,
	selectByID: `SELECT id, content FROM notes WHERE id = $1 LIMIT 1`,
	deleteAll:  `DELETE FROM notes`,
	deleteByID: `DELETE FROM notes WHERE id = $1`,
}

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return SQLite, nil
	case config.DriverPostgres:
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("no sql dialect for driver %q", driver)
}
