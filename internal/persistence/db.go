// Package persistence provides SQLite-based snapshot storage over the
// component export states.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
	"github.com/HiddenPCOfficial/biotica/internal/resources"
	"github.com/HiddenPCOfficial/biotica/internal/structures"
	"github.com/HiddenPCOfficial/biotica/internal/territory"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// Snapshot bundles every component's export state.
type Snapshot struct {
	Grid       world.State      `json:"grid"`
	Civ        civ.State        `json:"civ"`
	Resources  resources.State  `json:"resources"`
	Structures structures.State `json:"structures"`
	Territory  territory.State  `json:"territory"`
}

// componentCount is the number of payloads in a complete snapshot.
const componentCount = 5

// DB wraps a SQLite connection for snapshot persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		component TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot writes the full snapshot (full replace per component).
func (db *DB) SaveSnapshot(snap Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	components := []struct {
		name    string
		payload any
	}{
		{"grid", snap.Grid},
		{"civ", snap.Civ},
		{"resources", snap.Resources},
		{"structures", snap.Structures},
		{"territory", snap.Territory},
	}
	for _, c := range components {
		data, err := json.Marshal(c.payload)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", c.name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO snapshots (component, payload) VALUES (?, ?)
			 ON CONFLICT(component) DO UPDATE SET payload = excluded.payload`,
			c.name, string(data),
		); err != nil {
			return fmt.Errorf("store %s: %w", c.name, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO world_meta (key, value) VALUES ('last_tick', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprintf("%d", snap.Civ.Tick),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadSnapshot reads the stored snapshot. A partial snapshot is an error;
// the caller must never hydrate incomplete state.
func (db *DB) LoadSnapshot() (Snapshot, error) {
	var snap Snapshot
	load := func(name string, out any) error {
		var payload string
		if err := db.conn.Get(&payload, "SELECT payload FROM snapshots WHERE component = ?", name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		if err := json.Unmarshal([]byte(payload), out); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		return nil
	}
	if err := load("grid", &snap.Grid); err != nil {
		return snap, err
	}
	if err := load("civ", &snap.Civ); err != nil {
		return snap, err
	}
	if err := load("resources", &snap.Resources); err != nil {
		return snap, err
	}
	if err := load("structures", &snap.Structures); err != nil {
		return snap, err
	}
	if err := load("territory", &snap.Territory); err != nil {
		return snap, err
	}
	return snap, nil
}

// HasSnapshot reports whether a complete snapshot is stored.
func (db *DB) HasSnapshot() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM snapshots"); err != nil {
		return false
	}
	return count >= componentCount
}

// GetMeta returns a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SetMeta stores a metadata value.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO world_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
