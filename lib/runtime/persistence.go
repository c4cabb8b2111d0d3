package runtime

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/usecode/vm"
)

// ErrValueNotFound indicates the requested value isn't stored
var ErrValueNotFound = errors.New("value not found")

// Store keeps named usecode values in SQLite using the vm save format.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// OpenStore opens (creating if needed) the value store at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Create table if needed
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS usecode_values (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put saves v under name, replacing any previous value. Values holding
// object pointers or class values cannot be stored.
func (s *Store) Put(name string, v vm.Value) error {
	var buf bytes.Buffer
	if err := v.Save(&buf); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO usecode_values (name, data) VALUES (?, ?)",
		name, buf.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}
	return nil
}

// Get restores the value stored under name.
func (s *Store) Get(name string) (vm.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow("SELECT data FROM usecode_values WHERE name = ?", name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vm.Value{}, ErrValueNotFound
		}
		return vm.Value{}, fmt.Errorf("querying %s: %w", name, err)
	}

	var v vm.Value
	if err := v.Restore(bytes.NewReader(data)); err != nil {
		return vm.Value{}, fmt.Errorf("restoring %s: %w", name, err)
	}
	return v, nil
}

// Delete removes the value stored under name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM usecode_values WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrValueNotFound
	}
	return nil
}

// Names returns the stored value names in sorted order.
func (s *Store) Names() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name FROM usecode_values ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing values: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadAll restores every stored value. Loading is best effort: rows that
// fail to restore are logged and skipped, and their names returned in
// skipped so the caller can decide whether the load is usable.
func (s *Store) LoadAll() (vals map[string]vm.Value, skipped []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name, data FROM usecode_values ORDER BY name")
	if err != nil {
		return nil, nil, fmt.Errorf("loading values: %w", err)
	}
	defer rows.Close()

	vals = make(map[string]vm.Value)
	for rows.Next() {
		var name string
		var data []byte
		if err := rows.Scan(&name, &data); err != nil {
			return nil, nil, fmt.Errorf("scanning value: %w", err)
		}
		var v vm.Value
		if err := v.Restore(bytes.NewReader(data)); err != nil {
			log.Warningf("skipping stored value %s: %v", name, err)
			skipped = append(skipped, name)
			continue
		}
		vals[name] = v
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return vals, skipped, nil
}
