// Package cache stores rendered functions in SQLite, keyed by the content
// hash of the request that produced them.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/abcgen/bytecode"
	"github.com/chazu/abcgen/decompiler"
)

var log = commonlog.GetLogger("abcgen.cache")

// ErrNotFound indicates the requested key is not cached.
var ErrNotFound = errors.New("cache entry not found")

// Request is everything that determines a rendered function. Two requests
// with the same canonical CBOR encoding render identically.
type Request struct {
	Name    string                 `cbor:"1,keyasint"`
	NArgs   int                    `cbor:"2,keyasint"`
	Code    []bytecode.Instruction `cbor:"3,keyasint"`
	Mode    string                 `cbor:"4,keyasint"`
	Dialect string                 `cbor:"5,keyasint"`
	Indent  string                 `cbor:"6,keyasint"`
	Fold    bool                   `cbor:"7,keyasint"`
}

// Key is the SHA-256 of a request's canonical encoding.
type Key [32]byte

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// KeyOf derives the cache key of a request.
func KeyOf(req *Request) (Key, error) {
	data, err := bytecode.MarshalCanonical(req)
	if err != nil {
		return Key{}, fmt.Errorf("encoding cache request: %w", err)
	}
	return sha256.Sum256(data), nil
}

// Entry is a cached result.
type Entry struct {
	Source      string
	Diagnostics []decompiler.Diagnostic
	ASTHash     [32]byte
	Created     time.Time
}

// Store is a SQLite-backed cache. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: the pragma below is per connection, and writes are
	// serialized anyway.
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS rendered (
		key TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		diagnostics BLOB,
		ast_hash TEXT NOT NULL,
		created INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened cache %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores an entry, replacing any previous entry for key.
func (s *Store) Put(key Key, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	diags, err := bytecode.MarshalCanonical(e.Diagnostics)
	if err != nil {
		return fmt.Errorf("encoding diagnostics: %w", err)
	}
	created := e.Created
	if created.IsZero() {
		created = time.Now()
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO rendered (key, source, diagnostics, ast_hash, created) VALUES (?, ?, ?, ?, ?)",
		key.String(), e.Source, diags, hex.EncodeToString(e.ASTHash[:]), created.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}
	return nil
}

// Get retrieves the entry for key, or ErrNotFound.
func (s *Store) Get(key Key) (*Entry, error) {
	var (
		source, astHex string
		diags          []byte
		created        int64
	)
	err := s.db.QueryRow(
		"SELECT source, diagnostics, ast_hash, created FROM rendered WHERE key = ?", key.String(),
	).Scan(&source, &diags, &astHex, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying entry: %w", err)
	}

	e := &Entry{Source: source, Created: time.Unix(0, created)}
	if len(diags) > 0 {
		if err := cbor.Unmarshal(diags, &e.Diagnostics); err != nil {
			return nil, fmt.Errorf("decoding diagnostics: %w", err)
		}
	}
	h, err := hex.DecodeString(astHex)
	if err != nil || len(h) != len(e.ASTHash) {
		return nil, fmt.Errorf("corrupt ast hash for %s", key)
	}
	copy(e.ASTHash[:], h)
	return e, nil
}

// Len returns the number of cached entries.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM rendered").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Purge deletes all entries.
func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM rendered"); err != nil {
		return fmt.Errorf("purging cache: %w", err)
	}
	return nil
}
