// Package store provides a sqlite-backed key/value store and the pair of
// Simple nodes that put/get through it, exercising the engine's opaque
// MySqlRef reference variant (spec §3: "the engine only compares these for
// equality of tag; it never inspects contents"). Grounded in the pack's
// sqlite3 store package: a single *sql.DB, WAL mode, one open connection.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/value"
)

// Store is a minimal key/value table backing the Put/Get node pair.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and ensures
// the backing table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set journal mode: %w", err)
	}
	db.SetMaxOpenConns(1)

	const schema = `CREATE TABLE IF NOT EXISTS flowengine_kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutTypeID is the registry type id for PutNode.
const PutTypeID = "store.put"

// PutNode writes its "key"/"value" string inputs to the store and returns
// an opaque MySqlRef handle (the key itself — cheap to duplicate, per spec
// §4.8) that GetNode can later resolve.
type PutNode struct {
	node.Base
	node.NoopLifecycle
	store *Store
}

// NewPutNode builds a PutNode bound to store.
func NewPutNode(store *Store) func(id, name string) (node.Node, error) {
	return func(id, name string) (node.Node, error) {
		return &PutNode{
			Base: node.NewBase(id, name, "writes a key/value pair to the store", node.Simple,
				[]port.Port{
					port.New("key", value.Simple(value.String)).WithRequired(true),
					port.New("value", value.Simple(value.String)).WithRequired(true),
				},
				[]port.Port{port.New("ref", value.Simple(value.MySqlRef))},
			),
			store: store,
		}, nil
	}
}

func (n *PutNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	key, val := in["key"].Str, in["value"].Str
	const upsert = `INSERT INTO flowengine_kv(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := n.store.db.ExecContext(ctx, upsert, key, val); err != nil {
		return nil, fmt.Errorf("store: put %q: %w", key, err)
	}
	return node.Values{"ref": value.NewRef(value.MySqlRef, key)}, nil
}

// GetTypeID is the registry type id for GetNode.
const GetTypeID = "store.get"

// GetNode resolves a MySqlRef handle back to its stored value.
type GetNode struct {
	node.Base
	node.NoopLifecycle
	store *Store
}

// NewGetNode builds a GetNode bound to store.
func NewGetNode(store *Store) func(id, name string) (node.Node, error) {
	return func(id, name string) (node.Node, error) {
		return &GetNode{
			Base: node.NewBase(id, name, "reads a value by its store reference", node.Simple,
				[]port.Port{port.New("ref", value.Simple(value.MySqlRef)).WithRequired(true)},
				[]port.Port{port.New("value", value.Simple(value.String))},
			),
			store: store,
		}, nil
	}
}

func (n *GetNode) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	key := in["ref"].Ref
	var val string
	err := n.store.db.QueryRowContext(ctx, "SELECT value FROM flowengine_kv WHERE key = ?", key).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: no value stored for ref %q", key)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %q: %w", key, err)
	}
	return node.Values{"value": value.NewString(val)}, nil
}
