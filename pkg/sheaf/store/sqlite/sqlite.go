package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/cognicore/sheaf/pkg/sheaf/store"
	"github.com/cognicore/sheaf/pkg/sheaf/tree"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection and writers serialize anyway.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS trees (
	id TEXT PRIMARY KEY,
	topic TEXT UNIQUE NOT NULL,
	saved_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
	tree_id TEXT NOT NULL,
	node_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	divergence REAL NOT NULL,
	cover INTEGER NOT NULL,
	PRIMARY KEY(tree_id, node_id),
	FOREIGN KEY(tree_id) REFERENCES trees(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS node_partitions (
	tree_id TEXT NOT NULL,
	node_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	PRIMARY KEY(tree_id, node_id, position),
	FOREIGN KEY(tree_id) REFERENCES trees(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS edges (
	tree_id TEXT NOT NULL,
	parent INTEGER NOT NULL,
	name TEXT NOT NULL,
	child INTEGER NOT NULL,
	weight REAL NOT NULL,
	PRIMARY KEY(tree_id, parent, name),
	FOREIGN KEY(tree_id) REFERENCES trees(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS gaps (
	tree_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	node TEXT NOT NULL,
	cover TEXT,
	depth INTEGER NOT NULL,
	PRIMARY KEY(tree_id, position),
	FOREIGN KEY(tree_id) REFERENCES trees(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_edges_child ON edges(tree_id, child);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveTree replaces the stored tree for t.Topic in one transaction. A
// tree without an ID is given a fresh ULID, written back to t once the
// transaction commits.
func (s *sqliteStore) SaveTree(ctx context.Context, t *tree.Tree) error {
	if err := t.Validate(); err != nil {
		return err
	}
	id := t.ID
	if id == "" {
		id = ulid.Make().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Child rows go first so a reused connection without foreign_keys
	// still leaves no orphans behind.
	for _, table := range []string{"gaps", "edges", "node_partitions", "nodes"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE tree_id IN (SELECT id FROM trees WHERE topic = ? OR id = ?)`,
			t.Topic, id); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM trees WHERE topic = ? OR id = ?`, t.Topic, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trees (id, topic, saved_at) VALUES (?, ?, ?)`,
		id, t.Topic, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := insertNodes(ctx, tx, id, t); err != nil {
		return err
	}
	if err := insertGaps(ctx, tx, id, t.Gaps); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	t.ID = id
	return nil
}

func insertNodes(ctx context.Context, tx *sql.Tx, treeID string, t *tree.Tree) error {
	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (tree_id, node_id, name, divergence, cover) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()
	partStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO node_partitions (tree_id, node_id, position, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer partStmt.Close()
	edgeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (tree_id, parent, name, child, weight) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for _, n := range t.Nodes {
		if _, err := nodeStmt.ExecContext(ctx, treeID, int(n.ID), n.Name, n.Divergence, int(n.Cover)); err != nil {
			return err
		}
		for i, p := range n.Partitions {
			if _, err := partStmt.ExecContext(ctx, treeID, int(n.ID), i, p); err != nil {
				return err
			}
		}
		for _, name := range t.ChildNames(n.ID) {
			e := n.Children[name]
			if _, err := edgeStmt.ExecContext(ctx, treeID, int(n.ID), name, int(e.Child), e.Weight); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertGaps(ctx context.Context, tx *sql.Tx, treeID string, gaps []tree.Gap) error {
	if len(gaps) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO gaps (tree_id, position, node, cover, depth) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, g := range gaps {
		if _, err := stmt.ExecContext(ctx, treeID, i, g.Node, g.Cover, g.Depth); err != nil {
			return err
		}
	}
	return nil
}

// LoadTree rebuilds the arena for topic and checks its invariants.
func (s *sqliteStore) LoadTree(ctx context.Context, topic string) (*tree.Tree, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM trees WHERE topic = ?`, topic).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tree %q: %w", topic, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	t := &tree.Tree{ID: id, Topic: topic}
	if err := s.loadNodes(ctx, t); err != nil {
		return nil, err
	}
	if err := s.loadPartitions(ctx, t); err != nil {
		return nil, err
	}
	if err := s.loadEdges(ctx, t); err != nil {
		return nil, err
	}
	if err := s.loadGaps(ctx, t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("load tree %q: %w", topic, err)
	}
	return t, nil
}

func (s *sqliteStore) loadNodes(ctx context.Context, t *tree.Tree) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT node_id, name, divergence, cover FROM nodes WHERE tree_id = ? ORDER BY node_id`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var n tree.Node
		var id, cover int
		if err := rows.Scan(&id, &n.Name, &n.Divergence, &cover); err != nil {
			return err
		}
		n.ID = tree.NodeID(id)
		n.Cover = tree.NodeID(cover)
		n.Children = make(map[string]tree.Edge)
		t.Nodes = append(t.Nodes, n)
	}
	return rows.Err()
}

func (s *sqliteStore) loadPartitions(ctx context.Context, t *tree.Tree) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT node_id, text FROM node_partitions WHERE tree_id = ? ORDER BY node_id, position`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var text string
		if err := rows.Scan(&id, &text); err != nil {
			return err
		}
		n := t.Node(tree.NodeID(id))
		if n == nil {
			return fmt.Errorf("partition for missing node %d in tree %q", id, t.Topic)
		}
		n.Partitions = append(n.Partitions, text)
	}
	return rows.Err()
}

func (s *sqliteStore) loadEdges(ctx context.Context, t *tree.Tree) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parent, name, child, weight FROM edges WHERE tree_id = ?`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var parent, child int
		var name string
		var weight float64
		if err := rows.Scan(&parent, &name, &child, &weight); err != nil {
			return err
		}
		n := t.Node(tree.NodeID(parent))
		if n == nil {
			return fmt.Errorf("edge from missing node %d in tree %q", parent, t.Topic)
		}
		n.Children[name] = tree.Edge{Child: tree.NodeID(child), Weight: weight}
	}
	return rows.Err()
}

func (s *sqliteStore) loadGaps(ctx context.Context, t *tree.Tree) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT node, COALESCE(cover, ''), depth FROM gaps WHERE tree_id = ? ORDER BY position`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g tree.Gap
		if err := rows.Scan(&g.Node, &g.Cover, &g.Depth); err != nil {
			return err
		}
		t.Gaps = append(t.Gaps, g)
	}
	return rows.Err()
}

// ListTopics returns stored topics in name order.
func (s *sqliteStore) ListTopics(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT topic FROM trees ORDER BY topic`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}
