package dexbee

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// Handle owns one ephemeral arena. It is the only path to its tables; the
// session that created it is expected to be its sole writer.
type Handle struct {
	name   string
	db     *sql.DB
	schema Schema
	tables map[string]*Table
}

// Connect opens the arena identified by name and ensures its schema exists.
// The arena is an in-memory shared-cache SQLite database: reconnecting under
// the same name within the process reattaches to the same data.
func Connect(name string, schema Schema) (*Handle, error) {
	if name == "" {
		return nil, fmt.Errorf("arena name required")
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(name))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open arena %s: %w", name, err)
	}
	// A single pinned connection keeps the in-memory arena alive for the
	// handle's lifetime and serializes statements.
	db.SetMaxOpenConns(1)

	h := &Handle{
		name:   name,
		db:     db,
		schema: schema,
		tables: make(map[string]*Table, len(schema.Tables)),
	}
	for _, ts := range schema.Tables {
		if err := h.createTable(ts); err != nil {
			db.Close()
			return nil, err
		}
		h.tables[ts.Name] = &Table{db: db, schema: ts}
	}
	return h, nil
}

// Name returns the arena name.
func (h *Handle) Name() string {
	return h.name
}

// Table returns the accessor for a declared table.
func (h *Handle) Table(name string) (*Table, error) {
	t, ok := h.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}

// Tables returns every declared table accessor, in schema order.
func (h *Handle) Tables() []*Table {
	out := make([]*Table, 0, len(h.schema.Tables))
	for _, ts := range h.schema.Tables {
		out = append(out, h.tables[ts.Name])
	}
	return out
}

// Close releases the arena connection. The arena's data survives within the
// process as long as any other handle pins the same name.
func (h *Handle) Close() error {
	return h.db.Close()
}

func (h *Handle) createTable(ts TableSchema) error {
	defs := make([]string, 0, len(ts.Columns)+1)
	for _, c := range ts.Columns {
		def := fmt.Sprintf("%s %s", c.Name, c.Type)
		if c.Name == ts.PrimaryKey {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
	}
	defs = append(defs, fmt.Sprintf("%s TEXT NOT NULL DEFAULT '{}'", docColumn))

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", ts.Name, strings.Join(defs, ", "))
	if _, err := h.db.Exec(ddl); err != nil {
		return fmt.Errorf("create table %s: %w", ts.Name, err)
	}

	for _, idx := range ts.Indexes {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		idxName := fmt.Sprintf("idx_%s_%s", ts.Name, strings.Join(idx.Columns, "_"))
		ddl := fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
			unique, idxName, ts.Name, strings.Join(idx.Columns, ", "))
		if _, err := h.db.Exec(ddl); err != nil {
			return fmt.Errorf("create index %s: %w", idxName, err)
		}
	}
	return nil
}
