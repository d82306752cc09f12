package dexbee

import (
	"fmt"
	"regexp"
)

// ColumnType is the declared storage type of a schema column.
type ColumnType string

const (
	Text    ColumnType = "TEXT"
	Integer ColumnType = "INTEGER"
	Real    ColumnType = "REAL"
)

// Column declares a natively stored, queryable record field.
type Column struct {
	Name string
	Type ColumnType
}

// Index declares a secondary index over declared columns.
type Index struct {
	Columns []string
	Unique  bool
}

// TableSchema declares one table: a primary key column, further declared
// columns, and secondary indexes.
type TableSchema struct {
	Name       string
	PrimaryKey string
	Columns    []Column
	Indexes    []Index
}

// Schema declares the tables of one arena.
type Schema struct {
	Tables []TableSchema
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate rejects malformed or unsafe schema declarations before any of
// their names are interpolated into DDL.
func (s Schema) Validate() error {
	if len(s.Tables) == 0 {
		return fmt.Errorf("schema declares no tables")
	}
	for _, t := range s.Tables {
		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t TableSchema) validate() error {
	if !identifierRe.MatchString(t.Name) {
		return fmt.Errorf("invalid table name %q", t.Name)
	}
	if t.PrimaryKey == "" {
		return fmt.Errorf("table %s has no primary key", t.Name)
	}
	declared := map[string]bool{}
	for _, c := range t.Columns {
		if !identifierRe.MatchString(c.Name) {
			return fmt.Errorf("table %s: invalid column name %q", t.Name, c.Name)
		}
		if declared[c.Name] {
			return fmt.Errorf("table %s: duplicate column %q", t.Name, c.Name)
		}
		declared[c.Name] = true
	}
	if !declared[t.PrimaryKey] {
		return fmt.Errorf("table %s: primary key %q is not a declared column", t.Name, t.PrimaryKey)
	}
	for _, idx := range t.Indexes {
		if len(idx.Columns) == 0 {
			return fmt.Errorf("table %s: index declares no columns", t.Name)
		}
		for _, col := range idx.Columns {
			if !declared[col] {
				return fmt.Errorf("table %s: index references undeclared column %q", t.Name, col)
			}
		}
	}
	return nil
}

// column looks up a declared column by name.
func (t TableSchema) column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
