package dexbee

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// docColumn carries record fields not declared as schema columns.
const docColumn = "doc"

// Record is an open document: declared columns plus arbitrary extra fields.
type Record = map[string]any

// Table is the accessor for one arena table.
type Table struct {
	db     *sql.DB
	schema TableSchema
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.schema.Name
}

// Insert stores one record.
func (t *Table) Insert(ctx context.Context, rec Record) error {
	query, args, err := t.insertStatement(rec)
	if err != nil {
		return err
	}
	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", t.schema.Name, err)
	}
	return nil
}

// InsertMany stores records in a single transaction; none are stored if any
// insert fails.
func (t *Table) InsertMany(ctx context.Context, recs []Record) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", t.schema.Name, err)
	}
	for _, rec := range recs {
		query, args, err := t.insertStatement(rec)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert into %s: %w", t.schema.Name, err)
		}
	}
	return tx.Commit()
}

// All returns every record in primary-key order.
func (t *Table) All(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		t.selectList(), t.schema.Name, t.schema.PrimaryKey)
	return t.query(ctx, query)
}

// Where returns records matching every condition, in primary-key order.
func (t *Table) Where(ctx context.Context, conds ...Condition) ([]Record, error) {
	if len(conds) == 0 {
		return t.All(ctx)
	}

	clauses := make([]string, 0, len(conds))
	var args []any
	for _, c := range conds {
		clause, vals, err := c.compile(t.schema)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, vals...)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s",
		t.selectList(), t.schema.Name, strings.Join(clauses, " AND "), t.schema.PrimaryKey)
	return t.query(ctx, query, args...)
}

// Delete removes every record and reports how many were removed.
func (t *Table) Delete(ctx context.Context) (int64, error) {
	res, err := t.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", t.schema.Name))
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", t.schema.Name, err)
	}
	return res.RowsAffected()
}

// Count reports the number of records.
func (t *Table) Count(ctx context.Context) (int64, error) {
	var n int64
	row := t.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t.schema.Name))
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.schema.Name, err)
	}
	return n, nil
}

func (t *Table) insertStatement(rec Record) (string, []any, error) {
	if rec == nil {
		return "", nil, fmt.Errorf("insert into %s: nil record", t.schema.Name)
	}
	if _, ok := rec[t.schema.PrimaryKey]; !ok {
		return "", nil, fmt.Errorf("insert into %s: record missing primary key %q",
			t.schema.Name, t.schema.PrimaryKey)
	}

	cols := make([]string, 0, len(t.schema.Columns)+1)
	marks := make([]string, 0, len(t.schema.Columns)+1)
	args := make([]any, 0, len(t.schema.Columns)+1)
	extras := Record{}

	for field, value := range rec {
		if _, ok := t.schema.column(field); !ok {
			extras[field] = value
		}
	}
	for _, c := range t.schema.Columns {
		cols = append(cols, c.Name)
		marks = append(marks, "?")
		args = append(args, rec[c.Name])
	}

	blob, err := sonic.Marshal(extras)
	if err != nil {
		return "", nil, fmt.Errorf("insert into %s: %w", t.schema.Name, err)
	}
	cols = append(cols, docColumn)
	marks = append(marks, "?")
	args = append(args, string(blob))

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.schema.Name, strings.Join(cols, ", "), strings.Join(marks, ", "))
	return query, args, nil
}

func (t *Table) selectList() string {
	cols := make([]string, 0, len(t.schema.Columns)+1)
	for _, c := range t.schema.Columns {
		cols = append(cols, c.Name)
	}
	cols = append(cols, docColumn)
	return strings.Join(cols, ", ")
}

func (t *Table) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.schema.Name, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		values := make([]any, len(t.schema.Columns)+1)
		ptrs := make([]any, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.schema.Name, err)
		}

		rec := Record{}
		if blob, ok := values[len(values)-1].(string); ok && blob != "" {
			// Extra fields first so declared columns win on collision.
			_ = sonic.Unmarshal([]byte(blob), &rec)
		} else if blob, ok := values[len(values)-1].([]byte); ok && len(blob) > 0 {
			_ = sonic.Unmarshal(blob, &rec)
		}
		for i, c := range t.schema.Columns {
			rec[c.Name] = normalize(values[i])
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// normalize maps driver byte slices to strings so records compare cleanly.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
