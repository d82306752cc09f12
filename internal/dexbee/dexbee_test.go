package dexbee

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		Tables: []TableSchema{
			{
				Name:       "orders",
				PrimaryKey: "id",
				Columns: []Column{
					{Name: "id", Type: Integer},
					{Name: "status", Type: Text},
					{Name: "total", Type: Real},
				},
				Indexes: []Index{
					{Columns: []string{"status"}},
				},
			},
		},
	}
}

// Arena names are process-global; derive unique ones per test.
func arena(t *testing.T) string {
	return fmt.Sprintf("test-%s", t.Name())
}

func seedOrders(t *testing.T, orders *Table) {
	t.Helper()
	err := orders.InsertMany(context.Background(), []Record{
		{"id": int64(1), "status": "completed", "total": 10.0},
		{"id": int64(2), "status": "pending", "total": 25.0},
		{"id": int64(3), "status": "completed", "total": 40.0},
	})
	require.NoError(t, err)
}

func TestConnectRejectsInvalidSchema(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
	}{
		{"no tables", Schema{}},
		{"bad table name", Schema{Tables: []TableSchema{{Name: "orders; DROP", PrimaryKey: "id"}}}},
		{"missing primary key", Schema{Tables: []TableSchema{{Name: "orders"}}}},
		{
			"primary key not declared",
			Schema{Tables: []TableSchema{{
				Name:       "orders",
				PrimaryKey: "id",
				Columns:    []Column{{Name: "status", Type: Text}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Connect(arena(t), tt.schema)
			assert.Error(t, err)
		})
	}
}

func TestInsertAllRoundTrip(t *testing.T) {
	h, err := Connect(arena(t), testSchema())
	require.NoError(t, err)
	defer h.Close()

	orders, err := h.Table("orders")
	require.NoError(t, err)

	// Extra, undeclared fields ride along in the document blob.
	err = orders.Insert(context.Background(), Record{
		"id": int64(1), "status": "pending", "total": 9.5, "note": "gift wrap",
	})
	require.NoError(t, err)

	recs, err := orders.All(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1), recs[0]["id"])
	assert.Equal(t, "pending", recs[0]["status"])
	assert.Equal(t, 9.5, recs[0]["total"])
	assert.Equal(t, "gift wrap", recs[0]["note"])
}

func TestAllReturnsPrimaryKeyOrder(t *testing.T) {
	h, err := Connect(arena(t), testSchema())
	require.NoError(t, err)
	defer h.Close()

	orders, _ := h.Table("orders")
	require.NoError(t, orders.InsertMany(context.Background(), []Record{
		{"id": int64(3), "status": "a", "total": 1.0},
		{"id": int64(1), "status": "b", "total": 1.0},
		{"id": int64(2), "status": "c", "total": 1.0},
	}))

	recs, err := orders.All(context.Background())
	require.NoError(t, err)
	ids := []any{recs[0]["id"], recs[1]["id"], recs[2]["id"]}
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, ids)
}

func TestWhereConditions(t *testing.T) {
	h, err := Connect(arena(t), testSchema())
	require.NoError(t, err)
	defer h.Close()

	orders, _ := h.Table("orders")
	seedOrders(t, orders)
	ctx := context.Background()

	completed, err := orders.Where(ctx, Eq("status", "completed"))
	require.NoError(t, err)
	assert.Len(t, completed, 2)

	expensive, err := orders.Where(ctx, Gt("total", 20))
	require.NoError(t, err)
	assert.Len(t, expensive, 2)

	both, err := orders.Where(ctx, And(Eq("status", "completed"), Gt("total", 20)))
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, int64(3), both[0]["id"])

	either, err := orders.Where(ctx, Or(Eq("status", "pending"), Gt("total", 30)))
	require.NoError(t, err)
	assert.Len(t, either, 2)
}

func TestWhereOnUndeclaredFieldUsesDocument(t *testing.T) {
	h, err := Connect(arena(t), testSchema())
	require.NoError(t, err)
	defer h.Close()

	orders, _ := h.Table("orders")
	ctx := context.Background()
	require.NoError(t, orders.Insert(ctx, Record{"id": int64(1), "status": "pending", "total": 1.0, "region": "eu"}))
	require.NoError(t, orders.Insert(ctx, Record{"id": int64(2), "status": "pending", "total": 1.0, "region": "us"}))

	recs, err := orders.Where(ctx, Eq("region", "eu"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1), recs[0]["id"])
}

func TestDeleteReturnsCount(t *testing.T) {
	h, err := Connect(arena(t), testSchema())
	require.NoError(t, err)
	defer h.Close()

	orders, _ := h.Table("orders")
	seedOrders(t, orders)

	n, err := orders.Delete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	recs, err := orders.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestInsertManyIsAtomic(t *testing.T) {
	h, err := Connect(arena(t), testSchema())
	require.NoError(t, err)
	defer h.Close()

	orders, _ := h.Table("orders")
	ctx := context.Background()

	// Duplicate primary key on the second record fails the whole batch.
	err = orders.InsertMany(ctx, []Record{
		{"id": int64(1), "status": "pending", "total": 1.0},
		{"id": int64(1), "status": "pending", "total": 2.0},
	})
	require.Error(t, err)

	n, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestInsertRequiresPrimaryKey(t *testing.T) {
	h, err := Connect(arena(t), testSchema())
	require.NoError(t, err)
	defer h.Close()

	orders, _ := h.Table("orders")
	err = orders.Insert(context.Background(), Record{"status": "pending"})
	assert.Error(t, err)
}

func TestReconnectSameArenaSeesData(t *testing.T) {
	name := arena(t)

	h1, err := Connect(name, testSchema())
	require.NoError(t, err)
	orders, _ := h1.Table("orders")
	seedOrders(t, orders)

	h2, err := Connect(name, testSchema())
	require.NoError(t, err)
	defer h2.Close()
	defer h1.Close()

	orders2, _ := h2.Table("orders")
	recs, err := orders2.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestUnknownTable(t *testing.T) {
	h, err := Connect(arena(t), testSchema())
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Table("customers")
	assert.Error(t, err)
}

func TestConditionRejectsInvalidField(t *testing.T) {
	h, err := Connect(arena(t), testSchema())
	require.NoError(t, err)
	defer h.Close()

	orders, _ := h.Table("orders")
	_, err = orders.Where(context.Background(), Eq("status; DROP TABLE orders", "x"))
	assert.Error(t, err)
}
