package playground

import "github.com/AhamSammich/dexbee-docs/internal/dexbee"

// DatasetVersion identifies the fixed sample dataset. Bump when the seed
// records change so cached arenas are recognizably stale in logs.
const DatasetVersion = "2024-07"

// Schema returns the playground's fixed schema: three tables, each with a
// primary key and at least one secondary index.
func Schema() dexbee.Schema {
	return dexbee.Schema{
		Tables: []dexbee.TableSchema{
			{
				Name:       "customers",
				PrimaryKey: "id",
				Columns: []dexbee.Column{
					{Name: "id", Type: dexbee.Integer},
					{Name: "name", Type: dexbee.Text},
					{Name: "email", Type: dexbee.Text},
				},
				Indexes: []dexbee.Index{
					{Columns: []string{"email"}, Unique: true},
				},
			},
			{
				Name:       "products",
				PrimaryKey: "id",
				Columns: []dexbee.Column{
					{Name: "id", Type: dexbee.Integer},
					{Name: "name", Type: dexbee.Text},
					{Name: "category", Type: dexbee.Text},
					{Name: "price", Type: dexbee.Real},
				},
				Indexes: []dexbee.Index{
					{Columns: []string{"category"}},
				},
			},
			{
				Name:       "orders",
				PrimaryKey: "id",
				Columns: []dexbee.Column{
					{Name: "id", Type: dexbee.Integer},
					{Name: "customerId", Type: dexbee.Integer},
					{Name: "productId", Type: dexbee.Integer},
					{Name: "status", Type: dexbee.Text},
					{Name: "total", Type: dexbee.Real},
				},
				Indexes: []dexbee.Index{
					{Columns: []string{"status"}},
					{Columns: []string{"customerId"}},
				},
			},
		},
	}
}

// seedCustomers, seedProducts and seedOrders are the fixed sample dataset
// every initialize and reset restores.
var seedCustomers = []dexbee.Record{
	{"id": int64(1), "name": "Ada Wong", "email": "ada@example.com"},
	{"id": int64(2), "name": "Ben Ito", "email": "ben@example.com"},
	{"id": int64(3), "name": "Cleo Park", "email": "cleo@example.com"},
}

var seedProducts = []dexbee.Record{
	{"id": int64(1), "name": "Keyboard", "category": "peripherals", "price": 54.99},
	{"id": int64(2), "name": "Monitor", "category": "displays", "price": 189.00},
	{"id": int64(3), "name": "Webcam", "category": "peripherals", "price": 39.50},
	{"id": int64(4), "name": "Dock", "category": "hubs", "price": 120.00},
}

// Order statuses: completed x4, pending x1, cancelled x1.
var seedOrders = []dexbee.Record{
	{"id": int64(1), "customerId": int64(1), "productId": int64(2), "status": "completed", "total": 189.00},
	{"id": int64(2), "customerId": int64(1), "productId": int64(1), "status": "completed", "total": 54.99},
	{"id": int64(3), "customerId": int64(2), "productId": int64(3), "status": "pending", "total": 39.50},
	{"id": int64(4), "customerId": int64(2), "productId": int64(4), "status": "completed", "total": 120.00},
	{"id": int64(5), "customerId": int64(3), "productId": int64(1), "status": "cancelled", "total": 54.99},
	{"id": int64(6), "customerId": int64(3), "productId": int64(3), "status": "completed", "total": 39.50},
}

// seedRecords maps each table to its seed rows.
func seedRecords() map[string][]dexbee.Record {
	return map[string][]dexbee.Record{
		"customers": seedCustomers,
		"products":  seedProducts,
		"orders":    seedOrders,
	}
}
