package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func TestStubDBUpsertsAndQueriesRows(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	insert := "INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload"
	for _, payload := range []string{`[1]`, `[2]`} {
		if _, err := conn.ExecContext(ctx, insert, []driver.NamedValue{{Value: "people"}, {Value: []byte(payload)}}); err != nil {
			t.Fatalf("ExecContext insert: %v", err)
		}
	}
	if len(conn.Tables["state"]) != 1 {
		t.Fatalf("expected upsert to keep one row, got %v", conn.Tables["state"])
	}

	rows, err := conn.QueryContext(ctx, "SELECT bucket, payload FROM state", nil)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	defer func() { _ = rows.Close() }()

	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if dest[0] != "people" || string(dest[1].([]byte)) != `[2]` {
		t.Fatalf("unexpected row values: %v", dest)
	}
}

func TestStubDBRejectsUnparseableStatements(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	if _, err := conn.ExecContext(ctx, "INSERT INTO broken VALUES", nil); err == nil {
		t.Fatalf("expected insert parse error")
	}
	if _, err := conn.QueryContext(ctx, "UPDATE state SET x=1", nil); err == nil {
		t.Fatalf("expected select parse error")
	}
}
