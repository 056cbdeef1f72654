package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/kaezarrex/regularity/internal/store"
	"github.com/kaezarrex/regularity/internal/store/storetest"
)

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	dsn := os.Getenv("REGULARITY_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("REGULARITY_POSTGRES_DSN not set; skipping postgres store integration test")
	}
	if err := Bootstrap(context.Background(), dsn); err != nil {
		t.Fatalf("postgres bootstrap: %v", err)
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db)
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}
