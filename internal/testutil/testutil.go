// internal/testutil/testutil.go

// Package testutil provides the shared MongoDB test harness and fixture
// builders. Tests that need a live database call SetupTestDB and are
// skipped when no local mongod is reachable.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultURI = "mongodb://localhost:27017"

// SetupTestDB connects to the test MongoDB (MEDIATECA_TEST_MONGO_URI or
// localhost) and returns a uniquely named database that is dropped when
// the test finishes. Skips the test when the server is unreachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MEDIATECA_TEST_MONGO_URI")
	if uri == "" {
		uri = defaultURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongodb unavailable at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongodb unavailable at %s: %v", uri, err)
	}

	var suffix [6]byte
	_, _ = rand.Read(suffix[:])
	db := client.Database("mediateca_test_" + hex.EncodeToString(suffix[:]))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// Ctx returns a context bounded to the remaining test deadline, or ten
// seconds when none is set.
func Ctx(t *testing.T) context.Context {
	t.Helper()
	deadline, ok := t.Deadline()
	if !ok {
		deadline = time.Now().Add(10 * time.Second)
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	t.Cleanup(cancel)
	return ctx
}
