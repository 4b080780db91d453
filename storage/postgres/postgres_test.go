package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"

	"github.com/kouellette/rcv/storage/postgres"
	"github.com/kouellette/rcv/storage/storagetest"
)

func startPostgres(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=password",
			"POSTGRES_DB=rcv",
		},
	})
	if err != nil {
		t.Fatalf("could not start postgres container: %s", err)
	}

	return resource.GetPort("5432/tcp"), func() {
		if err := pool.Purge(resource); err != nil {
			t.Fatalf("could not purge postgres container: %s", err)
		}
	}
}

func TestBackendConformsToStorageContract(t *testing.T) {
	if testing.Short() {
		t.Skip("skip postgres test")
	}

	ctx := context.Background()
	port, cleanup := startPostgres(t)
	defer cleanup()

	addr := fmt.Sprintf("user=postgres password='password' host=localhost port=%s dbname=rcv", port)
	backend, err := postgres.New(ctx, addr)
	if err != nil {
		t.Fatalf("creating postgres backend: %v", err)
	}
	defer backend.Close()

	backend.Wait(ctx, t.Logf)
	if err := backend.Migrate(ctx); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	storagetest.Backend(t, backend)
}
