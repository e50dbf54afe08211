package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sagarc03/sigv4auth/database/postgres"
)

var (
	testPool     *pgxpool.Pool
	testDSN      string
	testPoolOnce sync.Once
	testPoolErr  error
	testCleanup  func()
)

func TestMain(m *testing.M) {
	code := m.Run()
	if testCleanup != nil {
		testCleanup()
	}
	os.Exit(code)
}

// getSharedTestDatabase returns a shared database pool for all tests.
// This significantly improves test performance by reusing the same container.
func getSharedTestDatabase(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testPoolErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		testCleanup = func() {
			if testPool != nil {
				testPool.Close()
			}
			_ = pgContainer.Terminate(context.Background())
		}

		testDSN, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testPoolErr = fmt.Errorf("get connection string: %w", err)
			return
		}

		testPool, testPoolErr = pgxpool.New(ctx, testDSN)
	})

	require.NoError(t, testPoolErr)
	return testPool, testDSN
}

// getRandomString generates a random string for unique test identifiers.
func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a repo over a fresh table in the shared database.
func setupTestRepo(t *testing.T) *postgres.Repo {
	t.Helper()

	pool, _ := getSharedTestDatabase(t)
	ctx := context.Background()

	tableName := fmt.Sprintf("keys_%s", getRandomString(t))

	require.NoError(t, postgres.Migrate(ctx, pool, tableName), "failed to migrate")
	t.Cleanup(func() {
		_ = postgres.DropTables(context.Background(), pool, tableName)
	})

	repo, err := postgres.NewRepo(pool, tableName)
	require.NoError(t, err)

	return repo
}
