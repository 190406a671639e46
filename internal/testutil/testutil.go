// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mdemena/lists-sharing-sub000/internal/db"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
)

// TestDB creates a migrated test database connection and returns a cleanup
// function. Uses the TEST_DATABASE_URL environment variable; the test is
// skipped when it is not set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := db.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)

	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	// Delete in order to respect foreign keys
	pool.Exec(ctx, "DELETE FROM list_shares")
	pool.Exec(ctx, "DELETE FROM list_items")
	pool.Exec(ctx, "DELETE FROM lists")
	pool.Exec(ctx, "DELETE FROM profiles")
	pool.Exec(ctx, "DELETE FROM users")
}

// CreateTestUser creates a password user with a matching profile.
func CreateTestUser(t *testing.T, database *db.DB, email, displayName string) *models.User {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Email: email, Provider: models.ProviderPassword}
	if err := database.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	profile := &models.Profile{ID: user.ID, Email: email, DisplayName: displayName}
	if err := database.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}

	return user
}

// CreateTestList creates a list owned by owner.
func CreateTestList(t *testing.T, database *db.DB, owner *models.User, name string) *models.List {
	t.Helper()

	list := &models.List{OwnerID: owner.ID, Name: name}
	if err := database.CreateList(context.Background(), list); err != nil {
		t.Fatalf("failed to create test list: %v", err)
	}

	return list
}
