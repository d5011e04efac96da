package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/remedia/remedia/internal/domain/repertory"
	"github.com/remedia/remedia/internal/platform/db"
)

// testDB holds the shared database infrastructure for integration tests.
type testDB struct {
	Pool    *pgxpool.Pool
	ConnStr string
}

// globalDB is the package-level test database, initialized once in TestMain.
var globalDB *testDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr, cleanup, err := startPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}

	if _, err := db.NewMigrator(pool, findMigrationsDir()).Up(ctx); err != nil {
		pool.Close()
		cleanup()
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	globalDB = &testDB{Pool: pool, ConnStr: connStr}
	code := m.Run()
	pool.Close()
	cleanup()
	os.Exit(code)
}

// findMigrationsDir locates the migrations directory relative to this test file.
func findMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	// test/integration -> repo root
	return filepath.Join(dir, "..", "..", "migrations")
}

// uniqueCode generates a unique reference code so tests sharing the database
// never collide on unique columns.
func uniqueCode(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.NewString()[:8]))
}

func createTestSymptom(t *testing.T, ctx context.Context, code, name, category string, synonyms []string) *repertory.Symptom {
	t.Helper()
	s := &repertory.Symptom{Code: code, Name: name, Category: category, Synonyms: synonyms}
	if err := repertory.NewSymptomRepoPG(globalDB.Pool).Create(ctx, s); err != nil {
		t.Fatalf("create test symptom %s: %v", code, err)
	}
	return s
}

func createTestRubric(t *testing.T, ctx context.Context, rep, chapter, text string, linked []string) *repertory.Rubric {
	t.Helper()
	r := &repertory.Rubric{Repertory: rep, Chapter: chapter, Text: text, LinkedSymptoms: linked}
	if err := repertory.NewRubricRepoPG(globalDB.Pool).Create(ctx, r); err != nil {
		t.Fatalf("create test rubric %q: %v", text, err)
	}
	return r
}

func createTestRemedy(t *testing.T, ctx context.Context, name string) *repertory.Remedy {
	t.Helper()
	r := &repertory.Remedy{Name: name}
	if err := repertory.NewRemedyRepoPG(globalDB.Pool).Create(ctx, r); err != nil {
		t.Fatalf("create test remedy %s: %v", name, err)
	}
	return r
}

func createTestGrade(t *testing.T, ctx context.Context, rubricID, remedyID uuid.UUID, grade int, rep string) *repertory.RubricRemedy {
	t.Helper()
	g := &repertory.RubricRemedy{RubricID: rubricID, RemedyID: remedyID, Grade: grade, Repertory: rep}
	if err := repertory.NewGradeRepoPG(globalDB.Pool).Create(ctx, g); err != nil {
		t.Fatalf("create test grade: %v", err)
	}
	return g
}
