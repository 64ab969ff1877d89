// CLI tool to run pending database migrations.
// Checks the migrations table to skip already-applied files and wraps each
// migration + record insert in a single transaction.
// Usage: go run ./cmd/migrate [--dir db] [--dry-run] (from the repo root)
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// migrationPrefix is the YYYY-MM-DD-NNN- ordering prefix of a migration file.
var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

var (
	migrationsDir string
	dryRun        bool
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Apply pending SQL migrations to DB_URL",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := migrationFiles(migrationsDir)
		if err != nil {
			return err
		}

		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}
		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			return errors.New("DB_URL is not set")
		}

		ctx := cmd.Context()
		conn, err := pgx.Connect(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer conn.Close(context.Background())

		applied, err := appliedMigrations(ctx, conn)
		if err != nil {
			return err
		}

		pending := pendingMigrations(files, applied)
		for _, f := range files {
			if applied[filepath.Base(f)] {
				log.Printf("skip: %s", filepath.Base(f))
			}
		}
		if len(pending) == 0 {
			log.Println("no pending migrations")
			return nil
		}

		for _, f := range pending {
			if dryRun {
				log.Printf("pending: %s", filepath.Base(f))
				continue
			}
			if err := applyMigration(ctx, conn, f); err != nil {
				return err
			}
			log.Printf("applied: %s", filepath.Base(f))
		}
		if !dryRun {
			log.Printf("%d migration(s) applied", len(pending))
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&migrationsDir, "dir", "db", "Directory holding the *.sql migration files")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List pending migrations without applying them")
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("[migrate] ")
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

// migrationFiles returns the *.sql files in dir in apply order.
func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migration files found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// pendingMigrations keeps the files whose base name is not in applied.
func pendingMigrations(files []string, applied map[string]bool) []string {
	var pending []string
	for _, f := range files {
		if !applied[filepath.Base(f)] {
			pending = append(pending, f)
		}
	}
	return pending
}

// appliedMigrations reads the migrations table. A missing table (first run)
// means nothing has been applied.
func appliedMigrations(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	applied := make(map[string]bool)
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err != nil {
		if isUndefinedTable(err) {
			return applied, nil
		}
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return applied, nil
		}
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	return applied, nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

// applyMigration runs one file and records it in the same transaction.
func applyMigration(ctx context.Context, conn *pgx.Conn, path string) error {
	filename := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("run %s: %w", filename, err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
			filename, descriptionFromFilename(filename)); err != nil {
			return fmt.Errorf("record %s: %w", filename, err)
		}
		return nil
	})
}

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := migrationPrefix.ReplaceAllString(strings.TrimSuffix(filename, ".sql"), "")
	return strings.ReplaceAll(name, "-", " ")
}
