package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// schemaStep is one versioned change to the session database, read from the embedded pair
// NNNN_<name>_up.sql and NNNN_<name>_down.sql.
type schemaStep struct {
	Version int
	Name    string
	Up      []string
	Down    []string
}

var stepFile = regexp.MustCompile(`^(\d{4})_(\w+)_(up|down)\.sql$`)

// loadSchema reads the embedded steps sorted by version. Every step needs both halves.
func loadSchema() ([]schemaStep, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := map[int]*schemaStep{}
	for _, entry := range entries {
		m := stepFile.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}
		version, _ := strconv.Atoi(m[1])

		content, err := migrationFiles.ReadFile(path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		step := byVersion[version]
		if step == nil {
			step = &schemaStep{Version: version, Name: m[2]}
			byVersion[version] = step
		}
		if m[3] == "up" {
			step.Up = splitStatements(string(content))
		} else {
			step.Down = splitStatements(string(content))
		}
	}

	steps := make([]schemaStep, 0, len(byVersion))
	for _, step := range byVersion {
		if len(step.Up) == 0 || len(step.Down) == 0 {
			return nil, fmt.Errorf("incomplete migration %04d_%s", step.Version, step.Name)
		}
		steps = append(steps, *step)
	}
	slices.SortFunc(steps, func(a, b schemaStep) int { return a.Version - b.Version })
	return steps, nil
}

// splitStatements drops line comments and splits a script on semicolons.
func splitStatements(script string) []string {
	var kept []string
	for _, line := range strings.Split(script, "\n") {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// RunMigrations applies every pending step, each in its own transaction.
func RunMigrations(db *sql.DB) error {
	steps, err := loadSchema()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}

	for _, step := range steps {
		if applied[step.Version] {
			continue
		}
		if err := inTx(db, func(tx *sql.Tx) error { return up(tx, step) }); err != nil {
			return fmt.Errorf("failed to apply migration %04d_%s: %w", step.Version, step.Name, err)
		}
	}
	return nil
}

// AppliedMigrations reports how many steps have been applied.
func AppliedMigrations(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count migrations: %w", err)
	}
	return n, nil
}

// ResetSessionStore rebuilds the session tables from scratch in one transaction: applied steps are undone newest
// first, then every step is applied again. Any persisted session is lost.
func ResetSessionStore(db *sql.DB) error {
	steps, err := loadSchema()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}

	return inTx(db, func(tx *sql.Tx) error {
		for _, step := range slices.Backward(steps) {
			if !applied[step.Version] {
				continue
			}
			if err := down(tx, step); err != nil {
				return fmt.Errorf("failed to undo migration %04d_%s: %w", step.Version, step.Name, err)
			}
		}
		for _, step := range steps {
			if err := up(tx, step); err != nil {
				return fmt.Errorf("failed to reapply migration %04d_%s: %w", step.Version, step.Name, err)
			}
		}
		return nil
	})
}

func up(tx *sql.Tx, step schemaStep) error {
	if err := execAll(tx, step.Up); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, step.Version, step.Name)
	return err
}

func down(tx *sql.Tx, step schemaStep) error {
	if err := execAll(tx, step.Down); err != nil {
		return err
	}
	_, err := tx.Exec(`DELETE FROM schema_migrations WHERE version = ?`, step.Version)
	return err
}

func execAll(tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%w\nStatement: %s", err, stmt)
		}
	}
	return nil
}

func inTx(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
