package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-flight-planner/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS no_fly_zones (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			vertices TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_no_fly_zones_created_at ON no_fly_zones(created_at);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Add(ctx context.Context, z *models.NoFlyZone) error {
	vertices, err := json.Marshal(z.Vertices)
	if err != nil {
		return fmt.Errorf("error encoding zone vertices: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO no_fly_zones (id, name, vertices, created_at)
		VALUES (?, ?, ?, ?)
	`, z.ID, z.Name, string(vertices), z.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting zone: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.NoFlyZone, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, vertices, created_at FROM no_fly_zones WHERE id = ?
	`, id)

	z, err := scanZone(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading zone: %w", err)
	}
	return z, nil
}

func (s *SQLiteDB) List(ctx context.Context) ([]models.NoFlyZone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, vertices, created_at FROM no_fly_zones ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("error listing zones: %w", err)
	}
	defer rows.Close()

	var zones []models.NoFlyZone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("error reading zone row: %w", err)
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

func (s *SQLiteDB) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM no_fly_zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting zone: %w", err)
	}
	return nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(r rowScanner) (*models.NoFlyZone, error) {
	var z models.NoFlyZone
	var vertices string
	if err := r.Scan(&z.ID, &z.Name, &vertices, &z.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(vertices), &z.Vertices); err != nil {
		return nil, fmt.Errorf("error decoding zone vertices: %w", err)
	}
	return &z, nil
}
