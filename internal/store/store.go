// Package store persists generated playlists to sqlite so listeners can
// revisit past generations. Track lists are stored as a JSON column; they
// are only ever read back whole.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/moodcraft/backend/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a playlist ID does not exist.
var ErrNotFound = errors.New("playlist not found")

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and applies pending migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite tolerates one writer; serialize access at the pool level.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePlaylist inserts a playlist. Saving the same ID twice is an error.
func (s *Store) SavePlaylist(ctx context.Context, p models.GeneratedPlaylist) error {
	tracks, err := json.Marshal(p.Tracks)
	if err != nil {
		return fmt.Errorf("failed to encode tracks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, description, tracks, duration_sec, average_energy, dominant_mood, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, string(tracks), p.DurationSec, p.AverageEnergy, p.DominantMood, p.Source, p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}
	return nil
}

// UpdatePlaylist rewrites an existing playlist's mutable fields. Used by
// single-track replacement.
func (s *Store) UpdatePlaylist(ctx context.Context, p models.GeneratedPlaylist) error {
	tracks, err := json.Marshal(p.Tracks)
	if err != nil {
		return fmt.Errorf("failed to encode tracks: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE playlists SET name = ?, description = ?, tracks = ?, duration_sec = ?, average_energy = ?, dominant_mood = ?
		WHERE id = ?`,
		p.Name, p.Description, string(tracks), p.DurationSec, p.AverageEnergy, p.DominantMood, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPlaylist loads one playlist by ID.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*models.GeneratedPlaylist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, tracks, duration_sec, average_energy, dominant_mood, source, created_at
		FROM playlists WHERE id = ?`, id)

	var (
		p         models.GeneratedPlaylist
		tracksRaw string
		createdAt time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &tracksRaw, &p.DurationSec, &p.AverageEnergy, &p.DominantMood, &p.Source, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}

	if err := json.Unmarshal([]byte(tracksRaw), &p.Tracks); err != nil {
		return nil, fmt.Errorf("failed to decode tracks: %w", err)
	}
	p.CreatedAt = createdAt.UTC()
	return &p, nil
}

// ListPlaylists returns summaries of the most recent playlists, newest first.
func (s *Store) ListPlaylists(ctx context.Context, limit int) ([]models.PlaylistSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, tracks, duration_sec, dominant_mood, created_at
		FROM playlists ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	var out []models.PlaylistSummary
	for rows.Next() {
		var (
			s         models.PlaylistSummary
			tracksRaw string
			createdAt time.Time
		)
		if err := rows.Scan(&s.ID, &s.Name, &tracksRaw, &s.DurationSec, &s.DominantMood, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}

		var tracks []models.ResolvedTrack
		if err := json.Unmarshal([]byte(tracksRaw), &tracks); err != nil {
			return nil, fmt.Errorf("failed to decode tracks: %w", err)
		}
		s.TrackCount = len(tracks)
		s.CreatedAt = createdAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}
