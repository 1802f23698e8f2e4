// Package store keeps a local history of parsed matches in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)

	"github.com/eslreporter/warnlog/pkg/warnlog"
	"github.com/eslreporter/warnlog/pkg/warnlog/report"
)

// Sentinel errors.
var (
	// ErrMatchNotFound is returned when no match has the requested id.
	ErrMatchNotFound = errors.New("match not found")

	// ErrNoMatchID is returned when saving a match the log never assigned
	// an id to.
	ErrNoMatchID = errors.New("match has no id")
)

// Store is a match history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Match is a stored match record with its bookkeeping.
type Match struct {
	Record       warnlog.MatchRecord
	Winner       int
	ReportStatus string
	SavedAt      time.Time
}

// Summary is one row of the match list.
type Summary struct {
	ID           uint64
	Map          string
	Frames       int
	Aborted      bool
	Players      int
	Winner       int
	ReportStatus string
	SavedAt      time.Time
}

// Open opens the database at path, creating it and its schema if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps the foreign key pragma in effect for every query
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveMatch inserts rec, or replaces the stored match with the same id.
// reportStatus records the outcome of uploading the match, if any.
func (s *Store) SaveMatch(ctx context.Context, rec warnlog.MatchRecord, reportStatus string) error {
	if rec.ID == 0 {
		return ErrNoMatchID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (id, map, frames, aborted, complete, winner, report_status, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			map = excluded.map,
			frames = excluded.frames,
			aborted = excluded.aborted,
			complete = excluded.complete,
			winner = excluded.winner,
			report_status = excluded.report_status,
			saved_at = excluded.saved_at
	`, int64(rec.ID), rec.Map, rec.Frames, rec.Aborted, rec.Complete, report.Winner(rec),
		reportStatus, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE match_id = ?`, int64(rec.ID)); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players (match_id, position, sim_id, race, team_id, relic_id, steam_id, slot, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare player insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range rec.Players {
		_, err := stmt.ExecContext(ctx, int64(rec.ID), i, p.SimID, p.Race, p.TeamID,
			int64(p.RelicID), int64(p.SteamID), p.Slot, p.Status.String())
		if err != nil {
			return fmt.Errorf("failed to insert player: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match: %w", err)
	}
	return nil
}

// ListMatches returns up to limit matches, most recently saved first.
// limit <= 0 returns all matches.
func (s *Store) ListMatches(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.map, m.frames, m.aborted, m.winner, m.report_status, m.saved_at,
		       (SELECT COUNT(*) FROM players p WHERE p.match_id = m.id)
		FROM matches m
		ORDER BY m.saved_at DESC, m.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]Summary, 0)
	for rows.Next() {
		var (
			m       Summary
			id      int64
			savedAt string
		)
		if err := rows.Scan(&id, &m.Map, &m.Frames, &m.Aborted, &m.Winner, &m.ReportStatus, &savedAt, &m.Players); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.ID = uint64(id)
		m.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

// GetMatch returns the stored match with id and its players.
func (s *Store) GetMatch(ctx context.Context, id uint64) (*Match, error) {
	var (
		m       Match
		savedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT map, frames, aborted, complete, winner, report_status, saved_at
		FROM matches WHERE id = ?
	`, int64(id)).Scan(&m.Record.Map, &m.Record.Frames, &m.Record.Aborted, &m.Record.Complete,
		&m.Winner, &m.ReportStatus, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrMatchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query match: %w", err)
	}
	m.Record.ID = id
	m.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)

	rows, err := s.db.QueryContext(ctx, `
		SELECT sim_id, race, team_id, relic_id, steam_id, slot, status
		FROM players WHERE match_id = ?
		ORDER BY position
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	m.Record.Players = make([]warnlog.PlayerRecord, 0)
	for rows.Next() {
		var (
			p                warnlog.PlayerRecord
			relicID, steamID int64
			status           string
		)
		if err := rows.Scan(&p.SimID, &p.Race, &p.TeamID, &relicID, &steamID, &p.Slot, &status); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		p.RelicID = uint64(relicID)
		p.SteamID = uint64(steamID)
		if err := p.Status.UnmarshalText([]byte(status)); err != nil {
			return nil, fmt.Errorf("failed to decode player status: %w", err)
		}
		m.Record.Players = append(m.Record.Players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return &m, nil
}

// DeleteMatch removes the match with id and its players.
func (s *Store) DeleteMatch(ctx context.Context, id uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE match_id = ?`, int64(id)); err != nil {
		return fmt.Errorf("failed to delete players: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrMatchNotFound, id)
	}
	return tx.Commit()
}
