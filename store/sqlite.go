package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			email TEXT UNIQUE,
			full_name TEXT,
			study_year TEXT,
			institute TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS cases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			case_title TEXT,
			case_data TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_user ON cases(user_id, updated_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user and fills in the assigned ID.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	user.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, email, full_name, study_year, institute, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.PasswordHash, nullable(user.Email), nullable(user.FullName),
		nullable(user.StudyYear), nullable(user.Institute), user.CreatedAt)
	if err != nil {
		return err
	}
	user.ID, err = res.LastInsertId()
	return err
}

// GetUserByUsername looks a user up case-insensitively. Returns nil when
// no such user exists.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, `LOWER(username) = LOWER(?)`, username)
}

// GetUserByEmail looks a user up by email. Returns nil when no such user
// exists.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, `email = ?`, email)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	var user domain.User
	var email, fullName, studyYear, institute sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, full_name, study_year, institute, created_at
		 FROM users WHERE `+where, arg).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &email, &fullName, &studyYear, &institute, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	user.FullName = fullName.String
	user.StudyYear = studyYear.String
	user.Institute = institute.String
	return &user, nil
}

// CreateCase inserts a new case and fills in ID and timestamps.
func (s *SQLiteStore) CreateCase(ctx context.Context, record *domain.CaseRecord) error {
	data, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal case data: %w", err)
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cases (user_id, case_title, case_data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		record.UserID, record.Title, string(data), record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return err
	}
	record.ID, err = res.LastInsertId()
	return err
}

// GetCase retrieves a full record. Missing and not-owned records are both
// domain.ErrNotFound.
func (s *SQLiteStore) GetCase(ctx context.Context, id, userID int64) (*domain.CaseRecord, error) {
	var record domain.CaseRecord
	var title sql.NullString
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, case_title, case_data, created_at, updated_at FROM cases WHERE id = ? AND user_id = ?`,
		id, userID).
		Scan(&record.ID, &record.UserID, &title, &data, &record.CreatedAt, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	record.Title = title.String
	if err := json.Unmarshal([]byte(data), &record.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal case data: %w", err)
	}
	return &record, nil
}

// ListCases returns summaries of the user's cases, most recently updated
// first.
func (s *SQLiteStore) ListCases(ctx context.Context, userID int64) ([]domain.CaseSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, case_title, updated_at FROM cases WHERE user_id = ? ORDER BY updated_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []domain.CaseSummary{}
	for rows.Next() {
		var sum domain.CaseSummary
		var title sql.NullString
		if err := rows.Scan(&sum.ID, &title, &sum.UpdatedAt); err != nil {
			return nil, err
		}
		sum.Title = title.String
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// UpdateCase rewrites title and data, advancing updated_at.
func (s *SQLiteStore) UpdateCase(ctx context.Context, record *domain.CaseRecord) error {
	data, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal case data: %w", err)
	}
	record.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE cases SET case_title = ?, case_data = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		record.Title, string(data), record.UpdatedAt, record.ID, record.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCase removes a record owned by the user.
func (s *SQLiteStore) DeleteCase(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cases WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
