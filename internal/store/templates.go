package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
)

// TemplateStore keeps labeled gesture pose templates in a local SQLite
// database. It feeds the template classifier variant.
type TemplateStore struct {
	db   *sql.DB
	path string
}

// OpenTemplates opens (and if needed creates) the template database.
func OpenTemplates(dbPath string) (*TemplateStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &TemplateStore{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

func (s *TemplateStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			tolerance REAL NOT NULL DEFAULT 0.5,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS template_landmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
			landmark_index INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_template_landmarks_template_id
			ON template_landmarks(template_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// Save inserts a template with its landmarks in one transaction.
func (s *TemplateStore) Save(t *classify.Template) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO templates (id, label, tolerance, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Label, t.Tolerance, time.Now(),
	)
	if err != nil {
		return err
	}

	for i, p := range t.Landmarks {
		_, err = tx.Exec(
			`INSERT INTO template_landmarks (template_id, landmark_index, x, y, z)
			 VALUES (?, ?, ?, ?, ?)`,
			t.ID, i, p.X, p.Y, p.Z,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List loads all templates with their landmarks, ordered by creation time.
func (s *TemplateStore) List() ([]*classify.Template, error) {
	rows, err := s.db.Query(
		`SELECT id, label, tolerance FROM templates ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*classify.Template
	for rows.Next() {
		t := &classify.Template{}
		if err := rows.Scan(&t.ID, &t.Label, &t.Tolerance); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range templates {
		landmarks, err := s.landmarks(t.ID)
		if err != nil {
			return nil, err
		}
		t.Landmarks = landmarks
	}

	return templates, nil
}

func (s *TemplateStore) landmarks(templateID string) ([]detector.Point3D, error) {
	rows, err := s.db.Query(
		`SELECT x, y, z FROM template_landmarks
		 WHERE template_id = ? ORDER BY landmark_index ASC`,
		templateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []detector.Point3D
	for rows.Next() {
		var p detector.Point3D
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return points, nil
}

// Delete removes a template by id.
func (s *TemplateStore) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Close closes the database connection.
func (s *TemplateStore) Close() error {
	return s.db.Close()
}
