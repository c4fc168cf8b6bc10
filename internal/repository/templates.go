package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/team5526/pitcrew/internal/checklist"
	"github.com/team5526/pitcrew/internal/models"
)

const templateColumns = `id, name, description, version, year, type, elements, is_active, created_at, updated_at, created_by, activated_at`

// CreateTemplate writes the live template and its initial version-archive row
// in one transaction.
func (r *Repository) CreateTemplate(ctx context.Context, tpl *models.ChecklistTemplate) error {
	elements, err := checklist.MarshalElements(tpl.Elements)
	if err != nil {
		return err
	}
	snapshot, err := json.Marshal(tpl)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// A new template becomes the active one; the single-active invariant is
	// maintained inside this transaction
	if tpl.IsActive {
		if _, err := tx.ExecContext(ctx,
			`UPDATE checklist_templates SET is_active = 0 WHERE is_active = 1`); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checklist_templates
			(id, name, description, version, year, type, elements, is_active, created_at, updated_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.ID, tpl.Name, tpl.Description, tpl.Version, tpl.Year, string(tpl.Type),
		string(elements), tpl.IsActive, tpl.CreatedAt, tpl.UpdatedAt, tpl.CreatedBy)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO template_versions (template_id, version, snapshot, created_at)
		VALUES (?, ?, ?, ?)`,
		tpl.ID, tpl.Version, string(snapshot), tpl.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetTemplate returns a template by id, or ErrNotFound
func (r *Repository) GetTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM checklist_templates WHERE id = ?`, id)
	return scanTemplate(row)
}

// GetActiveTemplate returns the single template with is_active set, or ErrNotFound
func (r *Repository) GetActiveTemplate(ctx context.Context) (*models.ChecklistTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM checklist_templates WHERE is_active = 1 LIMIT 1`)
	return scanTemplate(row)
}

// ListTemplates returns templates filtered by year and type. Zero values
// disable the corresponding filter.
func (r *Repository) ListTemplates(ctx context.Context, year int, templateType string) ([]models.ChecklistTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM checklist_templates WHERE 1=1`
	args := []interface{}{}
	if year != 0 {
		query += ` AND year = ?`
		args = append(args, year)
	}
	if templateType != "" {
		query += ` AND type = ?`
		args = append(args, templateType)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.ChecklistTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}
	return templates, rows.Err()
}

// UpdateTemplate archives the pre-update snapshot and overwrites the live row
// in one transaction. Returns ErrNotFound when the template does not exist.
func (r *Repository) UpdateTemplate(ctx context.Context, updated, archived *models.ChecklistTemplate) error {
	elements, err := checklist.MarshalElements(updated.Elements)
	if err != nil {
		return err
	}
	snapshot, err := json.Marshal(archived)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The UPDATE runs first so an unknown id reports ErrNotFound instead of
	// tripping the archive row's foreign key
	res, err := tx.ExecContext(ctx, `
		UPDATE checklist_templates
		SET name = ?, description = ?, version = ?, year = ?, type = ?, elements = ?, updated_at = ?
		WHERE id = ?`,
		updated.Name, updated.Description, updated.Version, updated.Year,
		string(updated.Type), string(elements), updated.UpdatedAt, updated.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO template_versions (template_id, version, snapshot, created_at)
		VALUES (?, ?, ?, ?)`,
		archived.ID, archived.Version, string(snapshot), time.Now().UTC())
	if err != nil {
		return err
	}

	return tx.Commit()
}

// SetActiveTemplate clears every active flag and sets the one for id in a
// single transaction. Returns ErrNotFound when id is unknown.
func (r *Repository) SetActiveTemplate(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM checklist_templates WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE checklist_templates SET is_active = 0 WHERE is_active = 1`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE checklist_templates SET is_active = 1, activated_at = ? WHERE id = ?`,
		time.Now().UTC(), id); err != nil {
		return err
	}

	return tx.Commit()
}

// ListTemplateVersions returns the archived snapshots for a template, newest first
func (r *Repository) ListTemplateVersions(ctx context.Context, templateID string) ([]models.ChecklistTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT snapshot FROM template_versions
		WHERE template_id = ?
		ORDER BY id DESC`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []models.ChecklistTemplate
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, err
		}
		var tpl models.ChecklistTemplate
		if err := json.Unmarshal([]byte(snapshot), &tpl); err != nil {
			return nil, err
		}
		versions = append(versions, tpl)
	}
	return versions, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for the template scan helper
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(s scanner) (*models.ChecklistTemplate, error) {
	var tpl models.ChecklistTemplate
	var description, createdBy sql.NullString
	var elements sql.NullString
	var year sql.NullInt64
	var typ string
	var activatedAt sql.NullTime

	err := s.Scan(&tpl.ID, &tpl.Name, &description, &tpl.Version, &year, &typ,
		&elements, &tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt, &createdBy, &activatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tpl.Description = description.String
	tpl.CreatedBy = createdBy.String
	tpl.Year = int(year.Int64)
	tpl.Type = models.TemplateType(typ)
	if activatedAt.Valid {
		t := activatedAt.Time
		tpl.ActivatedAt = &t
	}
	if elements.Valid && elements.String != "" {
		sections, err := checklist.UnmarshalElements([]byte(elements.String))
		if err != nil {
			return nil, err
		}
		tpl.Elements = sections
	}
	return &tpl, nil
}
