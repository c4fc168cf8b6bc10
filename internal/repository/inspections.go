package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/team5526/pitcrew/internal/checklist"
	"github.com/team5526/pitcrew/internal/models"
)

const inspectionColumns = `id, team_id, template_id, template_version, event_key, match_key,
	battery_number, inspector, notes, start_time, end_time, status, results, responses,
	critical_failures, is_latest, previous_batteries, created_at, updated_at`

// CreateInspection runs the whole session-creation protocol in one
// transaction so concurrent requests for the same team serialize on the
// database instead of racing between read and write:
//
//  1. match-bound conflict checks (ErrMatchInProgress, ErrBatteryUsed)
//  2. abandon the team's current in-progress session, if any
//  3. demote is_latest on prior sessions for the same match
//  4. snapshot the team's recent battery numbers onto the new session
//  5. insert the new session as in-progress
func (r *Repository) CreateInspection(ctx context.Context, session *models.InspectionSession) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if session.MatchKey != "" {
		var status string
		err := tx.QueryRowContext(ctx, `
			SELECT status FROM inspections
			WHERE team_id = ? AND match_key = ?
			ORDER BY start_time DESC LIMIT 1`,
			session.TeamID, session.MatchKey).Scan(&status)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if err == nil && models.InspectionStatus(status) == models.StatusInProgress {
			return ErrMatchInProgress
		}

		if session.BatteryNumber != "" {
			used, err := r.batteryUsedTx(ctx, tx, session.TeamID, session.BatteryNumber)
			if err != nil {
				return err
			}
			if used {
				return ErrBatteryUsed
			}
		}
	}

	// Silent supersession: a new session always abandons the team's current one
	if _, err := tx.ExecContext(ctx, `
		UPDATE inspections SET status = ?, updated_at = ?
		WHERE team_id = ? AND status = ?`,
		string(models.StatusAbandoned), time.Now().UTC(),
		session.TeamID, string(models.StatusInProgress)); err != nil {
		return err
	}

	if session.MatchKey != "" {
		if _, err := tx.ExecContext(ctx, `
			UPDATE inspections SET is_latest = 0, updated_at = ?
			WHERE team_id = ? AND match_key = ?`,
			time.Now().UTC(), session.TeamID, session.MatchKey); err != nil {
			return err
		}
	}

	previous, err := r.listPreviousBatteriesTx(ctx, tx, session.TeamID, defaultBatteryLimit)
	if err != nil {
		return err
	}
	session.PreviousBatteryNumbers = previous

	results, responses, failures, batteries, err := marshalInspectionJSON(session)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inspections
			(id, team_id, template_id, template_version, event_key, match_key, battery_number,
			 inspector, notes, start_time, status, results, responses, critical_failures,
			 is_latest, previous_batteries, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.TeamID, nullString(session.TemplateID), nullString(session.TemplateVersion),
		nullString(session.EventKey), nullString(session.MatchKey), nullString(session.BatteryNumber),
		session.Inspector, nullString(session.Notes), session.StartTime, string(session.Status),
		results, responses, failures, session.IsLatest, batteries,
		session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// defaultBatteryLimit bounds how far back the battery-reuse check looks
const defaultBatteryLimit = 5

// GetInspection returns one session by id, or ErrNotFound
func (r *Repository) GetInspection(ctx context.Context, teamID, id string) (*models.InspectionSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inspectionColumns+` FROM inspections WHERE team_id = ? AND id = ?`, teamID, id)
	return scanInspection(row)
}

// GetActiveInspection returns the team's newest in-progress session, or ErrNotFound
func (r *Repository) GetActiveInspection(ctx context.Context, teamID string) (*models.InspectionSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+inspectionColumns+` FROM inspections
		WHERE team_id = ? AND status = ?
		ORDER BY start_time DESC LIMIT 1`,
		teamID, string(models.StatusInProgress))
	return scanInspection(row)
}

// GetActiveMatchInspection returns the in-progress session bound to a match, or ErrNotFound
func (r *Repository) GetActiveMatchInspection(ctx context.Context, teamID, matchKey string) (*models.InspectionSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+inspectionColumns+` FROM inspections
		WHERE team_id = ? AND match_key = ? AND status = ?
		LIMIT 1`,
		teamID, matchKey, string(models.StatusInProgress))
	return scanInspection(row)
}

// ListMatchInspections returns every session for a match, newest first
func (r *Repository) ListMatchInspections(ctx context.Context, teamID, matchKey string) ([]models.InspectionSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+inspectionColumns+` FROM inspections
		WHERE team_id = ? AND match_key = ?
		ORDER BY start_time DESC`,
		teamID, matchKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInspections(rows)
}

// ListEventInspections returns every session recorded at an event
func (r *Repository) ListEventInspections(ctx context.Context, teamID, eventKey string) ([]models.InspectionSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+inspectionColumns+` FROM inspections
		WHERE team_id = ? AND event_key = ?
		ORDER BY start_time DESC`,
		teamID, eventKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInspections(rows)
}

// ListInspections returns a page of sessions plus the total count matching
// the same filter predicate (count-then-fetch).
func (r *Repository) ListInspections(ctx context.Context, teamID string, opts InspectionListOptions) ([]models.InspectionSession, int, error) {
	where := ` WHERE team_id = ?`
	args := []interface{}{teamID}
	if opts.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	if opts.MatchKey != "" {
		where += ` AND match_key = ?`
		args = append(args, opts.MatchKey)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inspections`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + inspectionColumns + ` FROM inspections` + where +
		` ORDER BY start_time DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions, err := collectInspections(rows)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// ListPreviousBatteries returns the team's most recently used distinct
// battery numbers, newest first.
func (r *Repository) ListPreviousBatteries(ctx context.Context, teamID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultBatteryLimit
	}
	return r.listPreviousBatteriesTx(ctx, r.db, teamID, limit)
}

// querier abstracts *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *Repository) listPreviousBatteriesTx(ctx context.Context, q querier, teamID string, limit int) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT battery_number, MAX(start_time) AS last_used
		FROM inspections
		WHERE team_id = ? AND battery_number IS NOT NULL AND battery_number != ''
		GROUP BY battery_number
		ORDER BY last_used DESC
		LIMIT ?`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batteries []string
	for rows.Next() {
		var battery string
		// MAX() strips the DATETIME column type, so the aggregate comes back
		// as text
		var lastUsed sql.NullString
		if err := rows.Scan(&battery, &lastUsed); err != nil {
			return nil, err
		}
		batteries = append(batteries, battery)
	}
	return batteries, rows.Err()
}

func (r *Repository) batteryUsedTx(ctx context.Context, q querier, teamID, battery string) (bool, error) {
	previous, err := r.listPreviousBatteriesTx(ctx, q, teamID, defaultBatteryLimit)
	if err != nil {
		return false, err
	}
	for _, b := range previous {
		if b == battery {
			return true, nil
		}
	}
	return false, nil
}

// UpdateInspectionStatus transitions a session's status
func (r *Repository) UpdateInspectionStatus(ctx context.Context, teamID, id string, status models.InspectionStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inspections SET status = ?, updated_at = ? WHERE team_id = ? AND id = ?`,
		string(status), time.Now().UTC(), teamID, id)
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
	return nil
}

// UpdateInspectionResponses overwrites a session's response map
func (r *Repository) UpdateInspectionResponses(ctx context.Context, teamID, id string, responses checklist.Responses) error {
	data, err := json.Marshal(responses)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE inspections SET responses = ?, updated_at = ? WHERE team_id = ? AND id = ?`,
		string(data), time.Now().UTC(), teamID, id)
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
	return nil
}

// FinalizeInspection updates the finished session and, when prep is non-nil,
// upserts the match preparation summary in the same transaction.
func (r *Repository) FinalizeInspection(ctx context.Context, session *models.InspectionSession, prep *models.MatchPreparation) error {
	results, responses, failures, _, err := marshalInspectionJSON(session)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var endTime interface{}
	if session.EndTime != nil {
		endTime = *session.EndTime
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE inspections
		SET status = ?, end_time = ?, results = ?, responses = ?, critical_failures = ?,
			battery_number = ?, notes = ?, updated_at = ?
		WHERE team_id = ? AND id = ?`,
		string(session.Status), endTime, results, responses, failures,
		nullString(session.BatteryNumber), nullString(session.Notes), session.UpdatedAt,
		session.TeamID, session.ID)
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

	if prep != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO match_preparations
				(team_id, match_key, inspection_completed, inspection_id, battery_number, last_updated)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(team_id, match_key) DO UPDATE SET
				inspection_completed = excluded.inspection_completed,
				inspection_id = excluded.inspection_id,
				battery_number = excluded.battery_number,
				last_updated = excluded.last_updated`,
			prep.TeamID, prep.MatchKey, prep.InspectionCompleted,
			nullString(prep.InspectionID), nullString(prep.BatteryNumber), prep.LastUpdated)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetMatchPreparation returns the readiness summary for a match, or ErrNotFound
func (r *Repository) GetMatchPreparation(ctx context.Context, teamID, matchKey string) (*models.MatchPreparation, error) {
	var prep models.MatchPreparation
	var inspectionID, battery sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT team_id, match_key, inspection_completed, inspection_id, battery_number, last_updated
		FROM match_preparations WHERE team_id = ? AND match_key = ?`,
		teamID, matchKey).Scan(&prep.TeamID, &prep.MatchKey, &prep.InspectionCompleted,
		&inspectionID, &battery, &prep.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	prep.InspectionID = inspectionID.String
	prep.BatteryNumber = battery.String
	return &prep, nil
}

// marshalInspectionJSON serializes the session's JSON columns
func marshalInspectionJSON(session *models.InspectionSession) (results, responses, failures, batteries string, err error) {
	resultsBytes, err := json.Marshal(session.Results)
	if err != nil {
		return "", "", "", "", err
	}
	responsesBytes, err := json.Marshal(session.Responses)
	if err != nil {
		return "", "", "", "", err
	}
	failuresBytes, err := json.Marshal(session.CriticalFailures)
	if err != nil {
		return "", "", "", "", err
	}
	batteriesBytes, err := json.Marshal(session.PreviousBatteryNumbers)
	if err != nil {
		return "", "", "", "", err
	}
	return string(resultsBytes), string(responsesBytes), string(failuresBytes), string(batteriesBytes), nil
}

func collectInspections(rows *sql.Rows) ([]models.InspectionSession, error) {
	var sessions []models.InspectionSession
	for rows.Next() {
		session, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func scanInspection(s scanner) (*models.InspectionSession, error) {
	var session models.InspectionSession
	var templateID, templateVersion, eventKey, matchKey, battery, notes sql.NullString
	var results, responses, failures, batteries sql.NullString
	var endTime sql.NullTime
	var status string

	err := s.Scan(&session.ID, &session.TeamID, &templateID, &templateVersion, &eventKey,
		&matchKey, &battery, &session.Inspector, &notes, &session.StartTime, &endTime,
		&status, &results, &responses, &failures, &session.IsLatest, &batteries,
		&session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	session.TemplateID = templateID.String
	session.TemplateVersion = templateVersion.String
	session.EventKey = eventKey.String
	session.MatchKey = matchKey.String
	session.BatteryNumber = battery.String
	session.Notes = notes.String
	session.Status = models.InspectionStatus(status)
	if endTime.Valid {
		t := endTime.Time
		session.EndTime = &t
	}
	if err := unmarshalNullJSON(results, &session.Results); err != nil {
		return nil, err
	}
	if err := unmarshalNullJSON(responses, &session.Responses); err != nil {
		return nil, err
	}
	if err := unmarshalNullJSON(failures, &session.CriticalFailures); err != nil {
		return nil, err
	}
	if err := unmarshalNullJSON(batteries, &session.PreviousBatteryNumbers); err != nil {
		return nil, err
	}
	return &session, nil
}

func unmarshalNullJSON(col sql.NullString, target interface{}) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), target)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
