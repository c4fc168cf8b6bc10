package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/team5526/pitcrew/internal/models"
)

// CreateTeam registers a new team
func (r *Repository) CreateTeam(ctx context.Context, team *models.Team) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teams (id, number, name, current_event_key) VALUES (?, ?, ?, ?)`,
		team.ID, team.Number, team.Name, nullString(team.CurrentEventKey))
	return err
}

// GetTeam returns a team by id, or ErrNotFound
func (r *Repository) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	var name, eventKey sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, number, name, current_event_key FROM teams WHERE id = ?`, id).
		Scan(&team.ID, &team.Number, &name, &eventKey)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	team.Name = name.String
	team.CurrentEventKey = eventKey.String
	return &team, nil
}

// GetTeamByNumber returns a team by its FRC team number, or ErrNotFound
func (r *Repository) GetTeamByNumber(ctx context.Context, number string) (*models.Team, error) {
	var team models.Team
	var name, eventKey sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, number, name, current_event_key FROM teams WHERE number = ?`, number).
		Scan(&team.ID, &team.Number, &name, &eventKey)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	team.Name = name.String
	team.CurrentEventKey = eventKey.String
	return &team, nil
}

// ListTeams returns all registered teams
func (r *Repository) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, number, name, current_event_key FROM teams ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		var name, eventKey sql.NullString
		if err := rows.Scan(&team.ID, &team.Number, &name, &eventKey); err != nil {
			return nil, err
		}
		team.Name = name.String
		team.CurrentEventKey = eventKey.String
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// UpdateTeam updates a team's fields
func (r *Repository) UpdateTeam(ctx context.Context, team *models.Team) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE teams SET number = ?, name = ?, current_event_key = ? WHERE id = ?`,
		team.Number, team.Name, nullString(team.CurrentEventKey), team.ID)
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

// DeleteTeam removes a team
func (r *Repository) DeleteTeam(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
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

// SetCurrentEvent records which event a team is currently attending
func (r *Repository) SetCurrentEvent(ctx context.Context, teamID, eventKey string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE teams SET current_event_key = ? WHERE id = ?`, nullString(eventKey), teamID)
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

// UpsertUser creates or refreshes a user profile
func (r *Repository) UpsertUser(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (uid, display_name, email, last_team_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			display_name = excluded.display_name,
			email = excluded.email,
			updated_at = excluded.updated_at`,
		user.UID, nullString(user.DisplayName), nullString(user.Email),
		nullString(user.LastTeamID), user.UpdatedAt)
	return err
}

// GetUser returns a user profile by uid, or ErrNotFound
func (r *Repository) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	var displayName, email, lastTeam sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT uid, display_name, email, last_team_id, updated_at FROM users WHERE uid = ?`, uid).
		Scan(&user.UID, &displayName, &email, &lastTeam, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.DisplayName = displayName.String
	user.Email = email.String
	user.LastTeamID = lastTeam.String
	return &user, nil
}

// SetLastTeam remembers the team a user most recently worked with, creating
// the profile row when the user has not logged in through this instance yet
func (r *Repository) SetLastTeam(ctx context.Context, uid, teamID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (uid, last_team_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			last_team_id = excluded.last_team_id,
			updated_at = excluded.updated_at`,
		uid, teamID, time.Now().UTC())
	return err
}
