package store

import (
	"database/sql"
	"errors"
	"time"
)

// UpsertAthlete inserts or replaces an athlete row.
func (s *Store) UpsertAthlete(a *Athlete) error {
	_, err := s.Exec(`
		INSERT INTO athletes (id, name, resting_hr, max_hr, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			resting_hr = excluded.resting_hr,
			max_hr = excluded.max_hr,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, a.ID, a.Name, a.RestingHR, a.MaxHR, a.AccessToken, a.RefreshToken, a.ExpiresAt.Unix())
	return err
}

// GetAthlete retrieves an athlete by ID.
func (s *Store) GetAthlete(id int64) (*Athlete, error) {
	row := s.QueryRow(`
		SELECT id, name, resting_hr, max_hr, access_token, refresh_token, expires_at
		FROM athletes
		WHERE id = ?
	`, id)
	return scanAthlete(row)
}

// ListAthletes returns all athletes ordered by name.
func (s *Store) ListAthletes() ([]Athlete, error) {
	rows, err := s.Query(`
		SELECT id, name, resting_hr, max_hr, access_token, refresh_token, expires_at
		FROM athletes
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var athletes []Athlete
	for rows.Next() {
		var a Athlete
		var expiresAt int64
		if err := rows.Scan(&a.ID, &a.Name, &a.RestingHR, &a.MaxHR, &a.AccessToken, &a.RefreshToken, &expiresAt); err != nil {
			return nil, err
		}
		a.ExpiresAt = time.Unix(expiresAt, 0)
		athletes = append(athletes, a)
	}
	return athletes, rows.Err()
}

// UpdateTokens updates an athlete's OAuth tokens after a refresh.
func (s *Store) UpdateTokens(athleteID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	result, err := s.Exec(`
		UPDATE athletes
		SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, accessToken, refreshToken, expiresAt.Unix(), athleteID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAthleteNotFound
	}
	return nil
}

// DeleteAthlete removes an athlete and, via the foreign key cascade, all
// of their activity records. Used when an athlete deauthorizes the app.
func (s *Store) DeleteAthlete(id int64) error {
	result, err := s.Exec(`DELETE FROM athletes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAthleteNotFound
	}
	return nil
}

func scanAthlete(row *sql.Row) (*Athlete, error) {
	var a Athlete
	var expiresAt int64
	err := row.Scan(&a.ID, &a.Name, &a.RestingHR, &a.MaxHR, &a.AccessToken, &a.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAthleteNotFound
	}
	if err != nil {
		return nil, err
	}
	a.ExpiresAt = time.Unix(expiresAt, 0)
	return &a, nil
}
