package store

import (
	"database/sql"
	"errors"
)

// UpsertRecord inserts or overwrites the zone record for one activity.
// Replayed webhook events simply rewrite the same row.
func (s *Store) UpsertRecord(r *ActivityRecord) error {
	_, err := s.Exec(`
		INSERT INTO activity_records (
			athlete_id, activity_id, z1, z2, z3, z4, z5, sport, total_time, date, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(athlete_id, activity_id) DO UPDATE SET
			z1 = excluded.z1,
			z2 = excluded.z2,
			z3 = excluded.z3,
			z4 = excluded.z4,
			z5 = excluded.z5,
			sport = excluded.sport,
			total_time = excluded.total_time,
			date = excluded.date,
			updated_at = CURRENT_TIMESTAMP
	`, r.AthleteID, r.ActivityID, r.Z1, r.Z2, r.Z3, r.Z4, r.Z5, r.Sport, r.TotalTime, r.Date)
	return err
}

// DeleteRecord removes a single activity record.
func (s *Store) DeleteRecord(athleteID, activityID int64) error {
	result, err := s.Exec(`
		DELETE FROM activity_records WHERE athlete_id = ? AND activity_id = ?
	`, athleteID, activityID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteAthleteRecords removes every record belonging to one athlete.
func (s *Store) DeleteAthleteRecords(athleteID int64) error {
	_, err := s.Exec(`DELETE FROM activity_records WHERE athlete_id = ?`, athleteID)
	return err
}

// ListRecords returns all of an athlete's activity records, oldest
// activity first.
func (s *Store) ListRecords(athleteID int64) ([]ActivityRecord, error) {
	rows, err := s.Query(`
		SELECT athlete_id, activity_id, z1, z2, z3, z4, z5, sport, total_time, date
		FROM activity_records
		WHERE athlete_id = ?
		ORDER BY date, activity_id
	`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ActivityRecord
	for rows.Next() {
		var r ActivityRecord
		if err := rows.Scan(&r.AthleteID, &r.ActivityID, &r.Z1, &r.Z2, &r.Z3, &r.Z4, &r.Z5,
			&r.Sport, &r.TotalTime, &r.Date); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetRecord retrieves one activity record.
func (s *Store) GetRecord(athleteID, activityID int64) (*ActivityRecord, error) {
	row := s.QueryRow(`
		SELECT athlete_id, activity_id, z1, z2, z3, z4, z5, sport, total_time, date
		FROM activity_records
		WHERE athlete_id = ? AND activity_id = ?
	`, athleteID, activityID)

	var r ActivityRecord
	err := row.Scan(&r.AthleteID, &r.ActivityID, &r.Z1, &r.Z2, &r.Z3, &r.Z4, &r.Z5,
		&r.Sport, &r.TotalTime, &r.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
