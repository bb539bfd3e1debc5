package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pcrawford/timeclock/internal/model"
	"github.com/pcrawford/timeclock/internal/week"
)

type WeeklyRecordStore struct {
	db *sql.DB
}

func NewWeeklyRecordStore(db *sql.DB) *WeeklyRecordStore {
	return &WeeklyRecordStore{db: db}
}

const recordCols = `id, user_id, week_start, payload, created_at, updated_at`

func scanRecord(scanner interface{ Scan(...any) error }) (*model.WeeklyRecord, error) {
	var r model.WeeklyRecord
	var weekStart string
	var payload []byte

	if err := scanner.Scan(&r.ID, &r.UserID, &weekStart, &payload, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}

	ws, err := model.ParseDate(weekStart)
	if err != nil {
		return nil, fmt.Errorf("week_start column: %w", err)
	}
	r.WeekStart = ws

	if err := json.Unmarshal(payload, &r.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &r, nil
}

// GetOrCreate returns the record for (userID, weekStart), inserting one
// with the default empty payload if absent. The insert races through the
// unique (user_id, week_start) index: of two concurrent calls exactly one
// creates the row and both return the same record. weekStart is expected
// to already be a Monday (see week.Monday); it is stored as given.
func (s *WeeklyRecordStore) GetOrCreate(userID int64, weekStart time.Time) (*model.WeeklyRecord, bool, error) {
	payload, err := json.Marshal(week.EmptyPayload())
	if err != nil {
		return nil, false, fmt.Errorf("marshal default payload: %w", err)
	}

	ws := model.NewDate(weekStart).String()
	now := time.Now().UTC()

	result, err := s.db.Exec(
		`INSERT INTO weekly_records (user_id, week_start, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, week_start) DO NOTHING`,
		userID, ws, payload, now, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert weekly record: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	rec, err := s.get(userID, ws)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, fmt.Errorf("weekly record for user %d week %s vanished after upsert", userID, ws)
	}
	return rec, inserted > 0, nil
}

func (s *WeeklyRecordStore) get(userID int64, weekStart string) (*model.WeeklyRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+recordCols+` FROM weekly_records WHERE user_id = ? AND week_start = ?`,
		userID, weekStart,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get weekly record: %w", err)
	}
	return rec, nil
}

// Get returns the record for (userID, weekStart), or nil if none exists.
func (s *WeeklyRecordStore) Get(userID int64, weekStart time.Time) (*model.WeeklyRecord, error) {
	return s.get(userID, model.NewDate(weekStart).String())
}

func (s *WeeklyRecordStore) GetByID(id int64) (*model.WeeklyRecord, error) {
	row := s.db.QueryRow(`SELECT `+recordCols+` FROM weekly_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get weekly record by id: %w", err)
	}
	return rec, nil
}

// ReplacePayload overwrites the record's payload wholesale and bumps
// updated_at. Last writer wins; there is no merge or version check.
func (s *WeeklyRecordStore) ReplacePayload(id int64, payload week.Payload) (*model.WeeklyRecord, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE weekly_records SET payload = ?, updated_at = ? WHERE id = ?`,
		data, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update weekly record: %w", err)
	}

	return s.GetByID(id)
}

// ListForUser returns the user's full week history, most recent week
// first.
func (s *WeeklyRecordStore) ListForUser(userID int64) ([]model.WeeklyRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+recordCols+` FROM weekly_records WHERE user_id = ? ORDER BY week_start DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list weekly records: %w", err)
	}
	defer rows.Close()

	var records []model.WeeklyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weekly record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
