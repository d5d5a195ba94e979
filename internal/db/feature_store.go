package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/echomask/internal/ssl"
)

// Run is one SSLEM extraction recorded in the catalogue.
type Run struct {
	RunID            string     `json:"run_id"`
	Source           string     `json:"source"`
	FrequencyKHz     float64    `json:"frequency_khz"`
	Rows             int        `json:"rows"`
	Cols             int        `json:"cols"`
	Params           ssl.Params `json:"params"`
	FeatureCount     int        `json:"feature_count"`
	CreatedUnixNanos int64      `json:"created_unix_nanos"`
}

// FeatureStore persists SSLEM runs and their feature summaries.
type FeatureStore struct {
	db *sql.DB
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(db *sql.DB) *FeatureStore {
	return &FeatureStore{db: db}
}

// InsertRun stores run and its features in one transaction.
// If run.RunID is empty, a new UUID is generated; a zero CreatedUnixNanos
// is set to now. FeatureCount is taken from len(features).
func (s *FeatureStore) InsertRun(run *Run, features []ssl.Feature) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedUnixNanos == 0 {
		run.CreatedUnixNanos = time.Now().UnixNano()
	}
	run.FeatureCount = len(features)

	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("marshal run params: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO ssl_runs (
			run_id, source, frequency_khz, grid_rows, grid_cols,
			params_json, feature_count, created_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID, run.Source, run.FrequencyKHz, run.Rows, run.Cols,
		string(paramsJSON), run.FeatureCount, run.CreatedUnixNanos,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO ssl_features (
			run_id, feature_id, pixel_count, valid_count,
			first_ping, last_ping, ping_count, top_sample, bottom_sample,
			median_sv, mean_sv, min_sv, max_sv
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert feature: %w", err)
	}
	defer stmt.Close()

	for _, f := range features {
		_, err := stmt.Exec(
			run.RunID, f.ID, f.PixelCount, f.ValidCount,
			f.FirstPing, f.LastPing, f.PingCount, f.TopSample, f.BottomSample,
			nullFloat64(f.MedianSv), nullFloat64(f.MeanSv), nullFloat64(f.MinSv), nullFloat64(f.MaxSv),
		)
		if err != nil {
			return fmt.Errorf("insert feature %d: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert run: %w", err)
	}
	logf("stored run %s: %d features", run.RunID, run.FeatureCount)
	return nil
}

const runColumns = `run_id, source, frequency_khz, grid_rows, grid_cols,
	params_json, feature_count, created_unix_nanos`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	r := &Run{}
	var paramsJSON string
	if err := row.Scan(
		&r.RunID, &r.Source, &r.FrequencyKHz, &r.Rows, &r.Cols,
		&paramsJSON, &r.FeatureCount, &r.CreatedUnixNanos,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(paramsJSON), &r.Params); err != nil {
		return nil, fmt.Errorf("parse params of run %s: %w", r.RunID, err)
	}
	return r, nil
}

// GetRun returns the run with the given ID, or sql.ErrNoRows.
func (s *FeatureStore) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM ssl_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns every run, newest first.
func (s *FeatureStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM ssl_runs ORDER BY created_unix_nanos DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListFeatures returns the features of a run ordered by identifier.
func (s *FeatureStore) ListFeatures(runID string) ([]ssl.Feature, error) {
	rows, err := s.db.Query(`
		SELECT feature_id, pixel_count, valid_count,
		       first_ping, last_ping, ping_count, top_sample, bottom_sample,
		       median_sv, mean_sv, min_sv, max_sv
		FROM ssl_features
		WHERE run_id = ?
		ORDER BY feature_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()

	var feats []ssl.Feature
	for rows.Next() {
		var f ssl.Feature
		var median, mean, lo, hi sql.NullFloat64
		if err := rows.Scan(
			&f.ID, &f.PixelCount, &f.ValidCount,
			&f.FirstPing, &f.LastPing, &f.PingCount, &f.TopSample, &f.BottomSample,
			&median, &mean, &lo, &hi,
		); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		f.MedianSv = floatOrNaN(median)
		f.MeanSv = floatOrNaN(mean)
		f.MinSv = floatOrNaN(lo)
		f.MaxSv = floatOrNaN(hi)
		feats = append(feats, f)
	}
	return feats, rows.Err()
}

// DeleteRun removes a run and, by cascade, its features.
func (s *FeatureStore) DeleteRun(runID string) error {
	result, err := s.db.Exec("DELETE FROM ssl_runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// nullFloat64 stores NaN as NULL.
func nullFloat64(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
