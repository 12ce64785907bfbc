package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/rater-agreement/internal/agreement"
	"github.com/banshee-data/rater-agreement/internal/coding"
)

// Run is one stored invocation of the scorer.
type Run struct {
	RunID       string          `json:"run_id"`
	CreatedAt   int64           `json:"created_at"`
	Rater1      string          `json:"rater1"`
	Rater2      string          `json:"rater2"`
	Input1      string          `json:"input1,omitempty"`
	Input2      string          `json:"input2,omitempty"`
	OptionsJSON json.RawMessage `json:"options_json,omitempty"`
	// ScoreCount is filled by ListRuns.
	ScoreCount int `json:"score_count"`
}

// Created returns CreatedAt as a time.
func (r Run) Created() time.Time {
	return time.Unix(0, r.CreatedAt)
}

// InsertRun stores a run and its label scores in one transaction. RunID
// and CreatedAt are generated when empty. Scores that are NaN are stored
// as NULL.
func (s *Store) InsertRun(run *Run, scores []agreement.LabelScore) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	var opts interface{}
	if len(run.OptionsJSON) > 0 {
		opts = string(run.OptionsJSON)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO agreement_runs (run_id, created_at, rater1, rater2, input1, input2, options_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt, run.Rater1, run.Rater2, run.Input1, run.Input2, opts,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO agreement_scores (
			run_id, label, kind, method, weighting, score,
			n_items, missing, unparseable, status, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare score insert: %w", err)
	}
	defer stmt.Close()

	for _, ls := range scores {
		var score interface{}
		if !math.IsNaN(ls.Score) && !math.IsInf(ls.Score, 0) {
			score = ls.Score
		}
		_, err := stmt.Exec(
			run.RunID, ls.Label, ls.Kind.String(), string(ls.Method), string(ls.Weighting), score,
			ls.Items, ls.Missing, ls.Unparseable, string(ls.Status), ls.Reason,
		)
		if err != nil {
			return fmt.Errorf("insert score %s/%s: %w", ls.Method, ls.Label, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns all runs, newest first, with their score counts.
func (s *Store) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT r.run_id, r.created_at, r.rater1, r.rater2,
		       COALESCE(r.input1, ''), COALESCE(r.input2, ''), r.options_json,
		       (SELECT COUNT(*) FROM agreement_scores s WHERE s.run_id = r.run_id)
		FROM agreement_runs r
		ORDER BY r.created_at DESC, r.run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a single run. It returns ErrRunNotFound when id is unknown.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT r.run_id, r.created_at, r.rater1, r.rater2,
		       COALESCE(r.input1, ''), COALESCE(r.input2, ''), r.options_json,
		       (SELECT COUNT(*) FROM agreement_scores s WHERE s.run_id = r.run_id)
		FROM agreement_runs r
		WHERE r.run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ScoresForRun returns the stored label scores of a run in insertion order.
// NULL scores come back as NaN.
func (s *Store) ScoresForRun(id string) ([]agreement.LabelScore, error) {
	rows, err := s.db.Query(`
		SELECT label, kind, method, COALESCE(weighting, ''), score,
		       n_items, missing, unparseable, status, COALESCE(reason, '')
		FROM agreement_scores
		WHERE run_id = ?
		ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("scores for run %s: %w", id, err)
	}
	defer rows.Close()

	var out []agreement.LabelScore
	for rows.Next() {
		var (
			ls                   agreement.LabelScore
			kind, method, weight string
			status               string
			score                sql.NullFloat64
		)
		if err := rows.Scan(&ls.Label, &kind, &method, &weight, &score,
			&ls.Items, &ls.Missing, &ls.Unparseable, &status, &ls.Reason); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		k, err := coding.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		ls.Kind = k
		ls.Method = agreement.Method(method)
		ls.Weighting = agreement.Weighting(weight)
		ls.Status = agreement.Status(status)
		ls.Score = math.NaN()
		if score.Valid {
			ls.Score = score.Float64
		}
		out = append(out, ls)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its scores.
func (s *Store) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM agreement_scores WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("delete scores for %s: %w", id, err)
	}
	res, err := tx.Exec(`DELETE FROM agreement_runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run  Run
		opts sql.NullString
	)
	if err := sc.Scan(&run.RunID, &run.CreatedAt, &run.Rater1, &run.Rater2,
		&run.Input1, &run.Input2, &opts, &run.ScoreCount); err != nil {
		return nil, err
	}
	if opts.Valid && opts.String != "" {
		run.OptionsJSON = json.RawMessage(opts.String)
	}
	return &run, nil
}
