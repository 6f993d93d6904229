// Package progress is the gateway's local record of finished quizzes and
// viewed topics, backing the profile dashboard.
package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/pathwise/pathwise-gateway/internal/quiz"
)

var ErrNotFound = errors.New("attempt not found")

// Attempt is one finished quiz, filed under the quiz_attempt_id its export
// artifacts are stored against.
type Attempt struct {
	ID                string        `json:"quiz_attempt_id"`
	UserID            string        `json:"-"`
	Topic             string        `json:"topic"`
	QuizType          string        `json:"quiz_type"`
	QuestionCount     int           `json:"question_count"`
	NegativeMarking   bool          `json:"negative_marking"`
	TotalPoints       int           `json:"total_points"`
	Percent           int           `json:"percentage"`
	Results           []quiz.Result `json:"results,omitempty"`
	ArtifactsUploaded bool          `json:"artifacts_uploaded"`
	TakenAt           int64         `json:"taken_at"`
}

// Summary is the profile dashboard aggregate.
type Summary struct {
	Attempts       int     `json:"attempts"`
	AveragePercent float64 `json:"average_percentage"`
	BestPercent    int     `json:"best_percentage"`
	TopicsQuizzed  int     `json:"topics_quizzed"`
	TopicsViewed   int     `json:"topics_viewed"`
}

type TopicView struct {
	Topic    string `json:"topic"`
	ViewedAt int64  `json:"viewed_at"`
}

type Store struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// RecordAttempt files one finished quiz.
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) error {
	rj, err := json.Marshal(a.Results)
	if err != nil {
		return err
	}
	if a.TakenAt == 0 {
		a.TakenAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_attempts
		(id,user_id,topic,quiz_type,question_count,negative_marking,total_points,percentage,results_json,artifacts_uploaded,taken_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.UserID, a.Topic, a.QuizType, a.QuestionCount, a.NegativeMarking,
		a.TotalPoints, a.Percent, string(rj), a.ArtifactsUploaded, a.TakenAt)
	return err
}

// MarkArtifactsUploaded flips the attempt's uploaded flag. Single-shot: the
// first call for an attempt returns true, every later call returns false, so
// the flag can never be applied twice.
func (s *Store) MarkArtifactsUploaded(ctx context.Context, attemptID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quiz_attempts SET artifacts_uploaded = $1 WHERE id = $2 AND artifacts_uploaded = $3`,
		true, attemptID, false)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetAttempt loads one attempt owned by userID.
func (s *Store) GetAttempt(ctx context.Context, attemptID, userID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,user_id,topic,quiz_type,question_count,negative_marking,
		total_points,percentage,results_json,artifacts_uploaded,taken_at
		FROM quiz_attempts WHERE id = $1 AND user_id = $2`, attemptID, userID)
	return scanAttempt(row)
}

// ListAttempts returns userID's attempts, most recent first.
func (s *Store) ListAttempts(ctx context.Context, userID string, limit, offset int) ([]Attempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,user_id,topic,quiz_type,question_count,negative_marking,
		total_points,percentage,results_json,artifacts_uploaded,taken_at
		FROM quiz_attempts WHERE user_id = $1 ORDER BY taken_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Summary aggregates userID's history for the dashboard.
func (s *Store) Summary(ctx context.Context, userID string) (Summary, error) {
	var sum Summary
	var avg sql.NullFloat64
	var best sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), AVG(percentage), MAX(percentage), COUNT(DISTINCT topic)
		FROM quiz_attempts WHERE user_id = $1`, userID).
		Scan(&sum.Attempts, &avg, &best, &sum.TopicsQuizzed)
	if err != nil {
		return Summary{}, err
	}
	sum.AveragePercent = avg.Float64
	sum.BestPercent = int(best.Int64)
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topic_views WHERE user_id = $1`, userID).
		Scan(&sum.TopicsViewed)
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// RecordTopicView bumps the last-viewed time for a topic, one row per
// user/topic pair.
func (s *Store) RecordTopicView(ctx context.Context, userID, topic string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO topic_views (user_id,topic,viewed_at) VALUES ($1,$2,$3)
		ON CONFLICT (user_id,topic) DO UPDATE SET viewed_at = EXCLUDED.viewed_at`,
		userID, topic, time.Now().Unix())
	return err
}

// RecentTopics lists userID's most recently viewed topics.
func (s *Store) RecentTopics(ctx context.Context, userID string, limit int) ([]TopicView, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic, viewed_at FROM topic_views WHERE user_id = $1 ORDER BY viewed_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopicView
	for rows.Next() {
		var tv TopicView
		if err := rows.Scan(&tv.Topic, &tv.ViewedAt); err != nil {
			return nil, err
		}
		out = append(out, tv)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(row scanner) (Attempt, error) {
	var a Attempt
	var rj string
	err := row.Scan(&a.ID, &a.UserID, &a.Topic, &a.QuizType, &a.QuestionCount, &a.NegativeMarking,
		&a.TotalPoints, &a.Percent, &rj, &a.ArtifactsUploaded, &a.TakenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrNotFound
	}
	if err != nil {
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(rj), &a.Results); err != nil {
		a.Results = nil
	}
	return a, nil
}
