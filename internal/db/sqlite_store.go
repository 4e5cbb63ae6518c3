package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/maturitylab/compass/internal/api"
)

// SQLiteStore persists the assessment engine's collections in SQLite. The
// schema's partial unique indexes carry the conflict semantics the lifecycle
// gate and report synthesizer rely on.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

var _ api.Store = (*SQLiteStore)(nil)

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}

func marshalJSON(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *SQLiteStore) SeedQuestions(qs []*api.Question) error {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM questions").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, q := range qs {
		if _, err := tx.Exec(
			"INSERT INTO questions (id, category, display_order, weight, active, version, title, help) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			q.ID, q.Category, q.Order, q.Weight, boolToInt(q.Active), q.Version, q.Title, q.Help,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const questionColumns = "id, category, display_order, weight, active, version, title, help"

func scanQuestion(row interface{ Scan(...any) error }) (*api.Question, error) {
	var q api.Question
	var active int
	if err := row.Scan(&q.ID, &q.Category, &q.Order, &q.Weight, &active, &q.Version, &q.Title, &q.Help); err != nil {
		return nil, err
	}
	q.Active = active != 0
	return &q, nil
}

func (s *SQLiteStore) ListActiveQuestions() ([]*api.Question, error) {
	rows, err := s.db.Query("SELECT " + questionColumns + " FROM questions WHERE active = 1 ORDER BY display_order")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*api.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetQuestionsByIDs(ids []string) (map[string]*api.Question, error) {
	out := make(map[string]*api.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.Query("SELECT "+questionColumns+" FROM questions WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out[q.ID] = q
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertSurvey(sv *api.Survey) error {
	answers := sv.Answers
	legacy := 0
	if len(sv.LegacyAnswers) > 0 {
		answers = sv.LegacyAnswers
		legacy = 1
	}
	answersJSON, err := marshalJSON(answers)
	if err != nil {
		return err
	}
	scoresJSON, err := marshalJSON(sv.Scores)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO surveys (id, org_id, user_id, type, month, answers, legacy, catalog_version, scores, total, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		sv.ID, sv.OrgID, sv.UserID, sv.Type, sv.Month, answersJSON, legacy, sv.CatalogVersion, scoresJSON, sv.Total, sv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return api.ErrDuplicate
		}
		return err
	}
	return nil
}

const surveyColumns = "id, org_id, user_id, type, month, answers, legacy, catalog_version, scores, total, created_at"

func scanSurvey(row interface{ Scan(...any) error }) (*api.Survey, error) {
	var sv api.Survey
	var answersJSON, scoresJSON string
	var legacy int
	if err := row.Scan(&sv.ID, &sv.OrgID, &sv.UserID, &sv.Type, &sv.Month, &answersJSON, &legacy, &sv.CatalogVersion, &scoresJSON, &sv.Total, &sv.CreatedAt); err != nil {
		return nil, err
	}
	answers := map[string]int{}
	if err := json.Unmarshal([]byte(answersJSON), &answers); err != nil {
		return nil, err
	}
	if legacy != 0 {
		sv.LegacyAnswers = answers
	} else {
		sv.Answers = answers
	}
	scores := map[string]float64{}
	if err := json.Unmarshal([]byte(scoresJSON), &scores); err != nil {
		return nil, err
	}
	sv.Scores = scores
	return &sv, nil
}

func (s *SQLiteStore) surveyQuery(query string, args ...any) (*api.Survey, error) {
	sv, err := scanSurvey(s.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *SQLiteStore) GetSurvey(id string) (*api.Survey, error) {
	return s.surveyQuery("SELECT "+surveyColumns+" FROM surveys WHERE id = ?", id)
}

func (s *SQLiteStore) FindBaseline(orgID string) (*api.Survey, error) {
	return s.surveyQuery("SELECT "+surveyColumns+" FROM surveys WHERE org_id = ? AND type = 'baseline'", orgID)
}

func (s *SQLiteStore) LatestFullSurvey(orgID string) (*api.Survey, error) {
	return s.surveyQuery(
		"SELECT "+surveyColumns+" FROM surveys WHERE org_id = ? AND type IN ('baseline', 'quarterly') ORDER BY created_at DESC LIMIT 1",
		orgID,
	)
}

func (s *SQLiteStore) HasQuarterly(orgID string) (bool, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM surveys WHERE org_id = ? AND type = 'quarterly'", orgID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) FindPulse(orgID, month string) (*api.Survey, error) {
	return s.surveyQuery("SELECT "+surveyColumns+" FROM surveys WHERE org_id = ? AND type = 'pulse' AND month = ?", orgID, month)
}

func (s *SQLiteStore) InsertReport(r *api.Report) error {
	summary := string(r.Summary)
	if summary == "" {
		summary = "{}"
	}
	_, err := s.db.Exec(
		"INSERT INTO reports (id, survey_id, org_id, summary, created_at) VALUES (?, ?, ?, ?, ?)",
		r.ID, r.SurveyID, r.OrgID, summary, r.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return api.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *SQLiteStore) FindReportBySurvey(surveyID string) (*api.Report, error) {
	var r api.Report
	var summary string
	err := s.db.QueryRow(
		"SELECT id, survey_id, org_id, summary, created_at FROM reports WHERE survey_id = ?", surveyID,
	).Scan(&r.ID, &r.SurveyID, &r.OrgID, &summary, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Summary = json.RawMessage(summary)
	return &r, nil
}

func (s *SQLiteStore) CountReportsByOrg(orgID string) (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM reports WHERE org_id = ?", orgID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) UpsertBenchmark(b *api.Benchmark) error {
	scoresJSON, err := marshalJSON(b.Scores)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO benchmarks (id, year, source, scores, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (year, source) DO UPDATE SET scores = excluded.scores, updated_at = excluded.updated_at`,
		b.ID, b.Year, b.Source, scoresJSON, b.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) LatestBenchmark() (*api.Benchmark, error) {
	var b api.Benchmark
	var scoresJSON string
	err := s.db.QueryRow(
		"SELECT id, year, source, scores, updated_at FROM benchmarks ORDER BY year DESC, updated_at DESC LIMIT 1",
	).Scan(&b.ID, &b.Year, &b.Source, &scoresJSON, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	scores := map[string]float64{}
	if err := json.Unmarshal([]byte(scoresJSON), &scores); err != nil {
		return nil, err
	}
	b.Scores = scores
	return &b, nil
}

func (s *SQLiteStore) GetSubscription(orgID string) (*api.Subscription, error) {
	var sub api.Subscription
	var expires sql.NullTime
	var never int
	err := s.db.QueryRow(
		"SELECT org_id, plan, status, expires_at, never_expires, updated_at FROM subscriptions WHERE org_id = ?", orgID,
	).Scan(&sub.OrgID, &sub.Plan, &sub.Status, &expires, &never, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		sub.ExpiresAt = &t
	}
	sub.NeverExpires = never != 0
	return &sub, nil
}

func (s *SQLiteStore) UpsertSubscription(sub *api.Subscription) error {
	var expires any
	if sub.ExpiresAt != nil {
		expires = *sub.ExpiresAt
	}
	_, err := s.db.Exec(
		`INSERT INTO subscriptions (org_id, plan, status, expires_at, never_expires, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (org_id) DO UPDATE SET plan = excluded.plan, status = excluded.status,
		 expires_at = excluded.expires_at, never_expires = excluded.never_expires, updated_at = excluded.updated_at`,
		sub.OrgID, sub.Plan, sub.Status, expires, boolToInt(sub.NeverExpires), sub.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) AddOrganization(o *api.Organization) error {
	_, err := s.db.Exec("INSERT INTO organizations (id, name, created_at) VALUES (?, ?, ?)", o.ID, o.Name, o.CreatedAt)
	return err
}

func (s *SQLiteStore) AddUser(u *api.User) error {
	_, err := s.db.Exec(
		"INSERT INTO users (id, email, pass_hash, org_id, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Email, u.PassHash, u.OrgID, u.Role, u.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return api.ErrDuplicate
	}
	return err
}

func (s *SQLiteStore) FindUserByEmail(email string) (*api.User, error) {
	var u api.User
	err := s.db.QueryRow(
		"SELECT id, email, pass_hash, org_id, role, created_at FROM users WHERE email = ?", email,
	).Scan(&u.ID, &u.Email, &u.PassHash, &u.OrgID, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) AddAudit(e api.AuditEntry) {
	if _, err := s.db.Exec(
		"INSERT INTO audit_log (at, actor, action, target, note) VALUES (?, ?, ?, ?, ?)",
		e.Time, e.Actor, e.Action, e.Target, e.Note,
	); err != nil {
		// Audit writes are best effort; the guarded operation already
		// succeeded.
		log.Printf("sqlite store: add audit: %v", err)
	}
}

func (s *SQLiteStore) ListAudit() []api.AuditEntry {
	rows, err := s.db.Query("SELECT at, actor, action, target, note FROM audit_log ORDER BY id")
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []api.AuditEntry
	for rows.Next() {
		var e api.AuditEntry
		if err := rows.Scan(&e.Time, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			return out
		}
		out = append(out, e)
	}
	return out
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
