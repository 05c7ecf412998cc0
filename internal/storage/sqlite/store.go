// Package sqlite is the grievance lifecycle store. Records are scoped
// to an owner (one user's data); mutations run under a per-owner lock
// so the strictly-increasing id and one-review-per-grievance invariants
// hold even with multiple writers.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"grievancedesk/internal/domain"
	"grievancedesk/internal/registry"
)

type Store struct {
	db  *sql.DB
	now func() time.Time

	mu     sync.Mutex
	owners map[string]*sync.Mutex
	stats  map[string]domain.UserStats
}

// Open initializes the database at path, creating the schema if needed.
// The clock is injected for testability; nil means time.Now.
func Open(path string, now func() time.Time) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS grievances (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		owner         TEXT NOT NULL,
		text          TEXT NOT NULL,
		department_id TEXT NOT NULL,
		location_info TEXT DEFAULT '',
		image_ref     TEXT DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'pending',
		reviewed      INTEGER NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL,
		completed_at  DATETIME,
		updated_at    DATETIME NOT NULL,
		escalated_at  DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_grievances_owner ON grievances(owner);
	CREATE INDEX IF NOT EXISTS idx_grievances_status ON grievances(owner, status);

	CREATE TABLE IF NOT EXISTS reviews (
		id                TEXT PRIMARY KEY,
		grievance_id      INTEGER NOT NULL,
		owner             TEXT NOT NULL,
		rating            INTEGER NOT NULL,
		comment           TEXT DEFAULT '',
		helpful_votes     INTEGER NOT NULL DEFAULT 0,
		not_helpful_votes INTEGER NOT NULL DEFAULT 0,
		created_at        DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reviews_owner ON reviews(owner);
	CREATE INDEX IF NOT EXISTS idx_reviews_grievance ON reviews(grievance_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	if now == nil {
		now = time.Now
	}
	return &Store{
		db:     db,
		now:    now,
		owners: make(map[string]*sync.Mutex),
		stats:  make(map[string]domain.UserStats),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ownerLock returns the mutex guarding one owner's mutations.
func (s *Store) ownerLock(owner string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.owners[owner]
	if !ok {
		mu = &sync.Mutex{}
		s.owners[owner] = mu
	}
	return mu
}

// Create persists a new pending grievance. The department must resolve
// in the registry; the classifier is expected to have gated this
// already, so a miss here is a hard error.
func (s *Store) Create(owner, text, departmentID string, meta domain.GrievanceMeta) (domain.Grievance, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Grievance{}, ErrEmptyGrievanceText
	}
	if !registry.Known(departmentID) {
		return domain.Grievance{}, fmt.Errorf("%w: %s", ErrInvalidDepartment, departmentID)
	}

	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	now := s.now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO grievances (owner, text, department_id, location_info, image_ref, status, reviewed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		owner, text, departmentID, meta.LocationInfo, meta.ImageRef, domain.StatusPending, now, now,
	)
	if err != nil {
		return domain.Grievance{}, fmt.Errorf("inserting grievance: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Grievance{}, err
	}

	s.recomputeStatsLocked(owner)
	return domain.Grievance{
		ID:           id,
		Owner:        owner,
		Text:         text,
		DepartmentID: departmentID,
		LocationInfo: meta.LocationInfo,
		ImageRef:     meta.ImageRef,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Complete transitions a pending grievance to completed. The transition
// is one-way; completing twice is a state violation.
func (s *Store) Complete(owner string, id int64) (domain.Grievance, error) {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	g, err := s.getLocked(owner, id)
	if err != nil {
		return domain.Grievance{}, err
	}
	if g.Completed() {
		return domain.Grievance{}, ErrAlreadyCompleted
	}

	now := s.now().UTC()
	_, err = s.db.Exec(
		`UPDATE grievances SET status = ?, completed_at = ?, updated_at = ? WHERE id = ? AND owner = ?`,
		domain.StatusCompleted, now, now, id, owner,
	)
	if err != nil {
		return domain.Grievance{}, fmt.Errorf("completing grievance %d: %w", id, err)
	}

	g.Status = domain.StatusCompleted
	g.CompletedAt = now
	g.UpdatedAt = now
	s.recomputeStatsLocked(owner)
	return g, nil
}

// MarkReviewed flips the reviewed flag. Legal only once the grievance
// is completed and not yet reviewed.
func (s *Store) MarkReviewed(owner string, id int64) error {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	if err := s.markReviewedLocked(s.db, owner, id); err != nil {
		return err
	}
	s.recomputeStatsLocked(owner)
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func (s *Store) markReviewedLocked(ex execer, owner string, id int64) error {
	var status string
	var reviewed bool
	err := ex.QueryRow(`SELECT status, reviewed FROM grievances WHERE id = ? AND owner = ?`, id, owner).
		Scan(&status, &reviewed)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if domain.GrievanceStatus(status) != domain.StatusCompleted {
		return ErrNotCompleted
	}
	if reviewed {
		return ErrAlreadyReviewed
	}
	_, err = ex.Exec(`UPDATE grievances SET reviewed = 1, updated_at = ? WHERE id = ? AND owner = ?`,
		s.now().UTC(), id, owner)
	return err
}

// AddReview persists a review and marks its parent reviewed in one
// transaction, so there is no state where the review exists but the
// parent still reads unreviewed.
func (s *Store) AddReview(owner string, review domain.Review) (domain.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return domain.Review{}, ErrInvalidRating
	}

	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return domain.Review{}, err
	}
	defer tx.Rollback()

	if err := s.markReviewedLocked(tx, owner, review.GrievanceID); err != nil {
		return domain.Review{}, err
	}

	review.Owner = owner
	review.CreatedAt = s.now().UTC()
	review.HelpfulVotes = 0
	review.NotHelpfulVotes = 0
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	_, err = tx.Exec(
		`INSERT INTO reviews (id, grievance_id, owner, rating, comment, helpful_votes, not_helpful_votes, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, ?)`,
		review.ID, review.GrievanceID, owner, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return domain.Review{}, fmt.Errorf("inserting review: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Review{}, err
	}

	s.recomputeStatsLocked(owner)
	return review, nil
}

// Vote increments a review's helpful or not-helpful counter. No cap and
// no voter de-duplication; voter identity is outside this core.
func (s *Store) Vote(owner, reviewID string, kind domain.VoteKind) error {
	var column string
	switch kind {
	case domain.VoteHelpful:
		column = "helpful_votes"
	case domain.VoteNotHelpful:
		column = "not_helpful_votes"
	default:
		return ErrInvalidVoteKind
	}

	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE reviews SET `+column+` = `+column+` + 1 WHERE id = ? AND owner = ?`,
		reviewID, owner,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	s.recomputeStatsLocked(owner)
	return nil
}

// Delete removes a grievance and any reviews attached to it.
func (s *Store) Delete(owner string, id int64) error {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM grievances WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(`DELETE FROM reviews WHERE grievance_id = ? AND owner = ?`, id, owner); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.recomputeStatsLocked(owner)
	return nil
}

// Get returns one grievance by id.
func (s *Store) Get(owner string, id int64) (domain.Grievance, error) {
	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()
	return s.getLocked(owner, id)
}

func (s *Store) getLocked(owner string, id int64) (domain.Grievance, error) {
	row := s.db.QueryRow(
		grievanceColumns+` FROM grievances WHERE id = ? AND owner = ?`, id, owner)
	g, err := scanGrievance(row)
	if err == sql.ErrNoRows {
		return domain.Grievance{}, ErrNotFound
	}
	return g, err
}

const grievanceColumns = `SELECT id, owner, text, department_id, location_info, image_ref, status, reviewed, created_at, completed_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrievance(row rowScanner) (domain.Grievance, error) {
	var g domain.Grievance
	var completedAt sql.NullTime
	err := row.Scan(
		&g.ID, &g.Owner, &g.Text, &g.DepartmentID, &g.LocationInfo, &g.ImageRef,
		&g.Status, &g.Reviewed, &g.CreatedAt, &completedAt, &g.UpdatedAt,
	)
	if err != nil {
		return domain.Grievance{}, err
	}
	if completedAt.Valid {
		g.CompletedAt = completedAt.Time
	}
	return g, nil
}

func (s *Store) queryGrievances(query string, args ...any) ([]domain.Grievance, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Grievance
	for rows.Next() {
		g, err := scanGrievance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListByStatus returns the owner's grievances in the given state, most
// recently created first.
func (s *Store) ListByStatus(owner string, status domain.GrievanceStatus) ([]domain.Grievance, error) {
	return s.queryGrievances(
		grievanceColumns+` FROM grievances WHERE owner = ? AND status = ? ORDER BY created_at DESC, id DESC`,
		owner, status,
	)
}

func (s *Store) ListByDepartment(owner, departmentID string) ([]domain.Grievance, error) {
	return s.queryGrievances(
		grievanceColumns+` FROM grievances WHERE owner = ? AND department_id = ? ORDER BY created_at DESC, id DESC`,
		owner, departmentID,
	)
}

// ListUnreviewedCompleted returns completed grievances that can still
// accept a review.
func (s *Store) ListUnreviewedCompleted(owner string) ([]domain.Grievance, error) {
	return s.queryGrievances(
		grievanceColumns+` FROM grievances WHERE owner = ? AND status = ? AND reviewed = 0 ORDER BY created_at DESC, id DESC`,
		owner, domain.StatusCompleted,
	)
}

// ListAll returns every grievance of the owner, most recent first.
func (s *Store) ListAll(owner string) ([]domain.Grievance, error) {
	return s.queryGrievances(
		grievanceColumns+` FROM grievances WHERE owner = ? ORDER BY created_at DESC, id DESC`,
		owner,
	)
}

// ReviewsByGrievance returns the reviews attached to one grievance.
func (s *Store) ReviewsByGrievance(owner string, grievanceID int64) ([]domain.Review, error) {
	rows, err := s.db.Query(
		`SELECT id, grievance_id, owner, rating, comment, helpful_votes, not_helpful_votes, created_at
		 FROM reviews WHERE owner = ? AND grievance_id = ? ORDER BY created_at DESC`,
		owner, grievanceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.GrievanceID, &r.Owner, &r.Rating, &r.Comment,
			&r.HelpfulVotes, &r.NotHelpfulVotes, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats returns the owner's aggregate statistics. They are recomputed
// in full from the stored collections after every mutation, never
// updated incrementally, so cache and truth cannot drift.
func (s *Store) Stats(owner string) (domain.UserStats, error) {
	s.mu.Lock()
	if st, ok := s.stats[owner]; ok {
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	mu := s.ownerLock(owner)
	mu.Lock()
	defer mu.Unlock()
	return s.recomputeStatsLocked(owner), nil
}

func (s *Store) recomputeStatsLocked(owner string) domain.UserStats {
	var st domain.UserStats
	_ = s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0)
		 FROM grievances WHERE owner = ?`, owner).
		Scan(&st.TotalGrievances, &st.CompletedGrievances, &st.PendingGrievances)

	var avg sql.NullFloat64
	_ = s.db.QueryRow(
		`SELECT COUNT(*), AVG(rating) FROM reviews WHERE owner = ?`, owner).
		Scan(&st.TotalReviews, &avg)
	if avg.Valid {
		st.AverageRating = avg.Float64
	}

	s.mu.Lock()
	s.stats[owner] = st
	s.mu.Unlock()
	return st
}
