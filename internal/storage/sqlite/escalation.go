package sqlite

import "grievancedesk/internal/domain"

// Escalation queries cut across owners: the sweep looks at every
// pending grievance that has not been flagged yet.

// ListPendingUnescalated returns all pending grievances with no
// escalation recorded, oldest first so the longest-waiting items are
// reported first.
func (s *Store) ListPendingUnescalated() ([]domain.Grievance, error) {
	return s.queryGrievances(
		grievanceColumns + ` FROM grievances WHERE status = 'pending' AND escalated_at IS NULL ORDER BY created_at ASC, id ASC`,
	)
}

// MarkEscalated records that an overdue notification went out, so the
// next sweep does not repeat it.
func (s *Store) MarkEscalated(owner string, id int64) error {
	res, err := s.db.Exec(
		`UPDATE grievances SET escalated_at = ? WHERE id = ? AND owner = ? AND escalated_at IS NULL`,
		s.now().UTC(), id, owner,
	)
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
	return nil
}
