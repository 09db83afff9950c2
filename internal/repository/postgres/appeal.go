package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/appealdesk/appealdesk/internal/domain/appeal"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
	"github.com/google/uuid"
)

// AppealRepository implements appeal.Repository
type AppealRepository struct {
	db *sql.DB
}

// NewAppealRepository creates a new appeal repository
func NewAppealRepository(db *sql.DB) appeal.Repository {
	return &AppealRepository{db: db}
}

const appealColumns = "id, user_id, payer, denial_code, letter_text, status, created_at, updated_at"

// Create inserts a new draft appeal, quota-gated when countedStatus is set.
func (r *AppealRepository) Create(ctx context.Context, a *appeal.Appeal, countedStatus string) error {
	now := time.Now()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Status = appeal.StatusDraft
	a.CreatedAt = now
	a.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	if countedStatus != "" {
		if err := checkQuota(ctx, tx, a.UserID, countedStatus); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appeals (id, user_id, payer, denial_code, letter_text, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.Payer, a.DenialCode, a.LetterText, a.Status, now.Unix(), now.Unix())
	if err != nil {
		return errors.DatabaseError("Failed to create appeal", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit appeal", err)
	}
	return nil
}

// GetByID retrieves an appeal by ID
func (r *AppealRepository) GetByID(ctx context.Context, id string) (*appeal.Appeal, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+appealColumns+" FROM appeals WHERE id = ?", id)
	return scanAppeal(row)
}

// ListByUser retrieves a user's appeals, newest first
func (r *AppealRepository) ListByUser(ctx context.Context, userID int64, filter appeal.Filter, limit, offset int) ([]*appeal.Appeal, int64, error) {
	where := " WHERE user_id = ?"
	args := []interface{}{userID}

	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM appeals"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count appeals", err)
	}

	query := "SELECT " + appealColumns + " FROM appeals" + where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list appeals", err)
	}
	defer rows.Close()

	var appeals []*appeal.Appeal
	for rows.Next() {
		a, err := scanAppeal(rows)
		if err != nil {
			return nil, 0, err
		}
		appeals = append(appeals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate appeals", err)
	}

	return appeals, total, nil
}

// CountByStatus counts a user's appeals with the given status
func (r *AppealRepository) CountByStatus(ctx context.Context, userID int64, status string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM appeals WHERE user_id = ? AND status = ?",
		userID, status).Scan(&count)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count appeals", err)
	}
	return count, nil
}

// FinalizeLetter atomically stores the letter and flips the appeal to generated.
func (r *AppealRepository) FinalizeLetter(ctx context.Context, appealID string, userID int64, letter, countedStatus string) (*appeal.Appeal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+appealColumns+" FROM appeals WHERE id = ?", appealID)
	a, err := scanAppeal(row)
	if err != nil {
		return nil, err
	}

	if a.UserID != userID {
		return nil, errors.Forbidden("Unauthorized access to appeal")
	}

	// Already generated: idempotent, return the stored letter untouched.
	if a.Status == appeal.StatusGenerated {
		return a, nil
	}

	// The quota re-check and the status flip share this transaction, so a
	// concurrent request at the boundary cannot overdraw.
	if err := checkQuota(ctx, tx, userID, countedStatus); err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		UPDATE appeals
		SET letter_text = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND status = ?
	`, letter, appeal.StatusGenerated, now.Unix(), appealID, userID, appeal.StatusDraft)
	if err != nil {
		return nil, errors.DatabaseError("Failed to save letter", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return nil, errors.Conflict("Appeal was updated concurrently")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.DatabaseError("Failed to commit letter", err)
	}

	a.LetterText = letter
	a.Status = appeal.StatusGenerated
	a.UpdatedAt = now
	return a, nil
}

// checkQuota verifies, inside the caller's transaction, that the user has
// quota headroom for one more appeal with the counted status. A NULL
// appeal_quota means unlimited.
func checkQuota(ctx context.Context, tx *sql.Tx, userID int64, countedStatus string) error {
	var quota sql.NullInt64
	err := tx.QueryRowContext(ctx,
		"SELECT appeal_quota FROM profiles WHERE id = ?", userID).Scan(&quota)
	if err == sql.ErrNoRows {
		return errors.NotFound("Profile")
	}
	if err != nil {
		return errors.DatabaseError("Failed to read appeal quota", err)
	}

	if !quota.Valid {
		return nil
	}

	var used int64
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM appeals WHERE user_id = ? AND status = ?",
		userID, countedStatus).Scan(&used)
	if err != nil {
		return errors.DatabaseError("Failed to count appeals", err)
	}

	if used >= quota.Int64 {
		return errors.QuotaExceeded("Appeal quota exceeded")
	}
	return nil
}

func scanAppeal(s scanner) (*appeal.Appeal, error) {
	var a appeal.Appeal
	var createdAt, updatedAt int64

	err := s.Scan(&a.ID, &a.UserID, &a.Payer, &a.DenialCode, &a.LetterText,
		&a.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Appeal")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to scan appeal", err)
	}

	a.CreatedAt = time.Unix(createdAt, 0)
	a.UpdatedAt = time.Unix(updatedAt, 0)
	return &a, nil
}
