package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/appealdesk/appealdesk/internal/domain/profile"
	"github.com/appealdesk/appealdesk/internal/pkg/errors"
)

// ProfileRepository implements profile.Repository
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB) profile.Repository {
	return &ProfileRepository{db: db}
}

const profileColumns = "id, email, name, password_hash, role, plan, appeal_quota, trial_end_date, created_at, updated_at"

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO profiles (email, name, password_hash, role, plan, appeal_quota, trial_end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var quota sql.NullInt64
	if p.AppealQuota != nil {
		quota = sql.NullInt64{Int64: *p.AppealQuota, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		p.Email, p.Name, p.PasswordHash, p.Role, p.Plan, quota,
		p.TrialEndDate.Unix(), now.Unix(), now.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("A profile with this email already exists")
		}
		return errors.DatabaseError("Failed to create profile", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.DatabaseError("Failed to get profile ID", err)
	}

	p.ID = id
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*profile.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = ?", id)
	return scanProfile(row)
}

// GetByEmail retrieves a profile by email
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE email = ?", email)
	return scanProfile(row)
}

// List retrieves profiles matching the filter with pagination
func (r *ProfileRepository) List(ctx context.Context, filter profile.Filter, limit, offset int) ([]*profile.Profile, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filter.Search != "" {
		where += " AND (email LIKE ? OR name LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Plan != "" {
		where += " AND plan = ?"
		args = append(args, filter.Plan)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles"+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count profiles", err)
	}

	query := "SELECT " + profileColumns + " FROM profiles" + where + " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list profiles", err)
	}
	defer rows.Close()

	var profiles []*profile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate profiles", err)
	}

	return profiles, total, nil
}

// UpdateSubscription applies an admin plan/quota patch
func (r *ProfileRepository) UpdateSubscription(ctx context.Context, id int64, patch profile.QuotaPatch) (*profile.Profile, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().Unix()}

	if patch.Plan != nil {
		sets = append(sets, "plan = ?")
		args = append(args, *patch.Plan)
	}
	if patch.SetUnlimited {
		sets = append(sets, "appeal_quota = NULL")
	} else if patch.AppealQuota != nil {
		sets = append(sets, "appeal_quota = ?")
		args = append(args, *patch.AppealQuota)
	}

	args = append(args, id)
	result, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to update profile", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return nil, errors.NotFound("Profile")
	}

	return r.GetByID(ctx, id)
}

// ExpireTrials floors the quota of starter profiles whose trial has lapsed
func (r *ProfileRepository) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET appeal_quota = 0, updated_at = ?
		WHERE plan = ? AND trial_end_date < ?
		  AND (appeal_quota IS NULL OR appeal_quota > 0)
	`, now.Unix(), profile.PlanStarter, now.Unix())
	if err != nil {
		return 0, errors.DatabaseError("Failed to expire trials", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(s scanner) (*profile.Profile, error) {
	var p profile.Profile
	var name sql.NullString
	var quota sql.NullInt64
	var trialEnd, createdAt, updatedAt int64

	err := s.Scan(&p.ID, &p.Email, &name, &p.PasswordHash, &p.Role, &p.Plan,
		&quota, &trialEnd, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Profile")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to scan profile", err)
	}

	if name.Valid {
		p.Name = name.String
	}
	if quota.Valid {
		v := quota.Int64
		p.AppealQuota = &v
	}
	p.TrialEndDate = time.Unix(trialEnd, 0)
	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)

	return &p, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
