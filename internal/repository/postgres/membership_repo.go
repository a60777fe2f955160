package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"joynex/internal/domain"
)

type membershipRepository struct {
	DB *sql.DB
}

func NewMembershipRepository(db *sql.DB) domain.MembershipRepository {
	return &membershipRepository{DB: db}
}

// Join inserts the membership row and increments current_members in one
// transaction. The group row is locked first, so two clients racing for the
// last slot are serialized and the loser gets ErrGroupFull.
func (r *membershipRepository) Join(ctx context.Context, groupID, userID string) (*domain.GroupMember, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current, max int
	lockQuery := `
		SELECT current_members, max_members
		FROM groups
		WHERE id = $1
		FOR UPDATE
	`
	err = tx.QueryRowContext(ctx, lockQuery, groupID).Scan(&current, &max)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if current >= max {
		return nil, domain.ErrGroupFull
	}

	joinedAt := time.Now()
	insertQuery := `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, insertQuery, groupID, userID, joinedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, domain.ErrAlreadyMember
		}
		return nil, err
	}

	updateQuery := `
		UPDATE groups SET current_members = current_members + 1, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, updateQuery, groupID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &domain.GroupMember{GroupID: groupID, UserID: userID, JoinedAt: joinedAt}, nil
}

// Leave deletes the membership row and decrements current_members in one
// transaction. The owner's membership is pinned and never deleted.
func (r *membershipRepository) Leave(ctx context.Context, groupID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var createdBy string
	lockQuery := `
		SELECT created_by
		FROM groups
		WHERE id = $1
		FOR UPDATE
	`
	err = tx.QueryRowContext(ctx, lockQuery, groupID).Scan(&createdBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if createdBy == userID {
		return domain.ErrOwnerCannotLeave
	}

	deleteQuery := `
		DELETE FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`
	result, err := tx.ExecContext(ctx, deleteQuery, groupID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotMember
	}

	updateQuery := `
		UPDATE groups SET current_members = current_members - 1, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, updateQuery, groupID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListByGroupID returns members ordered by join time ascending; the owner's
// row is the earliest by construction, so the owner comes first.
func (r *membershipRepository) ListByGroupID(ctx context.Context, groupID string) ([]*domain.GroupMember, error) {
	query := `
		SELECT m.group_id, m.user_id, u.full_name, m.joined_at
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.GroupMember, 0)
	for rows.Next() {
		m := &domain.GroupMember{}
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.FullName, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
