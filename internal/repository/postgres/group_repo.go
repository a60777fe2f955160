package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"joynex/internal/domain"
)

const groupColumns = `g.id, g.name, g.category, g.description, g.date, g.time_slot,
	g.location, g.location_link, g.contact_method, g.contact_info,
	g.max_members, g.current_members, g.created_by, u.full_name, g.created_at, g.updated_at`

type groupRepository struct {
	DB *sql.DB
}

func NewGroupRepository(db *sql.DB) domain.GroupRepository {
	return &groupRepository{DB: db}
}

// Create inserts the group row and the owner's membership row in one
// transaction, so a group never exists without its first member.
func (r *groupRepository) Create(ctx context.Context, g *domain.Group) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertGroup := `
		INSERT INTO groups (name, category, description, date, time_slot, location, location_link,
			contact_method, contact_info, max_members, current_members, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12, $13)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, insertGroup,
		g.Name, g.Category, g.Description, g.Date, g.TimeSlot, g.Location, g.LocationLink,
		g.ContactMethod, g.ContactInfo, g.MaxMembers, g.CreatedBy, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
	if err != nil {
		return err
	}

	insertOwner := `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, insertOwner, g.ID, g.CreatedBy, g.CreatedAt); err != nil {
		return err
	}

	g.CurrentMembers = 1
	return tx.Commit()
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM groups g
		JOIN users u ON u.id = g.created_by
		WHERE g.id = $1
	`, groupColumns)
	g, err := scanGroup(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *groupRepository) ListAvailable(ctx context.Context, userID string, p domain.PaginationParams) ([]*domain.Group, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM groups g
		JOIN users u ON u.id = g.created_by
		WHERE NOT EXISTS (
			SELECT 1 FROM group_members m
			WHERE m.group_id = g.id AND m.user_id = $1
		)
		ORDER BY g.created_at DESC
		LIMIT $2 OFFSET $3
	`, groupColumns)
	return r.queryGroups(ctx, query, userID, p.PageSize, p.Offset())
}

func (r *groupRepository) ListJoined(ctx context.Context, userID string) ([]*domain.Group, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM groups g
		JOIN users u ON u.id = g.created_by
		JOIN group_members m ON m.group_id = g.id AND m.user_id = $1
		ORDER BY g.created_at DESC
	`, groupColumns)
	return r.queryGroups(ctx, query, userID)
}

func (r *groupRepository) ListCreated(ctx context.Context, userID string) ([]*domain.Group, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM groups g
		JOIN users u ON u.id = g.created_by
		WHERE g.created_by = $1
		ORDER BY g.created_at DESC
	`, groupColumns)
	return r.queryGroups(ctx, query, userID)
}

func (r *groupRepository) Update(ctx context.Context, groupID string, in domain.UpdateGroupInput) (*domain.Group, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if in.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *in.Description)
		n++
	}
	if in.Date != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", n))
		args = append(args, *in.Date)
		n++
	}
	if in.TimeSlot != nil {
		setClauses = append(setClauses, fmt.Sprintf("time_slot = $%d", n))
		args = append(args, *in.TimeSlot)
		n++
	}
	if in.Location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *in.Location)
		n++
	}
	if in.LocationLink != nil {
		setClauses = append(setClauses, fmt.Sprintf("location_link = $%d", n))
		args = append(args, *in.LocationLink)
		n++
	}
	if in.ContactInfo != nil {
		setClauses = append(setClauses, fmt.Sprintf("contact_info = $%d", n))
		args = append(args, *in.ContactInfo)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, groupID)
	}
	args = append(args, groupID)
	query := fmt.Sprintf(`
		UPDATE groups g SET %s
		FROM users u
		WHERE g.id = $%d AND u.id = g.created_by
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, groupColumns)
	g, err := scanGroup(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *groupRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM groups WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *groupRepository) queryGroups(ctx context.Context, query string, args ...interface{}) ([]*domain.Group, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*domain.Group, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGroup(row rowScanner) (*domain.Group, error) {
	g := &domain.Group{}
	err := row.Scan(
		&g.ID, &g.Name, &g.Category, &g.Description, &g.Date, &g.TimeSlot,
		&g.Location, &g.LocationLink, &g.ContactMethod, &g.ContactInfo,
		&g.MaxMembers, &g.CurrentMembers, &g.CreatedBy, &g.CreatedByName, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}
