package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"joynex/internal/domain"
)

type verificationCodeRepository struct {
	DB *sql.DB
}

// NewVerificationCodeRepository returns a domain.VerificationCodeRepository implemented with Postgres.
func NewVerificationCodeRepository(db *sql.DB) domain.VerificationCodeRepository {
	return &verificationCodeRepository{DB: db}
}

func (r *verificationCodeRepository) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO verification_codes (email, code_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.DB.ExecContext(ctx, query, email, codeHash, expiresAt)
	return err
}

func (r *verificationCodeRepository) Consume(ctx context.Context, email, codeHash string) (consumed bool, err error) {
	var id string
	query := `
		SELECT id FROM verification_codes
		WHERE email = $1 AND code_hash = $2 AND expires_at > NOW()
		LIMIT 1
	`
	err = r.DB.QueryRowContext(ctx, query, email, codeHash).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	deleteQuery := `DELETE FROM verification_codes WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, deleteQuery, id); err != nil {
		return false, err
	}
	return true, nil
}
