// Package volunteers implements volunteer storage on PostgreSQL.
package volunteers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/volunteerhub/internal/common"
	"github.com/dmitrijs2005/volunteerhub/internal/dbx"
	"github.com/dmitrijs2005/volunteerhub/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint breach.
const uniqueViolation = "23505"

const selectColumns = `id, first_name, last_name, email, telephone, password_hash, bio,
		 interests::text, dob, is_verify, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVolunteer(row rowScanner) (*models.Volunteer, error) {
	v := &models.Volunteer{}
	var interests string
	var dob time.Time

	err := row.Scan(&v.ID, &v.FirstName, &v.LastName, &v.Email, &v.Telephone, &v.PasswordHash, &v.Bio,
		&interests, &dob, &v.IsVerify, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(interests), &v.Interests); err != nil {
		return nil, fmt.Errorf("decoding interests: %w", err)
	}
	v.DOB = models.Date{Time: dob}

	return v, nil
}

func encodeInterests(interests []string) (string, error) {
	if interests == nil {
		interests = []string{}
	}
	b, err := json.Marshal(interests)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("db error: invalid volunteer id %q: %w", id, err)
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrorAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Volunteer, error) {
	query := `SELECT ` + selectColumns + `
		 FROM volunteers
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Volunteer, 0)
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Volunteer, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + selectColumns + `
		 FROM volunteers
		 WHERE id = $1`

	v, err := scanVolunteer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Volunteer, error) {
	query := `SELECT ` + selectColumns + `
		 FROM volunteers
		 WHERE email = $1`

	v, err := scanVolunteer(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

// Create inserts v and fills in the store-assigned id, verification flag and
// timestamps.
func (r *PostgresRepository) Create(ctx context.Context, v *models.Volunteer) (*models.Volunteer, error) {
	interests, err := encodeInterests(v.Interests)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	query :=
		`INSERT INTO volunteers (first_name, last_name, email, telephone, password_hash, bio, interests, dob)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::text::jsonb, $8)
		 RETURNING id, is_verify, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		v.FirstName, v.LastName, v.Email, v.Telephone, v.PasswordHash, v.Bio, interests, v.DOB.Time).
		Scan(&v.ID, &v.IsVerify, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}

	if v.Interests == nil {
		v.Interests = []string{}
	}

	return v, nil
}

// Update merges the non-nil fields of patch into the stored row and returns
// the result.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.VolunteerPatch) (*models.Volunteer, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var interests, dob any
	if patch.Interests != nil {
		encoded, err := encodeInterests(*patch.Interests)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		interests = encoded
	}
	if patch.DOB != nil {
		dob = patch.DOB.Time
	}

	query :=
		`UPDATE volunteers SET
		 first_name = COALESCE($2, first_name),
		 last_name = COALESCE($3, last_name),
		 email = COALESCE($4, email),
		 telephone = COALESCE($5, telephone),
		 bio = COALESCE($6, bio),
		 interests = COALESCE($7::text::jsonb, interests),
		 dob = COALESCE($8::date, dob),
		 updated_at = NOW()
		 WHERE id = $1
		 RETURNING ` + selectColumns

	v, err := scanVolunteer(r.db.QueryRowContext(ctx, query, id,
		nullable(patch.FirstName), nullable(patch.LastName), nullable(patch.Email),
		nullable(patch.Telephone), nullable(patch.Bio), interests, dob))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, mapWriteError(err)
	}

	return v, nil
}

func (r *PostgresRepository) SetVerified(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	query :=
		`UPDATE volunteers SET is_verify = TRUE, updated_at = NOW()
		 WHERE id = $1`

	return r.execAffectingOne(ctx, query, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	query := `DELETE FROM volunteers WHERE id = $1`

	return r.execAffectingOne(ctx, query, id)
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM volunteers`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) execAffectingOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
