package repositories

import (
	"context"
	"fmt"

	"farmconnect/models"
)

type AccountRepository struct {
	db DB
}

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, acc *models.Account) error {
	query := `
		INSERT INTO accounts (email, password, meta_name, meta_role, email_confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		acc.Email,
		acc.Password,
		acc.Metadata.Name,
		acc.Metadata.Role,
		acc.EmailConfirmedAt,
	).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return translate(err, "account")
	}
	return nil
}

const accountColumns = `id, email, password, meta_name, meta_role, email_confirmed_at, created_at, updated_at`

func (r *AccountRepository) scanOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	acc := &models.Account{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&acc.ID,
		&acc.Email,
		&acc.Password,
		&acc.Metadata.Name,
		&acc.Metadata.Role,
		&acc.EmailConfirmedAt,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "account")
	}
	return acc, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.scanOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.scanOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *AccountRepository) Confirm(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET email_confirmed_at = COALESCE(email_confirmed_at, NOW()), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return translate(err, "account")
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("account %s not found", id)
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET password = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return translate(err, "account")
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("account %s not found", id)
	}
	return nil
}

// Delete removes the account. Profiles, products and orders go with it
// through ON DELETE CASCADE.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", translate(err, "account"))
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("account %s not found", id)
	}
	return nil
}

type ProfileRepository struct {
	db DB
}

func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, name, role, location, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, p.ID, p.Name, p.Role, p.Location, p.Phone).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translate(err, "profile")
	}
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT id, name, role, location, phone, created_at, updated_at FROM profiles WHERE id = $1`

	p := &models.Profile{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Role,
		&p.Location,
		&p.Phone,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "profile")
	}
	return p, nil
}

// Update applies the non-nil fields of req. Role is not updatable.
func (r *ProfileRepository) Update(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET name = COALESCE($1, name),
		    location = COALESCE($2, location),
		    phone = COALESCE($3, phone),
		    updated_at = NOW()
		WHERE id = $4
		RETURNING id, name, role, location, phone, created_at, updated_at
	`
	p := &models.Profile{}
	err := r.db.QueryRow(ctx, query, req.Name, req.Location, req.Phone, id).Scan(
		&p.ID,
		&p.Name,
		&p.Role,
		&p.Location,
		&p.Phone,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "profile")
	}
	return p, nil
}
