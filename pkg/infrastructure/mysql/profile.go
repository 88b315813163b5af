package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"autoshop/pkg/domain/model"
)

const profileColumns = `id, user_id, shop_id, role, full_name, email, active, created_at`

type profileRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ShopID    uuid.UUID `db:"shop_id"`
	Role      string    `db:"role"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

func (r profileRow) toModel() model.Profile {
	return model.Profile{
		ID:        r.ID,
		UserID:    r.UserID,
		ShopID:    r.ShopID,
		Role:      model.Role(r.Role),
		FullName:  r.FullName,
		Email:     r.Email,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *ProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.UserID, profile.ShopID, string(profile.Role),
		profile.FullName, profile.Email, profile.Active, profile.CreatedAt,
	)
	return errors.Wrap(err, "failed to insert profile")
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	return r.get(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
}

func (r *ProfileRepository) Find(ctx context.Context, shopID, id uuid.UUID) (*model.Profile, error) {
	return r.get(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ? AND shop_id = ?`, id, shopID)
}

func (r *ProfileRepository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Profile, error) {
	var rows []profileRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+profileColumns+` FROM profiles WHERE shop_id = ? ORDER BY created_at`, shopID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select profiles")
	}
	profiles := make([]model.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.toModel())
	}
	return profiles, nil
}

func (r *ProfileRepository) SetActive(ctx context.Context, shopID, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE profiles SET active = ? WHERE id = ? AND shop_id = ?`, active, id, shopID)
	if err != nil {
		return errors.Wrap(err, "failed to update profile")
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) get(ctx context.Context, query string, args ...interface{}) (*model.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to select profile")
	}
	profile := row.toModel()
	return &profile, nil
}
