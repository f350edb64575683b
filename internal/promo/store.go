package promo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/database"
	"github.com/fishmarket/backend/internal/domain"
)

// Store is the promo code registry. Codes are unique among non-deleted rows
// and matched case-sensitively.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type CreateRequest struct {
	Code  string
	Kind  domain.DiscountKind
	Value decimal.Decimal
}

func (r CreateRequest) validate() error {
	if r.Code == "" {
		return domain.Validationf("promo code is required")
	}
	if r.Kind != domain.DiscountPercentage && r.Kind != domain.DiscountFixed {
		return domain.Validationf("unknown discount kind %q", r.Kind)
	}
	if !r.Value.IsPositive() {
		return domain.Validationf("discount value must be positive")
	}
	if r.Kind == domain.DiscountPercentage && r.Value.GreaterThan(decimal.NewFromInt(100)) {
		return domain.Validationf("percentage discount cannot exceed 100")
	}
	return nil
}

func (s *Store) Create(ctx context.Context, req CreateRequest) (*domain.PromoCode, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	promo := &domain.PromoCode{
		Code:   req.Code,
		Kind:   req.Kind,
		Value:  req.Value,
		Active: true,
		Status: domain.StatusActive,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO promo_codes (code, kind, value, times_used, active, status, created_at)
		VALUES ($1, $2, $3, 0, TRUE, 'active', NOW())
		RETURNING id, created_at
	`, req.Code, req.Kind, req.Value).Scan(&promo.ID, &promo.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, domain.Conflictf("promo code %q already exists", req.Code)
		}
		return nil, fmt.Errorf("create promo code: %w", err)
	}

	return promo, nil
}

type UpdateRequest struct {
	Value  *decimal.Decimal
	Active *bool
}

func (s *Store) Update(ctx context.Context, id int64, req UpdateRequest) error {
	if req.Value != nil && !req.Value.IsPositive() {
		return domain.Validationf("discount value must be positive")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE promo_codes
		SET value = COALESCE($2, value), active = COALESCE($3, active)
		WHERE id = $1 AND status = 'active'
	`, id, req.Value, req.Active)
	if err != nil {
		return fmt.Errorf("update promo code: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("promo code %d not found", id)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE promo_codes SET status = 'deleted', deleted_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, id)
	if err != nil {
		return fmt.Errorf("delete promo code: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("promo code %d not found", id)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (*domain.PromoCode, error) {
	promo := &domain.PromoCode{Status: domain.StatusActive}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, kind, value, times_used, active, created_at
		FROM promo_codes
		WHERE id = $1 AND status = 'active'
	`, id).Scan(&promo.ID, &promo.Code, &promo.Kind, &promo.Value, &promo.TimesUsed, &promo.Active, &promo.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFoundf("promo code %d not found", id)
		}
		return nil, fmt.Errorf("get promo code: %w", err)
	}

	return promo, nil
}

func (s *Store) List(ctx context.Context) ([]domain.PromoCode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, kind, value, times_used, active, created_at
		FROM promo_codes
		WHERE status = 'active'
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list promo codes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	promos := []domain.PromoCode{}
	for rows.Next() {
		promo := domain.PromoCode{Status: domain.StatusActive}
		if err := rows.Scan(&promo.ID, &promo.Code, &promo.Kind, &promo.Value, &promo.TimesUsed, &promo.Active, &promo.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan promo code: %w", err)
		}
		promos = append(promos, promo)
	}

	return promos, rows.Err()
}

// Redeem increments the code's usage counter and returns the discount terms,
// all in one statement. Running the increment SQL-side means two concurrent
// submissions against the same code can never lose an update, and a later
// rollback of the surrounding transaction undoes it.
func (s *Store) Redeem(ctx context.Context, q database.Querier, code string) (*domain.PromoCode, error) {
	promo := &domain.PromoCode{Code: code, Active: true, Status: domain.StatusActive}

	err := q.QueryRowContext(ctx, `
		UPDATE promo_codes
		SET times_used = times_used + 1
		WHERE code = $1 AND active AND status = 'active'
		RETURNING id, kind, value, times_used
	`, code).Scan(&promo.ID, &promo.Kind, &promo.Value, &promo.TimesUsed)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFoundf("promo code %q not found or inactive", code)
		}
		return nil, fmt.Errorf("redeem promo code: %w", err)
	}

	return promo, nil
}
