// AngelaMos | 2026
// repository.go

package business

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hawkersg/hawker-backend/internal/core"
)

const licenseConstraint = "businesses_license_number_key"

type Repository interface {
	Create(ctx context.Context, b *Business) error
	GetByLicense(ctx context.Context, licenseNumber string) (*Business, error)
	GetByLicenseForUpdate(ctx context.Context, licenseNumber string) (*Business, error)
	GetByUserID(ctx context.Context, userID string) (*Business, error)
	LicenseExists(ctx context.Context, licenseNumber string) (bool, error)
	UpdateProfile(ctx context.Context, b *Business) error
	ResetTemporaryStatus(ctx context.Context, b *Business, now time.Time) (bool, error)
	ListByHawkerCentre(ctx context.Context, centre string) ([]Business, error)
	DeleteTargetRows(ctx context.Context, userID string) error

	UpsertOperatingHour(ctx context.Context, h *OperatingHour) error
	ListOperatingHours(ctx context.Context, licenseNumber string) ([]OperatingHour, error)

	CreateMenuItem(ctx context.Context, item *MenuItem) error
	GetMenuItemForUpdate(ctx context.Context, id, licenseNumber string) (*MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *MenuItem) error
	DeleteMenuItem(ctx context.Context, id, licenseNumber string) error
	ListMenuItems(ctx context.Context, licenseNumber string) ([]MenuItem, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const businessSelect = `
	SELECT b.user_id, u.email, u.username, b.license_number, b.stall_name,
	       b.licensee_name, b.establishment_address, b.hawker_centre, b.postal_code,
	       b.description, b.status, b.status_is_temporary, b.status_changed_at,
	       b.photo, u.created_at, u.updated_at
	FROM businesses b
	JOIN users u ON u.id = b.user_id`

func (r *repository) Create(ctx context.Context, b *Business) error {
	query := `
		INSERT INTO businesses (
			user_id, license_number, stall_name, licensee_name,
			establishment_address, hawker_centre, postal_code, description,
			status, status_is_temporary, status_changed_at, photo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		b.UserID,
		b.LicenseNumber,
		b.StallName,
		b.LicenseeName,
		b.EstablishmentAddress,
		b.HawkerCentre,
		b.PostalCode,
		b.Description,
		b.Status,
		b.StatusIsTemporary,
		b.StatusChangedAt,
		b.Photo,
	)
	if err != nil {
		if core.IsUniqueViolation(err) && core.ConstraintName(err) == licenseConstraint {
			return fmt.Errorf("create business: %w", ErrDuplicateLicense)
		}
		return fmt.Errorf("create business: %w", err)
	}

	return nil
}

func (r *repository) GetByLicense(
	ctx context.Context,
	licenseNumber string,
) (*Business, error) {
	return r.get(ctx, businessSelect+` WHERE b.license_number = $1`, licenseNumber)
}

func (r *repository) GetByLicenseForUpdate(
	ctx context.Context,
	licenseNumber string,
) (*Business, error) {
	return r.get(ctx,
		businessSelect+` WHERE b.license_number = $1 FOR UPDATE OF b`,
		licenseNumber)
}

func (r *repository) GetByUserID(ctx context.Context, userID string) (*Business, error) {
	return r.get(ctx, businessSelect+` WHERE b.user_id = $1`, userID)
}

func (r *repository) get(ctx context.Context, query string, arg string) (*Business, error) {
	var b Business
	err := r.db.GetContext(ctx, &b, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get business: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	return &b, nil
}

func (r *repository) LicenseExists(ctx context.Context, licenseNumber string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM businesses WHERE license_number = $1)`,
		licenseNumber)
	if err != nil {
		return false, fmt.Errorf("check license exists: %w", err)
	}
	return exists, nil
}

func (r *repository) UpdateProfile(ctx context.Context, b *Business) error {
	query := `
		UPDATE businesses
		SET stall_name = $2,
		    description = $3,
		    status = $4,
		    status_is_temporary = $5,
		    status_changed_at = $6,
		    photo = $7
		WHERE license_number = $1`

	result, err := r.db.ExecContext(ctx, query,
		b.LicenseNumber,
		b.StallName,
		b.Description,
		b.Status,
		b.StatusIsTemporary,
		b.StatusChangedAt,
		b.Photo,
	)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}

	return requireOne(result, "update business")
}

// ResetTemporaryStatus reopens b only if its status row is unchanged since
// it was read, so a closure recorded concurrently is never overwritten.
func (r *repository) ResetTemporaryStatus(
	ctx context.Context,
	b *Business,
	now time.Time,
) (bool, error) {
	query := `
		UPDATE businesses
		SET status = 'open', status_is_temporary = false, status_changed_at = $2
		WHERE license_number = $1
		  AND status_is_temporary
		  AND status_changed_at = $3`

	result, err := r.db.ExecContext(ctx, query, b.LicenseNumber, now, b.StatusChangedAt)
	if err != nil {
		return false, fmt.Errorf("reset business status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reset business status: %w", err)
	}
	return rows > 0, nil
}

func (r *repository) ListByHawkerCentre(
	ctx context.Context,
	centre string,
) ([]Business, error) {
	var list []Business
	err := r.db.SelectContext(ctx, &list,
		businessSelect+` WHERE b.hawker_centre = $1 ORDER BY b.license_number`,
		centre)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return list, nil
}

// DeleteTargetRows removes reviews and favourites pointing at the business.
func (r *repository) DeleteTargetRows(ctx context.Context, userID string) error {
	for _, table := range []string{"reviews", "favourites"} {
		query := `DELETE FROM ` + table + ` WHERE target_type = 'business' AND target_id = $1`
		if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("delete %s for business: %w", table, err)
		}
	}
	return nil
}

func (r *repository) UpsertOperatingHour(ctx context.Context, h *OperatingHour) error {
	query := `
		INSERT INTO operating_hours (id, license_number, day, start_time, end_time)
		VALUES ($1, $2, $3, $4::time, $5::time)
		ON CONFLICT ON CONSTRAINT operating_hours_license_day_key
		DO UPDATE SET start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		h.ID,
		h.LicenseNumber,
		h.Day,
		h.StartTime,
		h.EndTime,
	).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("upsert operating hour: %w", err)
	}

	return nil
}

func (r *repository) ListOperatingHours(
	ctx context.Context,
	licenseNumber string,
) ([]OperatingHour, error) {
	query := `
		SELECT id, license_number, day,
		       to_char(start_time, 'HH24:MI') AS start_time,
		       to_char(end_time, 'HH24:MI') AS end_time
		FROM operating_hours
		WHERE license_number = $1
		ORDER BY array_position(ARRAY['Monday','Tuesday','Wednesday','Thursday',
		                              'Friday','Saturday','Sunday'], day)`

	hours := []OperatingHour{}
	if err := r.db.SelectContext(ctx, &hours, query, licenseNumber); err != nil {
		return nil, fmt.Errorf("list operating hours: %w", err)
	}
	return hours, nil
}

const menuItemColumns = `id, license_number, name, price, photo, created_at, updated_at`

func (r *repository) CreateMenuItem(ctx context.Context, item *MenuItem) error {
	query := `
		INSERT INTO menu_items (id, license_number, name, price, photo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		item.ID,
		item.LicenseNumber,
		item.Name,
		item.Price,
		item.Photo,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}

	return nil
}

func (r *repository) GetMenuItemForUpdate(
	ctx context.Context,
	id, licenseNumber string,
) (*MenuItem, error) {
	query := `SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE id = $1 AND license_number = $2
		FOR UPDATE`

	var item MenuItem
	err := r.db.GetContext(ctx, &item, query, id, licenseNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get menu item: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return &item, nil
}

func (r *repository) UpdateMenuItem(ctx context.Context, item *MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $3, price = $4, photo = $5, updated_at = NOW()
		WHERE id = $1 AND license_number = $2
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		item.ID,
		item.LicenseNumber,
		item.Name,
		item.Price,
		item.Photo,
	).Scan(&item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update menu item: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	return nil
}

func (r *repository) DeleteMenuItem(ctx context.Context, id, licenseNumber string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM menu_items WHERE id = $1 AND license_number = $2`,
		id, licenseNumber)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return requireOne(result, "delete menu item")
}

func (r *repository) ListMenuItems(
	ctx context.Context,
	licenseNumber string,
) ([]MenuItem, error) {
	query := `SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE license_number = $1
		ORDER BY created_at, id`

	items := []MenuItem{}
	if err := r.db.SelectContext(ctx, &items, query, licenseNumber); err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

func requireOne(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
