// AngelaMos | 2026
// service_test.go

package business

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/media"
	"github.com/hawkersg/hawker-backend/internal/user"
)

var businessColumns = []string{
	"user_id", "email", "username", "license_number", "stall_name",
	"licensee_name", "establishment_address", "hawker_centre", "postal_code",
	"description", "status", "status_is_temporary", "status_changed_at",
	"photo", "created_at", "updated_at",
}

var singapore = time.FixedZone("SGT", 8*60*60)

type fixture struct {
	svc  *Service
	mock sqlmock.Sqlmock
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "pgx")
	photos, err := media.NewStore(config.UploadConfig{
		Dir:        t.TempDir(),
		MaxBytes:   1 << 20,
		PublicPath: "/uploads",
	}, nil)
	require.NoError(t, err)

	svc := NewService(
		core.NewTransactor(db),
		db,
		user.NewService(user.NewRepository(db), nil),
		photos,
		singapore,
		config.BusinessConfig{OrphanPolicy: policy},
		nil,
	)
	return &fixture{svc: svc, mock: mock}
}

func businessRow(license string, status Status, temporary bool, changedAt *time.Time) []driver.Value {
	now := time.Now()
	var changed driver.Value
	if changedAt != nil {
		changed = *changedAt
	}
	return []driver.Value{
		"0b8f7d52-4a8e-4f0e-9d6b-" + "0000000000" + license[len(license)-2:],
		"owner-" + license + "@example.com", "owner", license, "Ah Seng Laksa",
		"Tan Ah Seng", "1 Kadayanallur St", "Maxwell Food Centre", "069184",
		"", string(status), temporary, changed,
		nil, now, now,
	}
}

func expectBusiness(mock sqlmock.Sqlmock, license string, row []driver.Value) {
	q := mock.ExpectQuery(`FROM businesses b`).WithArgs(license)
	if row == nil {
		q.WillReturnRows(sqlmock.NewRows(businessColumns))
		return
	}
	q.WillReturnRows(sqlmock.NewRows(businessColumns).AddRow(row...))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	in := CreateInput{
		Email:                "owner@example.com",
		Password:             "correct-horse",
		Username:             "owner",
		LicenseNumber:        "L001",
		LicenseeName:         "Tan Ah Seng",
		EstablishmentAddress: "1 Kadayanallur St",
		HawkerCentre:         "Maxwell Food Centre",
		PostalCode:           "069184",
	}

	t.Run("existing license is rejected before email is checked", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM businesses`).
			WithArgs("L001").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := f.svc.Create(ctx, in)
		assert.ErrorIs(t, err, ErrDuplicateLicense)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("existing email", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM businesses`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users`).
			WithArgs("owner@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := f.svc.Create(ctx, in)
		assert.ErrorIs(t, err, user.ErrDuplicateEmail)
	})

	t.Run("license claimed concurrently maps the unique index", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		now := time.Now()

		f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM businesses`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		f.mock.ExpectExec(`INSERT INTO businesses`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: licenseConstraint})
		f.mock.ExpectRollback()

		_, err := f.svc.Create(ctx, in)
		assert.ErrorIs(t, err, ErrDuplicateLicense)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("creates an open business", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		now := time.Now()

		f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM businesses`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "owner@example.com", sqlmock.AnyArg(), "owner", "business").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		f.mock.ExpectExec(`INSERT INTO businesses`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectCommit()

		b, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, b.Status)
		assert.False(t, b.StatusIsTemporary)
		assert.Nil(t, b.StallName)
		assert.NotEmpty(t, b.UserID)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()
	open := StatusOpen

	t.Run("token for L001 cannot edit L002", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		expectBusiness(f.mock, "L002", businessRow("L002", StatusOpen, false, nil))

		_, err := f.svc.UpdateProfile(ctx, "L002", "L001", ProfilePatch{Status: &open})
		assert.ErrorIs(t, err, core.ErrForbidden)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("missing business wins over a mismatched token", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		expectBusiness(f.mock, "L999", nil)

		_, err := f.svc.UpdateProfile(ctx, "L999", "L001", ProfilePatch{Status: &open})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("menu item of another business is not found", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		itemID := "9c1f6a0e-2b7d-4c1e-8f3a-5d2e7b9a0c44"

		f.mock.ExpectBegin()
		expectBusiness(f.mock, "L001", businessRow("L001", StatusOpen, false, nil))
		f.mock.ExpectExec(`DELETE FROM menu_items`).
			WithArgs(itemID, "L001").
			WillReturnResult(sqlmock.NewResult(0, 0))
		f.mock.ExpectRollback()

		err := f.svc.DeleteMenuItem(ctx, "L001", "L001", itemID)
		assert.ErrorIs(t, err, ErrMenuItemNotFound)
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestNeedsDailyReset(t *testing.T) {
	closedAt := time.Date(2026, 3, 9, 23, 0, 0, 0, singapore)
	b := &Business{Status: StatusClosed, StatusIsTemporary: true, StatusChangedAt: &closedAt}

	assert.False(t, b.NeedsDailyReset(closedAt.Add(30*time.Minute), singapore))
	assert.True(t, b.NeedsDailyReset(closedAt.Add(90*time.Minute), singapore))
	assert.False(t, b.NeedsDailyReset(closedAt.Add(90*time.Minute), time.FixedZone("UTC-2", -2*60*60)))

	b.StatusIsTemporary = false
	assert.False(t, b.NeedsDailyReset(closedAt.Add(48*time.Hour), singapore))
}

func TestGetAppliesNextDayReset(t *testing.T) {
	ctx := context.Background()
	closedAt := time.Date(2026, 3, 9, 12, 0, 0, 0, singapore)
	nextMorning := time.Date(2026, 3, 10, 7, 0, 0, 0, singapore)

	t.Run("reopens and persists", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		f.svc.now = func() time.Time { return nextMorning }

		expectBusiness(f.mock, "L001", businessRow("L001", StatusClosed, true, &closedAt))
		f.mock.ExpectExec(`UPDATE businesses\s+SET status = 'open'`).
			WithArgs("L001", nextMorning, closedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		b, err := f.svc.Get(ctx, "L001")
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, b.Status)
		assert.False(t, b.StatusIsTemporary)
		assert.Equal(t, nextMorning, *b.StatusChangedAt)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("same day stays closed", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		f.svc.now = func() time.Time { return closedAt.Add(time.Hour) }

		expectBusiness(f.mock, "L001", businessRow("L001", StatusClosed, true, &closedAt))

		b, err := f.svc.Get(ctx, "L001")
		require.NoError(t, err)
		assert.Equal(t, StatusClosed, b.Status)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("lost race rereads the row", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		f.svc.now = func() time.Time { return nextMorning }
		reclosed := nextMorning.Add(-time.Minute)

		expectBusiness(f.mock, "L001", businessRow("L001", StatusClosed, true, &closedAt))
		f.mock.ExpectExec(`UPDATE businesses\s+SET status = 'open'`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		expectBusiness(f.mock, "L001", businessRow("L001", StatusClosed, true, &reclosed))

		b, err := f.svc.Get(ctx, "L001")
		require.NoError(t, err)
		assert.Equal(t, StatusClosed, b.Status)
		assert.Equal(t, reclosed, *b.StatusChangedAt)
	})
}

func TestUpdateProfileStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.OrphanPolicyOrphan)
	now := time.Date(2026, 3, 9, 15, 0, 0, 0, singapore)
	f.svc.now = func() time.Time { return now }

	closed := StatusClosed
	todayOnly := true
	empty := ""

	expectBusiness(f.mock, "L001", businessRow("L001", StatusOpen, false, nil))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE OF b`).
		WithArgs("L001").
		WillReturnRows(sqlmock.NewRows(businessColumns).
			AddRow(businessRow("L001", StatusOpen, false, nil)...))
	f.mock.ExpectExec(`UPDATE businesses\s+SET stall_name`).
		WithArgs("L001", nil, "", "closed", true, now, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	b, err := f.svc.UpdateProfile(ctx, "L001", "L001", ProfilePatch{
		StallName:       &empty,
		Status:          &closed,
		StatusTodayOnly: &todayOnly,
	})
	require.NoError(t, err)
	assert.Nil(t, b.StallName)
	assert.Equal(t, StatusClosed, b.Status)
	assert.True(t, b.StatusIsTemporary)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateProfileAppliesNextDayReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.OrphanPolicyOrphan)
	closedAt := time.Date(2026, 3, 9, 12, 0, 0, 0, singapore)
	nextMorning := time.Date(2026, 3, 10, 7, 0, 0, 0, singapore)
	f.svc.now = func() time.Time { return nextMorning }

	description := "Fresh noodles"
	stale := businessRow("L001", StatusClosed, true, &closedAt)

	expectBusiness(f.mock, "L001", stale)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE OF b`).
		WithArgs("L001").
		WillReturnRows(sqlmock.NewRows(businessColumns).AddRow(stale...))
	f.mock.ExpectExec(`UPDATE businesses\s+SET stall_name`).
		WithArgs("L001", "Ah Seng Laksa", "Fresh noodles", "open", false, nextMorning, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	b, err := f.svc.UpdateProfile(ctx, "L001", "L001", ProfilePatch{Description: &description})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, b.Status)
	assert.False(t, b.StatusIsTemporary)
	assert.Equal(t, "Fresh noodles", b.Description)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateMenuItemLocksRow(t *testing.T) {
	ctx := context.Background()
	itemID := "9c1f6a0e-2b7d-4c1e-8f3a-5d2e7b9a0c44"
	menuColumns := []string{"id", "license_number", "name", "price", "photo", "created_at", "updated_at"}

	t.Run("read and write share one transaction", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		now := time.Now()
		price := decimal.RequireFromString("6.80")

		f.mock.ExpectBegin()
		expectBusiness(f.mock, "L001", businessRow("L001", StatusOpen, false, nil))
		f.mock.ExpectQuery(`FROM menu_items\s+WHERE id = \$1 AND license_number = \$2\s+FOR UPDATE`).
			WithArgs(itemID, "L001").
			WillReturnRows(sqlmock.NewRows(menuColumns).
				AddRow(itemID, "L001", "Prawn Mee", "5.50", nil, now, now))
		f.mock.ExpectQuery(`UPDATE menu_items`).
			WithArgs(itemID, "L001", "Prawn Mee", "6.8", nil).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
		f.mock.ExpectCommit()

		item, err := f.svc.UpdateMenuItem(ctx, "L001", "L001", itemID, MenuItemPatch{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "Prawn Mee", item.Name)
		assert.Equal(t, "6.80", ToMenuItemResponse(item).Price)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("missing item rolls back", func(t *testing.T) {
		f := newFixture(t, config.OrphanPolicyOrphan)
		name := "Laksa"

		f.mock.ExpectBegin()
		expectBusiness(f.mock, "L001", businessRow("L001", StatusOpen, false, nil))
		f.mock.ExpectQuery(`FOR UPDATE`).
			WithArgs(itemID, "L001").
			WillReturnRows(sqlmock.NewRows(menuColumns))
		f.mock.ExpectRollback()

		_, err := f.svc.UpdateMenuItem(ctx, "L001", "L001", itemID, MenuItemPatch{Name: &name})
		assert.ErrorIs(t, err, ErrMenuItemNotFound)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestSetOperatingHoursUpserts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.OrphanPolicyOrphan)

	f.mock.ExpectBegin()
	expectBusiness(f.mock, "L001", businessRow("L001", StatusOpen, false, nil))
	f.mock.ExpectQuery(`ON CONFLICT ON CONSTRAINT operating_hours_license_day_key`).
		WithArgs(sqlmock.AnyArg(), "L001", "Monday", "09:00", "17:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-monday"))
	f.mock.ExpectQuery(`ON CONFLICT ON CONSTRAINT operating_hours_license_day_key`).
		WithArgs(sqlmock.AnyArg(), "L001", "Monday", "10:00", "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-monday"))
	f.mock.ExpectQuery(`FROM operating_hours`).
		WithArgs("L001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "license_number", "day", "start_time", "end_time"}).
			AddRow("existing-monday", "L001", "Monday", "10:00", "18:00"))
	f.mock.ExpectCommit()

	hours, err := f.svc.SetOperatingHours(ctx, "L001", "L001", []OperatingHourInput{
		{Day: "Monday", StartTime: "09:00", EndTime: "17:00"},
		{Day: "Monday", StartTime: "10:00", EndTime: "18:00"},
	})
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.Equal(t, "10:00", hours[0].StartTime)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMenuItemPriceRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.OrphanPolicyOrphan)
	now := time.Now()

	price, err := core.ParseMoney("12.50")
	require.NoError(t, err)

	f.mock.ExpectBegin()
	expectBusiness(f.mock, "L001", businessRow("L001", StatusOpen, false, nil))
	f.mock.ExpectQuery(`INSERT INTO menu_items`).
		WithArgs(sqlmock.AnyArg(), "L001", "Laksa", "12.5", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	f.mock.ExpectCommit()

	item, err := f.svc.AddMenuItem(ctx, "L001", "L001", MenuItemInput{Name: " Laksa ", Price: price})
	require.NoError(t, err)
	assert.Equal(t, "12.50", ToMenuItemResponse(item).Price)

	expectBusiness(f.mock, "L001", businessRow("L001", StatusOpen, false, nil))
	f.mock.ExpectQuery(`FROM menu_items`).
		WithArgs("L001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "license_number", "name", "price", "photo", "created_at", "updated_at",
		}).AddRow(item.ID, "L001", "Laksa", "12.50", nil, now, now))

	items, err := f.svc.ListMenuItems(ctx, "L001")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "12.50", ToMenuItemResponse(&items[0]).Price)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDeleteCascadePolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, config.OrphanPolicyCascade)
	row := businessRow("L001", StatusOpen, false, nil)
	userID := row[0].(string)

	f.mock.ExpectBegin()
	expectBusiness(f.mock, "L001", row)
	f.mock.ExpectExec(`DELETE FROM reviews WHERE target_type = 'business'`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	f.mock.ExpectExec(`DELETE FROM favourites WHERE target_type = 'business'`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`DELETE FROM users`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	require.NoError(t, f.svc.Delete(ctx, "L001", "L001"))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBusinessResponseEmail(t *testing.T) {
	b := &Business{UserID: "u1", Email: "owner@example.com", LicenseNumber: "L001", Status: StatusOpen}

	assert.Empty(t, ToBusinessResponse(b, false).Email)
	assert.Equal(t, "owner@example.com", ToBusinessResponse(b, true).Email)
}
