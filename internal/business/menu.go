// AngelaMos | 2026
// menu.go

package business

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hawkersg/hawker-backend/internal/core"
)

var ErrMenuItemNotFound = fmt.Errorf("menu item: %w", core.ErrNotFound)

type MenuItemInput struct {
	Name  string
	Price decimal.Decimal
	Photo *string
}

type MenuItemPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Photo       *string
	RemovePhoto bool
}

func (s *Service) AddMenuItem(
	ctx context.Context,
	pathLicense, tokenLicense string,
	in MenuItemInput,
) (*MenuItem, error) {
	item := newMenuItem(pathLicense, in)

	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)
		if _, err := s.authorize(ctx, repo, pathLicense, tokenLicense); err != nil {
			return err
		}
		return repo.CreateMenuItem(ctx, item)
	})
	if err != nil {
		return nil, fmt.Errorf("add menu item: %w", err)
	}
	return item, nil
}

// UpdateMenuItem changes only the supplied fields. The row is locked
// between read and write so concurrent patches to different fields both
// land. An item belonging to another business is reported as not found.
func (s *Service) UpdateMenuItem(
	ctx context.Context,
	pathLicense, tokenLicense, itemID string,
	patch MenuItemPatch,
) (*MenuItem, error) {
	var item *MenuItem

	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)
		if _, err := s.authorize(ctx, repo, pathLicense, tokenLicense); err != nil {
			return err
		}
		if uuid.Validate(itemID) != nil {
			return ErrMenuItemNotFound
		}

		var err error
		item, err = repo.GetMenuItemForUpdate(ctx, itemID, pathLicense)
		if err != nil {
			return menuItemError(err)
		}
		patch.apply(item)

		return menuItemError(repo.UpdateMenuItem(ctx, item))
	})
	if err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	return item, nil
}

func (p MenuItemPatch) apply(item *MenuItem) {
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	switch {
	case p.RemovePhoto:
		item.Photo = nil
	case p.Photo != nil:
		item.Photo = p.Photo
	}
}

func (s *Service) DeleteMenuItem(
	ctx context.Context,
	pathLicense, tokenLicense, itemID string,
) error {
	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)
		if _, err := s.authorize(ctx, repo, pathLicense, tokenLicense); err != nil {
			return err
		}
		if uuid.Validate(itemID) != nil {
			return ErrMenuItemNotFound
		}
		return menuItemError(repo.DeleteMenuItem(ctx, itemID, pathLicense))
	})
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}

func (s *Service) ListMenuItems(ctx context.Context, licenseNumber string) ([]MenuItem, error) {
	if _, err := s.repo.GetByLicense(ctx, licenseNumber); err != nil {
		return nil, err
	}
	return s.repo.ListMenuItems(ctx, licenseNumber)
}

// menuItemError reports a missing row as ErrMenuItemNotFound once the
// owning business is known to exist.
func menuItemError(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return ErrMenuItemNotFound
	}
	return err
}

func newMenuItem(licenseNumber string, in MenuItemInput) *MenuItem {
	return &MenuItem{
		ID:            uuid.New().String(),
		LicenseNumber: licenseNumber,
		Name:          strings.TrimSpace(in.Name),
		Price:         in.Price,
		Photo:         in.Photo,
	}
}
