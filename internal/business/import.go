// AngelaMos | 2026
// import.go

package business

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/sheet"
)

const maxMenuNameRunes = 100

var (
	menuNameColumns  = []string{"name", "item", "item name", "dish"}
	menuPriceColumns = []string{"price", "price (sgd)", "cost"}
	menuPhotoColumns = []string{"photo", "photo url", "image"}
)

// ImportMenuItems adds every row of the workbook's first sheet as a menu
// item. Any invalid row rejects the whole import.
func (s *Service) ImportMenuItems(
	ctx context.Context,
	pathLicense, tokenLicense string,
	r io.Reader,
) ([]MenuItem, error) {
	if _, err := s.authorize(ctx, s.repo, pathLicense, tokenLicense); err != nil {
		return nil, err
	}

	table, err := sheet.Read(r)
	if err != nil {
		return nil, fmt.Errorf("import menu: %w: %w", core.ErrInvalidInput, err)
	}

	inputs, err := parseMenuRows(table)
	if err != nil {
		return nil, err
	}

	items := make([]MenuItem, 0, len(inputs))
	err = s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)
		for _, in := range inputs {
			item := newMenuItem(pathLicense, in)
			if err := repo.CreateMenuItem(ctx, item); err != nil {
				return err
			}
			items = append(items, *item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import menu: %w", err)
	}

	s.logger.Info("menu imported", "license_number", pathLicense, "items", len(items))
	return items, nil
}

func parseMenuRows(table *sheet.Table) ([]MenuItemInput, error) {
	if !table.Has(menuNameColumns...) || !table.Has(menuPriceColumns...) {
		return nil, fmt.Errorf("import menu: name and price columns are required: %w",
			core.ErrInvalidInput)
	}

	inputs := make([]MenuItemInput, 0, len(table.Rows))
	for i, row := range table.Rows {
		line := i + 2

		name := table.Value(row, menuNameColumns...)
		priceText := table.Value(row, menuPriceColumns...)
		photo := table.Value(row, menuPhotoColumns...)

		if name == "" && priceText == "" && photo == "" {
			continue
		}
		if name == "" {
			return nil, rowError(line, "name is required")
		}
		if utf8.RuneCountInString(name) > maxMenuNameRunes {
			return nil, rowError(line, "name must be at most 100 characters")
		}

		price, err := core.ParseMoney(strings.TrimPrefix(priceText, "$"))
		if err != nil {
			return nil, rowError(line, "price must be a non-negative amount with at most 2 decimal places")
		}

		in := MenuItemInput{Name: name, Price: price}
		if photo != "" {
			in.Photo = &photo
		}
		inputs = append(inputs, in)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("import menu: no menu rows: %w", core.ErrInvalidInput)
	}
	return inputs, nil
}

// RowError names the spreadsheet line that failed validation.
type RowError struct {
	Line    int
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Message)
}

func (e *RowError) Unwrap() error {
	return core.ErrInvalidInput
}

func rowError(line int, msg string) error {
	return &RowError{Line: line, Message: msg}
}
