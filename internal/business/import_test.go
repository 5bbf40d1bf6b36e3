// AngelaMos | 2026
// import_test.go

package business

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/sheet"
)

func workbook(t *testing.T, rows [][]any) *sheet.Table {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	name := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(name, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := sheet.Read(&buf)
	require.NoError(t, err)
	return table
}

func TestParseMenuRows(t *testing.T) {
	t.Run("header aliases and blank rows", func(t *testing.T) {
		table := workbook(t, [][]any{
			{"Dish", "Price (SGD)", "Image"},
			{"Char Kway Teow", "$5.50", ""},
			{"", "", ""},
			{"Carrot Cake", "4", "https://cdn.example.com/cc.jpg"},
		})

		inputs, err := parseMenuRows(table)
		require.NoError(t, err)
		require.Len(t, inputs, 2)

		assert.Equal(t, "Char Kway Teow", inputs[0].Name)
		assert.Equal(t, "5.50", inputs[0].Price.StringFixed(2))
		assert.Nil(t, inputs[0].Photo)
		require.NotNil(t, inputs[1].Photo)
		assert.Equal(t, "https://cdn.example.com/cc.jpg", *inputs[1].Photo)
	})

	t.Run("bad price names the line", func(t *testing.T) {
		table := workbook(t, [][]any{
			{"name", "price"},
			{"Laksa", "6.00"},
			{"Mee Siam", "4.999"},
		})

		_, err := parseMenuRows(table)
		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 3, rowErr.Line)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("missing name", func(t *testing.T) {
		table := workbook(t, [][]any{
			{"name", "price"},
			{"", "3.00"},
		})

		_, err := parseMenuRows(table)
		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 2, rowErr.Line)
	})

	t.Run("price column required", func(t *testing.T) {
		table := workbook(t, [][]any{
			{"name", "notes"},
			{"Laksa", "spicy"},
		})

		_, err := parseMenuRows(table)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("header only", func(t *testing.T) {
		table := workbook(t, [][]any{{"name", "price"}, {"", ""}})

		_, err := parseMenuRows(table)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})
}

func TestPriceUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  string
		fixed string
	}{
		{"string", `{"name":"Laksa","price":"12.50"}`, "12.50", "12.50"},
		{"number", `{"name":"Laksa","price":12.5}`, "12.5", "12.50"},
		{"integer", `{"name":"Laksa","price":4}`, "4", "4.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MenuItemRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, Price(tt.want), req.Price)

			d, err := core.ParseMoney(string(req.Price))
			require.NoError(t, err)
			assert.Equal(t, tt.fixed, d.StringFixed(2))
		})
	}

	var req MenuItemRequest
	assert.Error(t, json.Unmarshal([]byte(`{"price":true}`), &req))
}

func TestOperatingHourInputs(t *testing.T) {
	t.Run("normalizes times", func(t *testing.T) {
		entries, msg := operatingHourInputs([]OperatingHourRequest{
			{Day: "Monday", StartTime: "9:00", EndTime: "17:30"},
		})
		assert.Empty(t, msg)
		require.Len(t, entries, 1)
		assert.Equal(t, "09:00", entries[0].StartTime)
		assert.Equal(t, "17:30", entries[0].EndTime)
	})

	t.Run("duplicate day", func(t *testing.T) {
		_, msg := operatingHourInputs([]OperatingHourRequest{
			{Day: "Monday", StartTime: "09:00", EndTime: "17:00"},
			{Day: "Monday", StartTime: "10:00", EndTime: "18:00"},
		})
		assert.Contains(t, msg, "more than once")
	})

	t.Run("end before start", func(t *testing.T) {
		_, msg := operatingHourInputs([]OperatingHourRequest{
			{Day: "Friday", StartTime: "18:00", EndTime: "09:00"},
		})
		assert.Equal(t, "Friday: end_time must be after start_time", msg)
	})
}
