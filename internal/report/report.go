package report

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/UnknownOlympus/storekeeper/internal/models"
	"github.com/xuri/excelize/v2"
)

var ErrNoOrders = errors.New("failed to generate report, 0 orders were provided")

const maxSheetNameLength = 31

// Generator holds the state for the Excel report generation process.
type Generator struct {
	file *excelize.File
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		file: excelize.NewFile(),
	}
}

// GenerateOrdersReport builds an Excel workbook with one sheet per faculty, each listing
// that faculty's orders under a styled header row.
func GenerateOrdersReport(orders []models.Order) (*bytes.Buffer, error) {
	var err error

	if len(orders) == 0 {
		return nil, ErrNoOrders
	}

	ordersByFaculty := make(map[string][]models.Order)
	for _, order := range orders {
		ordersByFaculty[order.FacultyName] = append(ordersByFaculty[order.FacultyName], order)
	}

	gen := NewGenerator()
	defer gen.file.Close()

	if err = gen.addSheets(ordersByFaculty); err != nil {
		return nil, fmt.Errorf("failed to add sheets: %w", err)
	}

	// delete default sheet
	if sheetIndex, _ := gen.file.GetSheetIndex("Sheet1"); sheetIndex != -1 {
		if err = gen.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}

	// setup first sheet as active
	gen.file.SetActiveSheet(0)

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write data from saved file: %w", err)
	}

	return buffer, nil
}

// addSheets creates a sheet per faculty in name order and fills it with rows.
func (g *Generator) addSheets(ordersByFaculty map[string][]models.Order) error {
	var err error
	headerIndex := 2

	faculties := make([]string, 0, len(ordersByFaculty))
	for faculty := range ordersByFaculty {
		faculties = append(faculties, faculty)
	}
	slices.Sort(faculties)

	// the default sheet is removed afterwards, so its name must stay free
	used := map[string]bool{"sheet1": true}
	for tableIndex, faculty := range faculties {
		sheetName := uniqueSheetName(sanitizeSheetName(faculty), used)
		ordersInFaculty := ordersByFaculty[faculty]

		if _, err = g.file.NewSheet(sheetName); err != nil {
			return fmt.Errorf("failed to generate new sheet '%s': %w", sheetName, err)
		}

		if err = g.setupSheet(sheetName, tableIndex+1, len(ordersInFaculty)); err != nil {
			return fmt.Errorf("failed to setup sheet '%s': %w", sheetName, err)
		}

		for i, order := range ordersInFaculty {
			if err = g.addRow(sheetName, i+headerIndex, order); err != nil { // the first row is the header
				return fmt.Errorf("failed to add row '%d': %w", i+headerIndex, err)
			}
		}
	}
	return nil
}

// setupSheet writes the styled header row, column widths and the table over the data.
func (g *Generator) setupSheet(sheetName string, tableIndex, rowCount int) error {
	var err error

	headerStyle, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create new style: %w", err)
	}

	rowHeight := 20
	headers := []string{"Order ID", "Date", "Requester", "Product", "Wanted", "Given", "Missing", "Status", "Comment"}
	if err = g.file.SetRowHeight(sheetName, 1, float64(rowHeight)); err != nil {
		return fmt.Errorf("failed to set row height for headers: %w", err)
	}
	if err = g.file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set sheet row for headers: %w", err)
	}
	if err = g.file.SetCellStyle(sheetName, "A1", "I1", headerStyle); err != nil {
		return fmt.Errorf("failed to set cell style for headers: %w", err)
	}

	widths := map[string]float64{
		"A": 12, "B": 18, "C": 28, "D": 30, "E": 10, "F": 10, "G": 10, "H": 14, "I": 40, //nolint:mnd // const values for row width
	}
	for col, width := range widths {
		if err = g.file.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err = g.file.AddTable(sheetName, &excelize.Table{
		Range:     fmt.Sprintf("A1:I%d", rowCount+1),
		Name:      fmt.Sprintf("orders_%d", tableIndex),
		StyleName: "TableStyleMedium9",
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	return nil
}

// addRow writes one order at rowNum.
func (g *Generator) addRow(sheetName string, rowNum int, order models.Order) error {
	rowData := []any{
		order.ID,
		order.CreatedAt.Format("02.01.2006 15:04"),
		order.Requester.Handle(),
		order.ProductName,
		order.Wanted,
		order.Given,
		order.Missing,
		string(order.Status),
		order.Comment,
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)

	if err := g.file.SetSheetRow(sheetName, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}

	return nil
}

// sanitizeSheetName drops characters Excel forbids in sheet names and truncates to 31 runes.
func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.Trim(strings.TrimSpace(name), "'"))

	if name == "" {
		name = "Faculty"
	}
	return truncateSheetName(name)
}

// uniqueSheetName appends a counter when two names collide after sanitizing.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		runes := []rune(name)
		if len(runes)+len(suffix) > maxSheetNameLength {
			runes = runes[:maxSheetNameLength-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// truncateSheetName truncates the given sheet name to a maximum of 31 runes.
func truncateSheetName(name string) string {
	if utf8.RuneCountInString(name) > maxSheetNameLength {
		runes := []rune(name)
		return string(runes[:maxSheetNameLength])
	}
	return name
}
