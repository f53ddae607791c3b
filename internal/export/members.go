// Package export renders member lists as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"church-service/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	MembersSheet = "Members"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var memberHeaders = []string{
	"First Name", "Middle Name", "Last Name", "Gender", "Date of Birth",
	"Marital Status", "Membership Status", "Member Since", "Occupation",
	"Employer", "Phone", "Email", "City", "Region",
}

var memberColumnWidths = []float64{16, 16, 16, 10, 14, 14, 18, 14, 20, 20, 16, 26, 16, 16}

// MembersXLSX writes one row per member below a frozen, styled header.
func MembersXLSX(members []model.Member) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(MembersSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, header := range memberHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(MembersSheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header %s: %w", header, err)
		}
		if err := f.SetCellStyle(MembersSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("style header %s: %w", header, err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(MembersSheet, col, col, memberColumnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, m := range members {
		row := i + 2
		for col, value := range memberRow(m) {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(MembersSheet, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(MembersSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func memberRow(m model.Member) []string {
	dob := ""
	if m.DateOfBirth != nil && !m.DateOfBirth.IsZero() {
		dob = m.DateOfBirth.String()
	}
	since := ""
	if !m.MemberSince.IsZero() {
		since = m.MemberSince.String()
	}
	var phone, email, city, region string
	if m.Location != nil {
		phone = m.Location.PhonePrimary
		email = m.Location.Email
		city = m.Location.City
		region = m.Location.Region
	}
	return []string{
		m.FirstName, m.MiddleName, m.LastName, string(m.Gender), dob,
		string(m.MaritalStatus), string(m.MembershipStatus), since, m.Occupation,
		m.Employer, phone, email, city, region,
	}
}
