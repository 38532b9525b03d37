// Package roster reads hospital doctor rosters exported as .xlsx.
package roster

import (
	"fmt"
	"strings"

	"github.com/meditrack/meditrack-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Column order of the first sheet, after a header row.
const (
	colName = iota
	colEmail
	colPhone
	colSpecialization
	colWorkingHospital
	colShiftStart
	colShiftEnd
	colLicenseNumber
	colPassword
	columnCount
)

type Doctor struct {
	Name            string
	Email           string
	Phone           string
	Specialization  string
	WorkingHospital string
	ShiftStart      string
	ShiftEnd        string
	LicenseNumber   string
	Password        string
}

// Result holds the usable rows and how many were dropped.
type Result struct {
	Sheet      string
	Doctors    []Doctor
	Skipped    int
	Duplicates int
}

func ReadDoctors(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	return readDoctors(f)
}

func readDoctors(f *excelize.File) (*Result, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	result := &Result{Sheet: sheetName}
	seen := make(map[string]bool)

	// first row is the header
	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells
		if len(row) < columnCount {
			result.Skipped++
			continue
		}

		d := Doctor{
			Name:            cell(row, colName),
			Email:           strings.ToLower(cell(row, colEmail)),
			Phone:           cell(row, colPhone),
			Specialization:  cell(row, colSpecialization),
			WorkingHospital: cell(row, colWorkingHospital),
			ShiftStart:      cell(row, colShiftStart),
			ShiftEnd:        cell(row, colShiftEnd),
			LicenseNumber:   cell(row, colLicenseNumber),
			Password:        cell(row, colPassword),
		}
		if !d.complete() {
			result.Skipped++
			continue
		}

		if seen[d.Email] {
			result.Duplicates++
			continue
		}
		seen[d.Email] = true

		result.Doctors = append(result.Doctors, d)
	}

	return result, nil
}

func cell(row []string, i int) string {
	return strings.TrimSpace(row[i])
}

func (d Doctor) complete() bool {
	for _, v := range []string{
		d.Name, d.Email, d.Phone, d.Specialization, d.WorkingHospital,
		d.ShiftStart, d.ShiftEnd, d.LicenseNumber,
	} {
		if v == "" {
			return false
		}
	}
	return strings.Contains(d.Email, "@") && util.CheckPasswordLength(d.Password) == nil
}
