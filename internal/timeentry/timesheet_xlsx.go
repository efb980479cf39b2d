package timeentry

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var timesheetHeaders = []string{
	"Employee ID",
	"Date",
	"Clock In",
	"Clock Out",
	"Unpaid Break (min)",
	"Paid Break (min)",
	"Total Hours",
	"Status",
}

// BuildTimesheetXLSX renders entries into a single-sheet workbook for
// payroll handoff.
func BuildTimesheetXLSX(entries []TimeEntryResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Timesheet"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range timesheetHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, e := range entries {
		clockOut := ""
		if e.ClockOut != nil {
			clockOut = *e.ClockOut
		}
		values := []any{
			e.EmployeeID,
			e.EntryDate,
			e.ClockIn,
			clockOut,
			e.UnpaidBreakMinutes,
			e.PaidBreakMinutes,
			e.TotalHours,
			e.Status,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, nil
}
