package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/christopherklint97/plantbill/internal/runner"
)

const (
	summarySheet = "Summary"
	detailSheet  = "Detail"
)

var (
	summaryHeadings = []any{
		"Entity", "From", "To", "Days", "Actual hours", "Billable hours", "Rate", "Estimated cost",
		"Normal", "Saturday", "Sunday", "Public holiday", "Breakdown", "Rain day", "Strike day", "Missing dates",
	}
	detailHeadings = []any{
		"Entity", "Date", "Record", "Operator", "Day type", "Actual hours", "Billable hours", "Rule",
		"Overridden by", "Original hours", "Notes",
	}
)

// WriteXLSX writes a workbook with a Summary sheet (one row per entity,
// billable hours per day type) and a Detail sheet (one row per resolved date).
func WriteXLSX(w io.Writer, res *runner.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(detailSheet); err != nil {
		return fmt.Errorf("creating detail sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := setRow(f, summarySheet, 1, summaryHeadings); err != nil {
		return err
	}
	if err := setRow(f, detailSheet, 1, detailHeadings); err != nil {
		return err
	}
	for _, sheet := range []string{summarySheet, detailSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("styling %s header: %w", sheet, err)
		}
	}

	detailRow := 2
	for i, rec := range res.Records {
		b := rec.Buckets
		row := []any{
			rec.EntityID, rec.Range.StartDate(), rec.Range.EndDate(), len(rec.ResolvedEntries),
			rec.TotalActualHours, rec.TotalBillableHours, rec.Rate, rec.EstimatedCost,
			b.Normal.BillableHours, b.Saturday.BillableHours, b.Sunday.BillableHours, b.PublicHoliday.BillableHours,
			b.Breakdown.BillableHours, b.RainDay.BillableHours, b.StrikeDay.BillableHours, len(rec.MissingDates),
		}
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}

		for _, e := range rec.ResolvedEntries {
			var original any
			if e.Record.OriginalRecord != nil {
				original = e.Record.OriginalRecord.TotalHours
			}
			row := []any{
				rec.EntityID, e.Date, e.Record.ID, e.Record.OperatorName, string(e.Result.DayType),
				e.Result.ActualHours, e.Result.BillableHours, string(e.Result.AppliedRule),
				string(e.Record.OverriddenBy), original, e.Record.Notes,
			}
			if err := setRow(f, detailSheet, detailRow, row); err != nil {
				return err
			}
			detailRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
