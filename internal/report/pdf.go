// Package report renders billing reports as PDF documents.
package report

import (
	"fmt"
	"io"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"worktimer/internal/domain"
	"worktimer/internal/services"
)

const dateLayout = "2006-01-02"

// Rows returns the table body of a report: project, hours and, when the
// report is billed, the amount.
func Rows(r *services.Report) [][]string {
	rows := make([][]string, 0, len(r.PerProject))
	for _, p := range r.PerProject {
		row := []string{p.Name, domain.FormatDuration(p.TotalMs), domain.FormatHours(p.TotalMs)}
		if p.Billing != nil {
			row = append(row, domain.FormatMoney(*p.Billing, r.Currency))
		}
		rows = append(rows, row)
	}
	return rows
}

// Headers returns the column titles matching Rows
func Headers(r *services.Report) []string {
	headers := []string{"Project", "Time", "Hours"}
	if r.TotalBilling != nil {
		headers = append(headers, "Amount")
	}
	return headers
}

// WritePDF renders r as an A4 document onto w
func WritePDF(w io.Writer, r *services.Report) error {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Work report", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(10, func() {
			m.Col(12, func() {
				period := fmt.Sprintf("%s - %s", r.DateFrom.Format(dateLayout), r.DateTo.Format(dateLayout))
				m.Text(period, props.Text{
					Top:   3,
					Align: consts.Center,
					Size:  12,
				})
			})
		})
	})

	headers := Headers(r)
	grid := []uint{6, 3, 3}
	if len(headers) == 4 {
		grid = []uint{5, 2, 2, 3}
	}

	if len(r.PerProject) == 0 {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("No time tracked in this period.", props.Text{Top: 5, Size: 10})
			})
		})
	} else {
		m.TableList(headers, Rows(r), props.TableList{
			HeaderProp: props.TableListContent{
				Size:      10,
				GridSizes: grid,
			},
			ContentProp: props.TableListContent{
				Size:      10,
				GridSizes: grid,
			},
			Align:                consts.Center,
			AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
			HeaderContentSpace:   1,
		})
	}

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Total: %s (%s h)", domain.FormatDuration(r.TotalMs), domain.FormatHours(r.TotalMs)), props.Text{
				Top:   10,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})
	if r.TotalBilling != nil {
		m.Row(8, func() {
			m.Col(12, func() {
				rate := domain.FormatMoney(*r.HourlyRate, r.Currency)
				m.Text(fmt.Sprintf("Billed at %s per hour: %s", rate, domain.FormatMoney(*r.TotalBilling, r.Currency)), props.Text{
					Style: consts.Bold,
					Align: consts.Right,
					Size:  12,
				})
			})
		})
	}

	buf, err := m.Output()
	if err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}
