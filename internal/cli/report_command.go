package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"worktimer/internal/api"
	"worktimer/internal/domain"
	"worktimer/internal/report"
	"worktimer/internal/services"
)

// ReportCommand prints or renders a billing report
type ReportCommand struct {
	app *App
}

// NewReportCommand creates a new report command handler
func NewReportCommand(app *App) *ReportCommand {
	return &ReportCommand{app: app}
}

// Execute prints the report as a table, or writes a PDF to pdfPath when set
func (c *ReportCommand) Execute(ctx context.Context, email string, form api.ReportForm, pdfPath string) error {
	user, err := c.app.resolveUser(ctx, email)
	if err != nil {
		return c.app.errs.Handle("find user", err)
	}

	if pdfPath != "" {
		return c.writePDF(ctx, user.ID, form, pdfPath)
	}

	r, err := c.app.business.BuildReport(ctx, user.ID, form)
	if err != nil {
		return c.app.errs.Handle("build report", err)
	}
	return c.printReport(r)
}

func (c *ReportCommand) writePDF(ctx context.Context, userID int64, form api.ReportForm, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := c.app.business.WriteReportPDF(ctx, userID, form, f); err != nil {
		_ = os.Remove(path)
		return c.app.errs.Handle("build report", err)
	}
	fmt.Fprintf(c.app.out, "Report written to %s\n", path)
	return nil
}

// printReport prints one line per project followed by the totals
func (c *ReportCommand) printReport(r *services.Report) error {
	fmt.Fprintf(c.app.out, "Report %s - %s\n\n", r.DateFrom.Format("2006-01-02"), r.DateTo.Format("2006-01-02"))

	if len(r.PerProject) == 0 {
		fmt.Fprintln(c.app.out, "No time tracked in this period")
		return nil
	}

	tw := tabwriter.NewWriter(c.app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(report.Headers(r), "\t"))
	for _, row := range report.Rows(r) {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	total := []string{"Total", domain.FormatDuration(r.TotalMs), domain.FormatHours(r.TotalMs)}
	if r.TotalBilling != nil {
		total = append(total, domain.FormatMoney(*r.TotalBilling, r.Currency))
	}
	fmt.Fprintln(tw, strings.Join(total, "\t"))
	return tw.Flush()
}
