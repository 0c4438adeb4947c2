package services

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/logging"
	"worktimer/internal/repository/sqlite"
	"worktimer/internal/validation"
)

// CSVTimeLayout is ISO-8601 with milliseconds, always written in UTC.
const CSVTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ExportColumns is the header of an export, in order.
var ExportColumns = []string{"id", "description", "startTime", "endTime", "duration", "createdAt", "project"}

// ImportColumns must all be present in an import header.
var ImportColumns = []string{"description", "startTime", "endTime", "project"}

// transferServiceImpl implements the TransferService interface
type transferServiceImpl struct {
	repo               sqlite.Repository
	mapper             *domain.Mapper
	timeEntryValidator *validation.TimeEntryValidator
	projectValidator   *validation.ProjectValidator
	clock              Clock
	log                *slog.Logger
}

// NewTransferService creates a new TransferService instance
func NewTransferService(repo sqlite.Repository, validator *validation.Validator, clock Clock, logger *slog.Logger) TransferService {
	if clock == nil {
		clock = SystemClock
	}
	return &transferServiceImpl{
		repo:               repo,
		mapper:             domain.NewMapper(),
		timeEntryValidator: validation.NewTimeEntryValidator(validator),
		projectValidator:   validation.NewProjectValidator(validator),
		clock:              clock,
		log:                logging.OrDiscard(logger),
	}
}

// ExportFilename returns work-timer-export-<yyyymmddhhmmss>.csv for now
func (t *transferServiceImpl) ExportFilename() string {
	return "work-timer-export-" + t.clock().UTC().Format("20060102150405") + ".csv"
}

// ExportCSV writes every entry of the user, oldest first, and returns the
// number of rows written.
func (t *transferServiceImpl) ExportCSV(ctx context.Context, userID int64, w io.Writer) (int, error) {
	rows, err := t.repo.SearchTimeEntries(ctx, sqlite.SearchOptions{UserID: userID, WithProject: true})
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ExportColumns); err != nil {
		return 0, err
	}
	for _, entry := range t.mapper.TimeEntry.FromDatabaseSlice(rows) {
		if err := writer.Write(exportRecord(entry)); err != nil {
			return 0, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func exportRecord(entry domain.TimeEntry) []string {
	endTime, duration := "", ""
	if entry.EndTime != nil {
		endTime = formatCSVTime(*entry.EndTime)
	}
	if entry.Duration != nil {
		duration = strconv.FormatInt(*entry.Duration, 10)
	}
	return []string{
		strconv.FormatInt(entry.ID, 10),
		entry.Description,
		formatCSVTime(entry.StartTime),
		endTime,
		duration,
		formatCSVTime(entry.CreatedAt),
		entry.ProjectName(),
	}
}

func formatCSVTime(t time.Time) string {
	return t.UTC().Format(CSVTimeLayout)
}

// importRow is a parsed, validated data row
type importRow struct {
	line    int
	project string
	attrs   domain.EntryAttrs
}

// ImportCSV creates one entry per data row. Projects are matched by exact
// name and created when missing. Nothing is written unless every row is
// valid; any failure is an import error naming the row.
func (t *transferServiceImpl) ImportCSV(ctx context.Context, userID int64, r io.Reader) (*ImportResult, error) {
	// 1. Parse and validate the whole file
	rows, hasOpen, err := t.parseImport(r)
	if err != nil {
		return nil, err
	}

	// 2. Write everything in one transaction
	result := &ImportResult{}
	err = t.repo.WithinTransaction(ctx, func(tx sqlite.Repository) error {
		if hasOpen {
			closed, err := closeRunningEntries(ctx, tx, userID, t.clock())
			if err != nil {
				return errors.NewImportError(0, "running entries could not be closed", err)
			}
			result.ClosedOpen = closed
		}

		projects := make(map[string]int64)
		for _, row := range rows {
			projectID, created, err := t.resolveProject(ctx, tx, userID, row.project, projects)
			if err != nil {
				return errors.NewImportError(row.line, "project "+strconv.Quote(row.project)+" could not be resolved", err)
			}
			if created {
				result.ProjectsCreated++
			}

			entry := domain.NewTimeEntry(userID, projectID, row.attrs.Description, row.attrs.StartTime)
			entry.EndTime = row.attrs.EndTime
			dbEntry := t.mapper.TimeEntry.ToDatabase(entry.WithComputedDuration())
			if err := tx.CreateTimeEntry(ctx, &dbEntry); err != nil {
				return errors.NewImportError(row.line, "time entry could not be created", err)
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Info("imported time entries",
		slog.Int64("user_id", userID),
		slog.Int("imported", result.Imported),
		slog.Int("projects_created", result.ProjectsCreated))
	return result, nil
}

// parseImport reads the whole file and reports whether one row is open.
// Data rows are numbered from 1.
func (t *transferServiceImpl) parseImport(r io.Reader) ([]importRow, bool, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, false, errors.NewImportError(0, "file is empty", nil)
	}
	if err != nil {
		return nil, false, errors.NewImportError(0, "file is not valid CSV", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	for _, required := range ImportColumns {
		if _, ok := columns[required]; !ok {
			return nil, false, errors.NewImportError(0, "missing required column: "+required, nil)
		}
	}
	field := func(record []string, name string) string {
		if i := columns[name]; i < len(record) {
			return record[i]
		}
		return ""
	}

	var rows []importRow
	open := 0
	for line := 1; ; line++ {
		record, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, errors.NewImportError(line, "row is not valid CSV", err)
		}

		attrs, err := t.timeEntryValidator.ParseNamedProjectRow(validation.TimeEntryForm{
			Description: field(record, "description"),
			StartTime:   field(record, "startTime"),
			EndTime:     field(record, "endTime"),
		})
		if err != nil {
			return nil, false, errors.NewImportError(line, errors.GetUserMessage(err), err)
		}

		project := strings.TrimSpace(field(record, "project"))
		if project == "" {
			return nil, false, errors.NewImportError(line, "project is required", nil)
		}
		if err := t.projectValidator.ValidateProject(project, ""); err != nil {
			return nil, false, errors.NewImportError(line, errors.GetUserMessage(err), err)
		}

		if attrs.EndTime == nil {
			open++
			if open > 1 {
				return nil, false, errors.NewImportError(line, "only one row may have an empty endTime", nil)
			}
		}
		rows = append(rows, importRow{line: line, project: project, attrs: attrs})
	}
	return rows, open == 1, nil
}

func (t *transferServiceImpl) resolveProject(ctx context.Context, tx sqlite.Repository, userID int64, name string, cache map[string]int64) (int64, bool, error) {
	if id, ok := cache[name]; ok {
		return id, false, nil
	}

	found, err := tx.FindProjectByName(ctx, userID, name)
	if err == nil {
		cache[name] = found.ID
		return found.ID, false, nil
	}
	if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return 0, false, err
	}

	dbProject := t.mapper.Project.ToDatabase(domain.NewProject(userID, name, "", RandomColor()))
	if err := tx.CreateProject(ctx, &dbProject); err != nil {
		return 0, false, err
	}
	cache[name] = dbProject.ID
	return dbProject.ID, true, nil
}
