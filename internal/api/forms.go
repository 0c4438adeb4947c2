package api

import (
	"strconv"
	"strings"
	"time"

	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/services"
	"worktimer/internal/validation"
)

// ProjectForm is a project as submitted by a form or flag set
type ProjectForm struct {
	Name        string
	Description string
	Color       string
}

// AccountForm holds the editable fields of the caller's own account. An
// empty Email leaves the address unchanged; an empty HourlyRate clears it.
type AccountForm struct {
	Email      string
	HourlyRate string
	Currency   string
}

// UserForm creates an account on behalf of an administrator
type UserForm struct {
	Email    string
	Password string
	Admin    bool
}

// ListForm holds the raw paging parameters of an entry listing
type ListForm struct {
	Page    string
	Size    string
	OrderBy string
	Order   string
}

// ReportForm holds the raw parameters of a report. Empty dates default to
// the current month and an empty rate to the user's default rate.
type ReportForm struct {
	DateFrom   string
	DateTo     string
	HourlyRate string
}

// ParseID reads a positive numeric identifier
func ParseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError(field, raw, "must be a positive number")
	}
	return id, nil
}

func parseOptionalInt(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewInvalidInputError(field, raw, "must be a number")
	}
	return n, nil
}

func parseOptionalFloat(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.NewInvalidInputError(field, raw, "must be a number")
	}
	return &f, nil
}

func parseOptionalDate(field, raw string, loc *time.Location) (*time.Time, error) {
	t, err := validation.ParseOptionalTimestamp(raw, loc)
	if err != nil {
		return nil, errors.NewInvalidInputError(field, raw, "must be a date like 2024-01-31")
	}
	return t, nil
}

// ToQuery converts the form into a listing query. Defaults are newest
// created first, 25 per page.
func (f ListForm) ToQuery() (services.ListQuery, error) {
	page, err := parseOptionalInt("page", f.Page)
	if err != nil {
		return services.ListQuery{}, err
	}
	size, err := parseOptionalInt("size", f.Size)
	if err != nil {
		return services.ListQuery{}, err
	}
	return services.NormalizeListQuery(services.ListQuery{
		Page:       page,
		Size:       size,
		OrderBy:    domain.EntryOrder(strings.TrimSpace(f.OrderBy)),
		Descending: !strings.EqualFold(strings.TrimSpace(f.Order), "asc"),
	}), nil
}

// ToQuery converts the form into a report query, reading dates in loc
func (f ReportForm) ToQuery(loc *time.Location) (services.ReportQuery, error) {
	from, err := parseOptionalDate("dateFrom", f.DateFrom, loc)
	if err != nil {
		return services.ReportQuery{}, err
	}
	to, err := parseOptionalDate("dateTo", f.DateTo, loc)
	if err != nil {
		return services.ReportQuery{}, err
	}
	rate, err := parseOptionalFloat("hourlyRate", f.HourlyRate)
	if err != nil {
		return services.ReportQuery{}, err
	}
	return services.ReportQuery{DateFrom: from, DateTo: to, HourlyRate: rate}, nil
}
