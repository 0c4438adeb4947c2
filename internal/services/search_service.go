package services

import (
	"context"
	"time"

	"worktimer/internal/domain"
	"worktimer/internal/repository/sqlite"
)

// Page sizes a listing may ask for; anything else falls back to the first.
var PageSizes = []int{25, 50, 100}

// searchServiceImpl implements the SearchService interface
type searchServiceImpl struct {
	repo     sqlite.Repository
	mapper   *domain.Mapper
	clock    Clock
	location *time.Location
}

// NewSearchService creates a new SearchService instance
func NewSearchService(repo sqlite.Repository, clock Clock, loc *time.Location) SearchService {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &searchServiceImpl{
		repo:     repo,
		mapper:   domain.NewMapper(),
		clock:    clock,
		location: loc,
	}
}

// NormalizeListQuery clamps paging and ordering to supported values
func NormalizeListQuery(query ListQuery) ListQuery {
	if query.Page < 1 {
		query.Page = 1
	}
	sizeOK := false
	for _, size := range PageSizes {
		if query.Size == size {
			sizeOK = true
			break
		}
	}
	if !sizeOK {
		query.Size = PageSizes[0]
	}
	switch query.OrderBy {
	case domain.OrderByStartTime, domain.OrderByCreatedAt, domain.OrderByUpdatedAt:
	default:
		query.OrderBy = domain.OrderByCreatedAt
	}
	return query
}

// ListEntries returns one page of the user's entries grouped by day. Open
// entries carry their live duration in the day totals.
func (s *searchServiceImpl) ListEntries(ctx context.Context, userID int64, query ListQuery) (*EntryPage, error) {
	query = NormalizeListQuery(query)

	opts := domain.SearchOptions{
		UserID:      userID,
		OrderBy:     query.OrderBy,
		Descending:  query.Descending,
		Limit:       query.Size,
		Offset:      (query.Page - 1) * query.Size,
		WithProject: true,
	}
	dbOpts := s.mapper.SearchOptions.ToDatabase(opts)

	total, err := s.repo.CountTimeEntries(ctx, dbOpts)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.SearchTimeEntries(ctx, dbOpts)
	if err != nil {
		return nil, err
	}

	entries := s.mapper.TimeEntry.FromDatabaseSlice(rows)
	pages := int((total + int64(query.Size) - 1) / int64(query.Size))

	return &EntryPage{
		Entries: entries,
		Groups:  domain.GroupByDay(entries, s.clock(), s.location),
		Total:   total,
		Page:    query.Page,
		Size:    query.Size,
		Pages:   pages,
	}, nil
}

// SearchEntries returns every entry matching opts
func (s *searchServiceImpl) SearchEntries(ctx context.Context, opts domain.SearchOptions) ([]domain.TimeEntry, error) {
	rows, err := s.repo.SearchTimeEntries(ctx, s.mapper.SearchOptions.ToDatabase(opts))
	if err != nil {
		return nil, err
	}
	return s.mapper.TimeEntry.FromDatabaseSlice(rows), nil
}
