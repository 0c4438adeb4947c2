package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktimer/internal/domain"
)

func TestNormalizeListQuery(t *testing.T) {
	tests := []struct {
		name  string
		query ListQuery
		want  ListQuery
	}{
		{
			name:  "should apply defaults",
			query: ListQuery{},
			want:  ListQuery{Page: 1, Size: 25, OrderBy: domain.OrderByCreatedAt},
		},
		{
			name:  "should keep supported values",
			query: ListQuery{Page: 3, Size: 100, OrderBy: domain.OrderByUpdatedAt, Descending: true},
			want:  ListQuery{Page: 3, Size: 100, OrderBy: domain.OrderByUpdatedAt, Descending: true},
		},
		{
			name:  "should replace unsupported size and order",
			query: ListQuery{Page: -2, Size: 30, OrderBy: "description"},
			want:  ListQuery{Page: 1, Size: 25, OrderBy: domain.OrderByCreatedAt},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeListQuery(tt.query))
		})
	}
}

func TestSearchService_ListEntries(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	env.now = day(time.January, 3, 12)
	for i := 0; i < 30; i++ {
		start := day(time.January, 1, 0).Add(time.Duration(i) * time.Hour)
		end := start.Add(30 * time.Minute)
		env.createEntry(t, env.user.ID, env.project.ID, start, &end)
	}
	stranger := env.createUser(t, "grace@example.com")
	theirs := env.createProject(t, stranger.ID, "Theirs")
	env.createEntry(t, stranger.ID, theirs.ID, day(time.January, 1, 5), nil)

	// Act
	first, err := env.services.SearchService.ListEntries(context.Background(), env.user.ID, ListQuery{OrderBy: domain.OrderByStartTime, Descending: true})
	require.NoError(t, err)
	second, err := env.services.SearchService.ListEntries(context.Background(), env.user.ID, ListQuery{Page: 2, OrderBy: domain.OrderByStartTime, Descending: true})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int64(30), first.Total)
	assert.Equal(t, 2, first.Pages)
	require.Len(t, first.Entries, 25)
	require.Len(t, second.Entries, 5)
	assert.True(t, first.Entries[0].StartTime.Equal(day(time.January, 2, 5)))
	assert.Equal(t, "Alpha", first.Entries[0].ProjectName())

	require.Len(t, first.Groups, 2)
	assert.Equal(t, "2024-01-02", first.Groups[0].Date)
	assert.Equal(t, int64(6*30*60*1000), first.Groups[0].TotalMs)
	assert.Equal(t, "2024-01-01", first.Groups[1].Date)
	assert.Len(t, first.Groups[1].Entries, 19)
}

func TestSearchService_ListEntries_GroupsInConfiguredZone(t *testing.T) {
	env := setupTestEnv(t)
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	service := NewSearchService(env.repo, env.clock, berlin)
	env.createEntry(t, env.user.ID, env.project.ID, time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC), nil)

	page, err := service.ListEntries(context.Background(), env.user.ID, ListQuery{})

	require.NoError(t, err)
	require.Len(t, page.Groups, 1)
	assert.Equal(t, "2024-01-02", page.Groups[0].Date)
}

func TestSearchService_SearchEntries(t *testing.T) {
	env := setupTestEnv(t)
	beta := env.createProject(t, env.user.ID, "Beta")
	env.createEntry(t, env.user.ID, env.project.ID, at(9, 0), timePtr(at(10, 0)))
	want := env.createEntry(t, env.user.ID, beta.ID, at(10, 0), nil)

	entries, err := env.services.SearchService.SearchEntries(context.Background(), domain.SearchOptions{
		UserID:    env.user.ID,
		ProjectID: &beta.ID,
	})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, want.ID, entries[0].ID)
}
