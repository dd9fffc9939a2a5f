package handler_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyama86/opsboard/domain/entity"
	"github.com/pyama86/opsboard/domain/listing"
	"github.com/pyama86/opsboard/domain/repository"
	"github.com/pyama86/opsboard/handler"
)

// ------------------------
// Mock repositories
// ------------------------
type mockIncidentRepo struct {
	mu          sync.Mutex
	operational []entity.OperationalIncident
	project     []entity.ProjectIncident
	opErr       error
	pjErr       error
	createErr   error

	opCalls   int
	pjCalls   int
	tokens    []string
	opCreates []entity.OperationalIncidentDraft
	pjCreates []entity.ProjectIncidentDraft
}

func (m *mockIncidentRepo) OperationalIncidents(_ context.Context, token string) ([]entity.OperationalIncident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opCalls++
	m.tokens = append(m.tokens, token)
	if m.opErr != nil {
		return nil, m.opErr
	}
	return append([]entity.OperationalIncident(nil), m.operational...), nil
}

func (m *mockIncidentRepo) ProjectIncidents(_ context.Context, token string) ([]entity.ProjectIncident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pjCalls++
	m.tokens = append(m.tokens, token)
	if m.pjErr != nil {
		return nil, m.pjErr
	}
	return append([]entity.ProjectIncident(nil), m.project...), nil
}

func (m *mockIncidentRepo) CreateOperationalIncident(_ context.Context, _ string, d entity.OperationalIncidentDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.opCreates = append(m.opCreates, d)
	return nil
}

func (m *mockIncidentRepo) CreateProjectIncident(_ context.Context, _ string, d entity.ProjectIncidentDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.pjCreates = append(m.pjCreates, d)
	return nil
}

func (m *mockIncidentRepo) calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opCalls, m.pjCalls
}

type mockSession struct {
	mu    sync.Mutex
	token string
	reads int
}

func (m *mockSession) CurrentToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return m.token, m.token != ""
}

func (m *mockSession) set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

type mockNotifier struct {
	mu       sync.Mutex
	tabs     []entity.Tab
	payloads []any
	err      error
}

func (m *mockNotifier) NotifyIncidentCreated(_ context.Context, tab entity.Tab, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs = append(m.tabs, tab)
	m.payloads = append(m.payloads, payload)
	return m.err
}

func fixtureRepo() *mockIncidentRepo {
	return &mockIncidentRepo{
		operational: []entity.OperationalIncident{
			{ID: 1, ServiceName: "DNS", Severity: entity.SeverityLow, Category: entity.OperationalCategoryNetwork, IncidentDate: entity.ParseTimestamp("2024-03-02T10:00:00")},
			{ID: 2, ServiceName: "LDAP", Severity: entity.SeverityHigh, Category: entity.OperationalCategoryNetwork, IncidentDate: entity.ParseTimestamp("2024-01-15T08:30:00")},
			{ID: 3, ServiceName: "Mail", Severity: entity.SeverityCritical, Category: entity.OperationalCategorySoftware, IncidentDate: entity.ParseTimestamp("2024-02-20T12:00:00")},
		},
		project: []entity.ProjectIncident{
			{ID: 10, Title: "Vendor outage", Project: "Portal", Severity: entity.SeverityMedium, Category: entity.ProjectCategoryThirdPartyIssue},
			{ID: 11, Title: "Phishing", Project: "Intranet", Severity: entity.SeverityHigh, Category: entity.ProjectCategoryCyberAttack},
		},
	}
}

func TestConsole_InitialState(t *testing.T) {
	c := handler.NewConsole(fixtureRepo(), &mockSession{token: "tok"})

	assert.Equal(t, entity.TabOperational, c.Tab())
	assert.Equal(t, handler.FormClosed, c.FormState())
	assert.True(t, c.Draft().IsEmpty())
	assert.Empty(t, c.OperationalRows())
	assert.Empty(t, c.ProjectRows())
	assert.False(t, c.Loading())
}

func TestConsole_RefreshFetchesBothCollections(t *testing.T) {
	repo := fixtureRepo()
	session := &mockSession{token: "tok"}
	c := handler.NewConsole(repo, session)

	require.NoError(t, c.Refresh(context.Background()))

	op, pj := repo.calls()
	assert.Equal(t, 1, op)
	assert.Equal(t, 1, pj)
	assert.Equal(t, []string{"tok", "tok"}, repo.tokens)
	assert.Len(t, c.OperationalRows(), 3)
	assert.Len(t, c.ProjectRows(), 2)
	assert.False(t, c.Loading())
}

func TestConsole_RefreshWithoutSession(t *testing.T) {
	repo := fixtureRepo()
	c := handler.NewConsole(repo, &mockSession{})

	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, repository.ErrNoSession)

	op, pj := repo.calls()
	assert.Zero(t, op)
	assert.Zero(t, pj)
	assert.False(t, c.Loading())
}

func TestConsole_RefreshReadsSessionEveryTime(t *testing.T) {
	repo := fixtureRepo()
	session := &mockSession{}
	c := handler.NewConsole(repo, session)

	assert.ErrorIs(t, c.Refresh(context.Background()), repository.ErrNoSession)
	session.set("later")
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"later", "later"}, repo.tokens)
}

func TestConsole_FetchFailureKeepsPreviousData(t *testing.T) {
	repo := fixtureRepo()
	c := handler.NewConsole(repo, &mockSession{token: "tok"})
	require.NoError(t, c.Refresh(context.Background()))

	repo.mu.Lock()
	repo.opErr = errors.New("boom")
	repo.project = repo.project[:1]
	repo.mu.Unlock()

	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operational")

	assert.Len(t, c.OperationalRows(), 3, "failed collection keeps previous rows")
	assert.Len(t, c.ProjectRows(), 1, "other collection is updated independently")

	snap := c.Snapshot()
	assert.Error(t, snap.OperationalErr)
	assert.NoError(t, snap.ProjectErr)
	assert.False(t, snap.Loading)
}

func TestConsole_SearchAndSortApplyToRows(t *testing.T) {
	c := handler.NewConsole(fixtureRepo(), &mockSession{token: "tok"})
	require.NoError(t, c.Refresh(context.Background()))

	c.SetSearch("network")
	require.NoError(t, c.SetSort(listing.SortDirective{Field: "severity", Order: listing.Desc}))

	rows := c.OperationalRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "LDAP", rows[0].ServiceName)
	assert.Equal(t, "DNS", rows[1].ServiceName)

	require.NoError(t, c.SetSort(listing.SortDirective{}))
	rows = c.OperationalRows()
	assert.Equal(t, "DNS", rows[0].ServiceName)
}

func TestConsole_SetSortRejectsFieldOfOtherTab(t *testing.T) {
	c := handler.NewConsole(fixtureRepo(), &mockSession{token: "tok"})
	require.NoError(t, c.SelectTab(entity.TabProject))

	err := c.SetSort(listing.SortDirective{Field: "incidentDate", Order: listing.Asc})
	assert.Error(t, err)
	assert.Equal(t, listing.SortDirective{}, c.SortDirective())
	assert.Equal(t, []string{"severity", "category"}, c.SortOptions())
}

func TestConsole_SelectTabKeepsSearchAndSort(t *testing.T) {
	c := handler.NewConsole(fixtureRepo(), &mockSession{token: "tok"})
	require.NoError(t, c.Refresh(context.Background()))

	c.SetSearch("o")
	sd := listing.SortDirective{Field: "incidentDate", Order: listing.Asc}
	require.NoError(t, c.SetSort(sd))

	require.NoError(t, c.SelectTab(entity.TabProject))
	assert.Equal(t, "o", c.Search())
	assert.Equal(t, sd, c.SortDirective())

	// project には incidentDate が無いので元の順序のまま
	rows := c.ProjectRows()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(10), rows[0].ID)
	assert.Equal(t, int64(11), rows[1].ID)
}

func TestConsole_SelectTabRejectsUnknownTab(t *testing.T) {
	c := handler.NewConsole(fixtureRepo(), &mockSession{token: "tok"})
	assert.Error(t, c.SelectTab(entity.Tab(9)))
	assert.Equal(t, entity.TabOperational, c.Tab())
}

// staleRepo は 1 回目の operational 取得を release が閉じられるまで止める
type staleRepo struct {
	*mockIncidentRepo
	started chan struct{}
	release chan struct{}
	once    sync.Once
	n       int
}

func (s *staleRepo) OperationalIncidents(ctx context.Context, token string) ([]entity.OperationalIncident, error) {
	s.mu.Lock()
	s.n++
	n := s.n
	s.mu.Unlock()
	if n == 1 {
		s.once.Do(func() { close(s.started) })
		<-s.release
		return []entity.OperationalIncident{{ID: 99, ServiceName: "stale"}}, nil
	}
	return s.mockIncidentRepo.OperationalIncidents(ctx, token)
}

func TestConsole_StaleResponseIsDiscarded(t *testing.T) {
	repo := &staleRepo{
		mockIncidentRepo: fixtureRepo(),
		started:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	c := handler.NewConsole(repo, &mockSession{token: "tok"})

	done := make(chan error, 1)
	go func() {
		done <- c.Refresh(context.Background())
	}()
	<-repo.started
	assert.True(t, c.Loading())

	require.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, c.OperationalRows(), 3)

	close(repo.release)
	require.NoError(t, <-done)

	rows := c.OperationalRows()
	require.Len(t, rows, 3, "older response must not overwrite newer one")
	assert.Equal(t, "DNS", rows[0].ServiceName)
	assert.False(t, c.Loading())
}

func TestConsole_LoadingWhileFetching(t *testing.T) {
	repo := &staleRepo{
		mockIncidentRepo: fixtureRepo(),
		started:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	c := handler.NewConsole(repo, &mockSession{token: "tok"})

	done := make(chan error, 1)
	go func() {
		done <- c.Refresh(context.Background())
	}()
	<-repo.started
	assert.True(t, c.Loading())
	assert.True(t, c.Snapshot().Loading)

	close(repo.release)
	require.NoError(t, <-done)
	assert.False(t, c.Loading())
	assert.Equal(t, "stale", c.OperationalRows()[0].ServiceName, "only fetch in flight is applied")
}
