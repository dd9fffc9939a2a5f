package listing_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyama86/opsboard/domain/entity"
	"github.com/pyama86/opsboard/domain/listing"
)

func ids[T any](items []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, i := range items {
		out = append(out, id(i))
	}
	return out
}

func opID(i entity.OperationalIncident) int64 { return i.ID }
func pjID(i entity.ProjectIncident) int64     { return i.ID }

func operationalFixture() []entity.OperationalIncident {
	return []entity.OperationalIncident{
		{ID: 1, ServiceName: "DNS", Severity: entity.SeverityLow, Category: entity.OperationalCategoryNetwork, IncidentDate: entity.ParseTimestamp("2024-03-02T10:00:00")},
		{ID: 2, ServiceName: "LDAP", Severity: entity.SeverityHigh, Category: entity.OperationalCategoryNetwork, IncidentDate: entity.ParseTimestamp("2024-01-15T08:30:00")},
		{ID: 3, ServiceName: "Mail", Severity: entity.SeverityCritical, Category: entity.OperationalCategorySoftware, IncidentDate: entity.ParseTimestamp("2024-02-20T12:00:00")},
		{ID: 4, ServiceName: "storage-array", Severity: entity.SeverityLow, Category: entity.OperationalCategoryHardware, IncidentDate: entity.ParseTimestamp("2024-02-01T00:00:00")},
		{ID: 5, ServiceName: "VPN", Severity: entity.SeverityMedium, Category: entity.OperationalCategoryNetwork, IncidentDate: entity.ParseTimestamp("2024-04-01T09:00:00")},
	}
}

func TestDisplayScenarioA(t *testing.T) {
	items := []entity.OperationalIncident{
		{ID: 1, Severity: entity.SeverityLow, Category: entity.OperationalCategoryNetwork, ServiceName: "DNS"},
		{ID: 2, Severity: entity.SeverityHigh, Category: entity.OperationalCategoryNetwork, ServiceName: "LDAP"},
	}
	got := listing.Display(items, "network", listing.SortDirective{Field: "severity", Order: listing.Asc}, listing.OperationalFields)
	require.Len(t, got, 2)
	assert.Equal(t, "DNS", got[0].ServiceName)
	assert.Equal(t, "LDAP", got[1].ServiceName)
}

func TestDisplayEmptySearchIsIdentityFilter(t *testing.T) {
	items := operationalFixture()
	sd := listing.SortDirective{Field: "category", Order: listing.Desc}

	got := listing.Display(items, "", sd, listing.OperationalFields)

	sorted := append([]entity.OperationalIncident(nil), items...)
	listing.Sort(sorted, sd, listing.OperationalFields)
	assert.Equal(t, sorted, got)
}

func TestDisplayNoSortKeepsOrder(t *testing.T) {
	items := operationalFixture()
	got := listing.Display(items, "", listing.SortDirective{}, listing.OperationalFields)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(got, opID))
}

func TestDisplayDoesNotMutateInput(t *testing.T) {
	items := operationalFixture()
	_ = listing.Display(items, "", listing.SortDirective{Field: "severity", Order: listing.Desc}, listing.OperationalFields)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(items, opID))
}

func TestFilterPartitionsBySearchableFields(t *testing.T) {
	items := operationalFixture()
	for _, term := range []string{"net", "NETWORK", "a", "storage", "ware", "zzz", "Mail"} {
		t.Run(term, func(t *testing.T) {
			got := listing.Filter(items, term, listing.OperationalFields)
			kept := map[int64]bool{}
			for _, i := range got {
				kept[i.ID] = true
			}
			needle := strings.ToLower(term)
			for _, i := range items {
				match := strings.Contains(strings.ToLower(i.ServiceName), needle) ||
					strings.Contains(strings.ToLower(string(i.Category)), needle)
				assert.Equal(t, match, kept[i.ID], "id=%d", i.ID)
			}
		})
	}
}

func TestFilterProjectFields(t *testing.T) {
	items := []entity.ProjectIncident{
		{ID: 1, Title: "Login down", Project: "Portal", Category: entity.ProjectCategorySystemFailure},
		{ID: 2, Title: "Phishing", Project: "HR System", Category: entity.ProjectCategoryCyberAttack},
		{ID: 3, Title: "Disk", Project: "Archive", Category: entity.ProjectCategoryHardwareFailure},
	}
	assert.Equal(t, []int64{2}, ids(listing.Filter(items, "hr sys", listing.ProjectFields), pjID))
	assert.Equal(t, []int64{1, 3}, ids(listing.Filter(items, "failure", listing.ProjectFields), pjID))
	assert.Equal(t, []int64{1}, ids(listing.Filter(items, "LOGIN", listing.ProjectFields), pjID))
}

func TestSortBySeverityUsesRank(t *testing.T) {
	items := operationalFixture()
	got := listing.Display(items, "", listing.SortDirective{Field: "severity"}, listing.OperationalFields)
	// LOW 同士は入力順を保つ
	assert.Equal(t, []int64{1, 4, 5, 2, 3}, ids(got, opID))

	got = listing.Display(items, "", listing.SortDirective{Field: "severity", Order: listing.Desc}, listing.OperationalFields)
	assert.Equal(t, []int64{3, 2, 5, 1, 4}, ids(got, opID))
}

func TestSortByIncidentDate(t *testing.T) {
	got := listing.Display(operationalFixture(), "", listing.SortDirective{Field: "incidentDate"}, listing.OperationalFields)
	assert.Equal(t, []int64{2, 4, 3, 1, 5}, ids(got, opID))
}

func TestSortByIncidentDateWithMissingDates(t *testing.T) {
	items := []entity.OperationalIncident{
		{ID: 1, IncidentDate: entity.ParseTimestamp("2024-03-01T00:00:00")},
		{ID: 2},
		{ID: 3, IncidentDate: entity.ParseTimestamp("2024-01-01T00:00:00")},
		{ID: 4, IncidentDate: entity.ParseTimestamp("sometime")},
	}
	// 日時の無いものが先、パースできない文字列は文字列として比べる
	asc := listing.Display(items, "", listing.SortDirective{Field: "incidentDate"}, listing.OperationalFields)
	assert.Equal(t, []int64{2, 4, 3, 1}, ids(asc, opID))

	desc := listing.Display(items, "", listing.SortDirective{Field: "incidentDate", Order: listing.Desc}, listing.OperationalFields)
	assert.Equal(t, []int64{1, 3, 4, 2}, ids(desc, opID))
}

func TestSortBySeverityIgnoresCase(t *testing.T) {
	items := []entity.OperationalIncident{
		{ID: 1, Severity: "high"},
		{ID: 2, Severity: entity.SeverityLow},
		{ID: 3, Severity: "Critical"},
	}
	got := listing.Display(items, "", listing.SortDirective{Field: "severity"}, listing.OperationalFields)
	assert.Equal(t, []int64{2, 1, 3}, ids(got, opID))
}

func TestSortIsIdempotentAndReversible(t *testing.T) {
	items := operationalFixture()
	asc := listing.SortDirective{Field: "category", Order: listing.Asc}
	desc := listing.SortDirective{Field: "category", Order: listing.Desc}

	once := listing.Display(items, "", asc, listing.OperationalFields)
	twice := listing.Display(once, "", asc, listing.OperationalFields)
	assert.Equal(t, once, twice)

	reversed := listing.Display(items, "", desc, listing.OperationalFields)
	pos := map[int64]int{}
	for i, v := range reversed {
		pos[v.ID] = i
	}
	for i := range once {
		for j := i + 1; j < len(once); j++ {
			if once[i].Category == once[j].Category {
				// 同値は両方向で入力順のまま
				assert.Less(t, pos[once[i].ID], pos[once[j].ID])
				continue
			}
			assert.Greater(t, pos[once[i].ID], pos[once[j].ID])
		}
	}
}

func TestSortUnknownFieldKeepsOrder(t *testing.T) {
	items := []entity.ProjectIncident{{ID: 2}, {ID: 1}, {ID: 3}}
	// 運用インシデント用の項目がプロジェクト側に残っていても並びは変わらない
	got := listing.Display(items, "", listing.SortDirective{Field: "incidentDate"}, listing.ProjectFields)
	assert.Equal(t, []int64{2, 1, 3}, ids(got, pjID))
}

func TestCompare(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 0, listing.Compare("Abc", "aBC"))
	assert.Equal(t, -1, listing.Compare("alpha", "Beta"))
	assert.Equal(t, 1, listing.Compare(int64(3), int64(2)))
	assert.Equal(t, -1, listing.Compare(now, now.Add(time.Minute)))
	assert.Equal(t, -1, listing.Compare(entity.SeverityMedium, entity.SeverityCritical))
	assert.Equal(t, 0, listing.Compare("x", int64(1)))
	assert.Equal(t, -1, listing.Compare(entity.Timestamp{}, entity.ParseTimestamp("2024-01-01")))
}

func TestSortOptions(t *testing.T) {
	assert.Equal(t, []string{"severity", "category", "incidentDate"}, listing.SortOptions(entity.TabOperational))
	assert.Equal(t, []string{"severity", "category"}, listing.SortOptions(entity.TabProject))
}

func TestParseOrder(t *testing.T) {
	o, err := listing.ParseOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, listing.Desc, o)

	_, err = listing.ParseOrder("sideways")
	assert.Error(t, err)
}
