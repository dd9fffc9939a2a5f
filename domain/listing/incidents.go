package listing

import (
	"github.com/pyama86/opsboard/domain/entity"
)

var OperationalFields = FieldSet[entity.OperationalIncident]{
	Searchable: []string{"serviceName", "category"},
	Sortable:   []string{"severity", "category", "incidentDate"},
	Value:      operationalValue,
}

var ProjectFields = FieldSet[entity.ProjectIncident]{
	Searchable: []string{"title", "project", "category"},
	Sortable:   []string{"severity", "category"},
	Value:      projectValue,
}

// SortOptions はタブごとに選べる並べ替え項目
func SortOptions(tab entity.Tab) []string {
	if tab == entity.TabProject {
		return append([]string(nil), ProjectFields.Sortable...)
	}
	return append([]string(nil), OperationalFields.Sortable...)
}

func operationalValue(i entity.OperationalIncident, field string) (any, bool) {
	switch field {
	case "id":
		return i.ID, true
	case "serviceName":
		return i.ServiceName, true
	case "incidentDate":
		return i.IncidentDate, true
	case "severity":
		return i.Severity, true
	case "category":
		return string(i.Category), true
	}
	return nil, false
}

func projectValue(i entity.ProjectIncident, field string) (any, bool) {
	switch field {
	case "id":
		return i.ID, true
	case "title":
		return i.Title, true
	case "project":
		return i.Project, true
	case "severity":
		return i.Severity, true
	case "category":
		return string(i.Category), true
	}
	return nil, false
}
