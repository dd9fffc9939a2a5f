package form

import (
	"github.com/pyama86/opsboard/domain/entity"
)

type FieldKind int

const (
	KindText FieldKind = iota
	KindLongText
	KindDateTime
	KindEnum
	KindInteger
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLongText:
		return "longtext"
	case KindDateTime:
		return "datetime"
	case KindEnum:
		return "enum"
	case KindInteger:
		return "integer"
	}
	return "unknown"
}

type FieldSpec struct {
	Name       string
	Label      string
	Kind       FieldKind
	EnumValues []string
}

// Schema はフォームに並べる順のフィールド一覧
type Schema []FieldSpec

func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// IntegerFields は入力時に数値へ変換するフィールド名
func (s Schema) IntegerFields() []string {
	var names []string
	for _, f := range s {
		if f.Kind == KindInteger {
			names = append(names, f.Name)
		}
	}
	return names
}

func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for _, f := range s {
		names = append(names, f.Name)
	}
	return names
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

var operationalSchema = Schema{
	{Name: "title", Label: "Title", Kind: KindText},
	{Name: "description", Label: "Description", Kind: KindLongText},
	{Name: "incidentDate", Label: "Incident Date", Kind: KindDateTime},
	{Name: "resolutionDate", Label: "Resolution Date", Kind: KindDateTime},
	{Name: "severity", Label: "Severity", Kind: KindEnum, EnumValues: enumValues(entity.Severities)},
	{Name: "status", Label: "Status", Kind: KindEnum, EnumValues: enumValues(entity.Statuses)},
	{Name: "category", Label: "Category", Kind: KindEnum, EnumValues: enumValues(entity.OperationalCategories)},
	{Name: "rootCause", Label: "Root Cause", Kind: KindLongText},
	{Name: "actionTaken", Label: "Action Taken", Kind: KindLongText},
	{Name: "operationId", Label: "Operation ID", Kind: KindInteger},
	{Name: "reportedById", Label: "Reported By ID", Kind: KindInteger},
	{Name: "resolvedById", Label: "Resolved By ID", Kind: KindInteger},
}

var projectSchema = Schema{
	{Name: "title", Label: "Title", Kind: KindText},
	{Name: "description", Label: "Description", Kind: KindLongText},
	{Name: "startDate", Label: "Start Date", Kind: KindDateTime},
	{Name: "endDate", Label: "End Date", Kind: KindDateTime},
	{Name: "severity", Label: "Severity", Kind: KindEnum, EnumValues: enumValues(entity.Severities)},
	{Name: "status", Label: "Status", Kind: KindEnum, EnumValues: enumValues(entity.Statuses)},
	{Name: "category", Label: "Category", Kind: KindEnum, EnumValues: enumValues(entity.ProjectCategories)},
	{Name: "rootCause", Label: "Root Cause", Kind: KindLongText},
	{Name: "actionTaken", Label: "Action Taken", Kind: KindLongText},
	{Name: "departmentId", Label: "Department ID", Kind: KindInteger},
	{Name: "projectId", Label: "Project ID", Kind: KindInteger},
}

// SchemaFor は呼び出し側が書き換えても影響しないようコピーを返す
func SchemaFor(tab entity.Tab) Schema {
	var src Schema
	switch tab {
	case entity.TabProject:
		src = projectSchema
	default:
		src = operationalSchema
	}
	out := make(Schema, len(src))
	copy(out, src)
	return out
}
