package form

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/pyama86/opsboard/domain/entity"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidOption = errors.New("invalid option")
)

// Draft は作成フォームの入力途中の値。
// タブごとに型の違う本文を持ち、生成時のタブ以外の本文は使わない。
type Draft struct {
	tab         entity.Tab
	operational entity.OperationalIncidentDraft
	project     entity.ProjectIncidentDraft
}

func NewDraft(tab entity.Tab) Draft {
	return Draft{tab: tab}
}

func (d Draft) Tab() entity.Tab {
	return d.tab
}

func (d Draft) Schema() Schema {
	return SchemaFor(d.tab)
}

func (d Draft) IsEmpty() bool {
	switch d.tab {
	case entity.TabProject:
		return d.project == entity.ProjectIncidentDraft{}
	default:
		return d.operational == entity.OperationalIncidentDraft{}
	}
}

// Operational は運用インシデントの下書きの場合のみ本文を返す
func (d Draft) Operational() (entity.OperationalIncidentDraft, bool) {
	if d.tab != entity.TabOperational {
		return entity.OperationalIncidentDraft{}, false
	}
	return d.operational, true
}

func (d Draft) Project() (entity.ProjectIncidentDraft, bool) {
	if d.tab != entity.TabProject {
		return entity.ProjectIncidentDraft{}, false
	}
	return d.project, true
}

// Payload は送信用の本文
func (d Draft) Payload() any {
	if d.tab == entity.TabProject {
		return d.project
	}
	return d.operational
}

// Set は name のフィールドへ入力値を反映する。
// スキーマに無い名前は ErrUnknownField、選択肢に無い値は ErrInvalidOption で拒否する。
// 整数フィールドはここで数値に変換し、文字列のまま保持することはない。
func (d *Draft) Set(name, raw string) error {
	spec, ok := d.Schema().Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	ptr, ok := d.field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	switch spec.Kind {
	case KindInteger:
		p, ok := ptr.(**int64)
		if !ok {
			return fmt.Errorf("field %s is not numeric", name)
		}
		// 下書きはコピーして使うので、指す先を書き換えず新しい値を入れる
		*p = entity.Int64(CoerceInteger(raw))
		return nil
	case KindEnum:
		raw = strings.TrimSpace(raw)
		if raw != "" && !slices.Contains(spec.EnumValues, raw) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidOption, name, raw)
		}
	}
	return assignText(ptr, raw)
}

// Value は表示用に現在値を文字列で返す
func (d Draft) Value(name string) (string, bool) {
	ptr, ok := d.field(name)
	if !ok {
		return "", false
	}
	switch p := ptr.(type) {
	case *string:
		return *p, true
	case **int64:
		if *p == nil {
			return "", true
		}
		return strconv.FormatInt(**p, 10), true
	case *entity.Severity:
		return string(*p), true
	case *entity.Status:
		return string(*p), true
	case *entity.OperationalCategory:
		return string(*p), true
	case *entity.ProjectCategory:
		return string(*p), true
	}
	return "", false
}

func (d *Draft) field(name string) (any, bool) {
	switch d.tab {
	case entity.TabProject:
		f, ok := projectFields[name]
		if !ok {
			return nil, false
		}
		return f(&d.project), true
	default:
		f, ok := operationalFields[name]
		if !ok {
			return nil, false
		}
		return f(&d.operational), true
	}
}

func assignText(ptr any, v string) error {
	switch p := ptr.(type) {
	case *string:
		*p = v
	case *entity.Severity:
		*p = entity.Severity(v)
	case *entity.Status:
		*p = entity.Status(v)
	case *entity.OperationalCategory:
		*p = entity.OperationalCategory(v)
	case *entity.ProjectCategory:
		*p = entity.ProjectCategory(v)
	default:
		return fmt.Errorf("unsupported field type %T", ptr)
	}
	return nil
}

// CoerceInteger は入力値を整数に変換する。数値として読めない値は 0 になる。
// 小数はゼロ方向へ切り捨てる。
func CoerceInteger(raw string) int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

var operationalFields = map[string]func(*entity.OperationalIncidentDraft) any{
	"title":          func(d *entity.OperationalIncidentDraft) any { return &d.Title },
	"description":    func(d *entity.OperationalIncidentDraft) any { return &d.Description },
	"incidentDate":   func(d *entity.OperationalIncidentDraft) any { return &d.IncidentDate },
	"resolutionDate": func(d *entity.OperationalIncidentDraft) any { return &d.ResolutionDate },
	"severity":       func(d *entity.OperationalIncidentDraft) any { return &d.Severity },
	"status":         func(d *entity.OperationalIncidentDraft) any { return &d.Status },
	"category":       func(d *entity.OperationalIncidentDraft) any { return &d.Category },
	"rootCause":      func(d *entity.OperationalIncidentDraft) any { return &d.RootCause },
	"actionTaken":    func(d *entity.OperationalIncidentDraft) any { return &d.ActionTaken },
	"operationId":    func(d *entity.OperationalIncidentDraft) any { return &d.OperationID },
	"reportedById":   func(d *entity.OperationalIncidentDraft) any { return &d.ReportedByID },
	"resolvedById":   func(d *entity.OperationalIncidentDraft) any { return &d.ResolvedByID },
}

var projectFields = map[string]func(*entity.ProjectIncidentDraft) any{
	"title":        func(d *entity.ProjectIncidentDraft) any { return &d.Title },
	"description":  func(d *entity.ProjectIncidentDraft) any { return &d.Description },
	"startDate":    func(d *entity.ProjectIncidentDraft) any { return &d.StartDate },
	"endDate":      func(d *entity.ProjectIncidentDraft) any { return &d.EndDate },
	"severity":     func(d *entity.ProjectIncidentDraft) any { return &d.Severity },
	"status":       func(d *entity.ProjectIncidentDraft) any { return &d.Status },
	"category":     func(d *entity.ProjectIncidentDraft) any { return &d.Category },
	"rootCause":    func(d *entity.ProjectIncidentDraft) any { return &d.RootCause },
	"actionTaken":  func(d *entity.ProjectIncidentDraft) any { return &d.ActionTaken },
	"departmentId": func(d *entity.ProjectIncidentDraft) any { return &d.DepartmentID },
	"projectId":    func(d *entity.ProjectIncidentDraft) any { return &d.ProjectID },
}
