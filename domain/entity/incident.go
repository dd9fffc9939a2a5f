package entity

import "strings"

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// Statuses はフォームの選択肢として並べる順
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Rank はワークフロー上の順序を返す。大文字小文字は区別しない。未知の値は -1
func (s Status) Rank() int {
	for i, v := range Statuses {
		if strings.EqualFold(string(v), string(s)) {
			return i
		}
	}
	return -1
}

type OperationalCategory string

const (
	OperationalCategoryNetwork  OperationalCategory = "NETWORK"
	OperationalCategoryHardware OperationalCategory = "HARDWARE"
	OperationalCategorySoftware OperationalCategory = "SOFTWARE"
	OperationalCategoryOther    OperationalCategory = "OTHER"
)

var OperationalCategories = []OperationalCategory{
	OperationalCategoryNetwork,
	OperationalCategoryHardware,
	OperationalCategorySoftware,
	OperationalCategoryOther,
}

type ProjectCategory string

const (
	ProjectCategorySystemFailure   ProjectCategory = "SYSTEM_FAILURE"
	ProjectCategoryCyberAttack     ProjectCategory = "CYBER_ATTACK"
	ProjectCategoryHardwareFailure ProjectCategory = "HARDWARE_FAILURE"
	ProjectCategoryThirdPartyIssue ProjectCategory = "THIRD_PARTY_ISSUE"
)

var ProjectCategories = []ProjectCategory{
	ProjectCategorySystemFailure,
	ProjectCategoryCyberAttack,
	ProjectCategoryHardwareFailure,
	ProjectCategoryThirdPartyIssue,
}

// OperationalIncident は /api/operations/incidents の一覧要素
type OperationalIncident struct {
	ID           int64               `json:"id"`
	ServiceName  string              `json:"serviceName"`
	IncidentDate Timestamp           `json:"incidentDate"`
	Severity     Severity            `json:"severity"`
	Category     OperationalCategory `json:"category"`
}

// ProjectIncident は /api/projects/incidents の一覧要素
type ProjectIncident struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Project  string          `json:"project"`
	Severity Severity        `json:"severity"`
	Category ProjectCategory `json:"category"`
}

// OperationalIncidentDraft は作成時に POST する本文。
// 日時はフォーム入力のまま (datetime-local 形式) 送る。
// ID は入力された項目だけ送る。0 も入力値として送る
type OperationalIncidentDraft struct {
	Title          string              `json:"title,omitempty"`
	Description    string              `json:"description,omitempty"`
	Severity       Severity            `json:"severity,omitempty"`
	Status         Status              `json:"status,omitempty"`
	IncidentDate   string              `json:"incidentDate,omitempty"`
	ResolutionDate string              `json:"resolutionDate,omitempty"`
	Category       OperationalCategory `json:"category,omitempty"`
	RootCause      string              `json:"rootCause,omitempty"`
	ActionTaken    string              `json:"actionTaken,omitempty"`
	OperationID    *int64              `json:"operationId,omitempty"`
	ReportedByID   *int64              `json:"reportedById,omitempty"`
	ResolvedByID   *int64              `json:"resolvedById,omitempty"`
}

type ProjectIncidentDraft struct {
	Title        string          `json:"title,omitempty"`
	Description  string          `json:"description,omitempty"`
	Severity     Severity        `json:"severity,omitempty"`
	Status       Status          `json:"status,omitempty"`
	StartDate    string          `json:"startDate,omitempty"`
	EndDate      string          `json:"endDate,omitempty"`
	Category     ProjectCategory `json:"category,omitempty"`
	RootCause    string          `json:"rootCause,omitempty"`
	ActionTaken  string          `json:"actionTaken,omitempty"`
	DepartmentID *int64          `json:"departmentId,omitempty"`
	ProjectID    *int64          `json:"projectId,omitempty"`
}

// Int64 は下書きの ID 項目に入れるためのポインタを返す
func Int64(n int64) *int64 {
	return &n
}
