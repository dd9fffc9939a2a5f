package blocks

import (
	"fmt"

	"github.com/pyama86/opsboard/domain/entity"
	"github.com/slack-go/slack"
)

var SeverityMap = map[entity.Severity]string{
	entity.SeverityLow:      "✅ LOW",
	entity.SeverityMedium:   "🔍 MEDIUM",
	entity.SeverityHigh:     "⚠️ HIGH",
	entity.SeverityCritical: "🚨 CRITICAL",
}

func severityText(s entity.Severity) string {
	if s == "" {
		return "-"
	}
	if t, ok := SeverityMap[s]; ok {
		return t
	}
	return string(s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func field(label, value string) *slack.TextBlockObject {
	return slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s:* %s", label, orDash(value)), false, false)
}

func idField(label string, id *int64) *slack.TextBlockObject {
	if id == nil {
		return field(label, "")
	}
	return field(label, fmt.Sprintf("%d", *id))
}

// IncidentCreated は作成されたインシデントの告知。payload は各タブの下書き
func IncidentCreated(tab entity.Tab, payload any) []slack.Block {
	var (
		title    string
		severity entity.Severity
		fields   []*slack.TextBlockObject
	)
	switch d := payload.(type) {
	case entity.OperationalIncidentDraft:
		title, severity = d.Title, d.Severity
		fields = []*slack.TextBlockObject{
			field("Severity", severityText(d.Severity)),
			field("Status", string(d.Status)),
			field("Category", string(d.Category)),
			field("Incident Date", d.IncidentDate),
			idField("Operation ID", d.OperationID),
			idField("Reported By", d.ReportedByID),
		}
	case entity.ProjectIncidentDraft:
		title, severity = d.Title, d.Severity
		fields = []*slack.TextBlockObject{
			field("Severity", severityText(d.Severity)),
			field("Status", string(d.Status)),
			field("Category", string(d.Category)),
			field("Start Date", d.StartDate),
			idField("Department ID", d.DepartmentID),
			idField("Project ID", d.ProjectID),
		}
	default:
		fields = []*slack.TextBlockObject{field("Type", tab.Title())}
	}

	header := Mention(severity) + fmt.Sprintf("🚨 New %s: *%s*", tabLabel(tab), orDash(title))

	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", header, false, false),
			fields,
			nil,
		),
	}
}

func tabLabel(tab entity.Tab) string {
	switch tab {
	case entity.TabProject:
		return "project incident"
	default:
		return "operational incident"
	}
}

// Mention は深刻度に応じて付けるメンション。HIGH 未満は付けない
func Mention(s entity.Severity) string {
	switch s {
	case entity.SeverityCritical:
		return "<!channel> "
	case entity.SeverityHigh:
		return "<!here> "
	}
	return ""
}
