package tables

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pyama86/opsboard/domain/entity"
	"github.com/pyama86/opsboard/domain/form"
)

const severityColumn = 3

var (
	operationalHeaders = []string{"ID", "Service", "Incident Date", "Severity", "Category"}
	projectHeaders     = []string{"ID", "Title", "Project", "Severity", "Category"}
)

var severityColors = map[entity.Severity]lipgloss.Color{
	entity.SeverityLow:      lipgloss.Color("2"),
	entity.SeverityMedium:   lipgloss.Color("3"),
	entity.SeverityHigh:     lipgloss.Color("208"),
	entity.SeverityCritical: lipgloss.Color("1"),
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	emptyStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
)

// Headers はタブごとの列見出し
func Headers(tab entity.Tab) []string {
	if tab == entity.TabProject {
		return append([]string(nil), projectHeaders...)
	}
	return append([]string(nil), operationalHeaders...)
}

func OperationalRows(items []entity.OperationalIncident) [][]string {
	rows := make([][]string, 0, len(items))
	for _, i := range items {
		rows = append(rows, []string{
			strconv.FormatInt(i.ID, 10),
			i.ServiceName,
			i.IncidentDate.String(),
			string(i.Severity),
			string(i.Category),
		})
	}
	return rows
}

func ProjectRows(items []entity.ProjectIncident) [][]string {
	rows := make([][]string, 0, len(items))
	for _, i := range items {
		rows = append(rows, []string{
			strconv.FormatInt(i.ID, 10),
			i.Title,
			i.Project,
			string(i.Severity),
			string(i.Category),
		})
	}
	return rows
}

// SeverityStyle は重要度ごとのバッジの色。知らない値は色を付けない
func SeverityStyle(s entity.Severity) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true)
	if c, ok := severityColors[s]; ok {
		st = st.Foreground(c)
	}
	return st
}

func SeverityBadge(s entity.Severity) string {
	if s == "" {
		return "-"
	}
	return SeverityStyle(s).Render(string(s))
}

// Render は CLI 出力用に枠付きの表を描く
func Render(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return emptyStyle.Render("No incidents found.")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == severityColumn && row >= 0 && row < len(rows) {
				return SeverityStyle(entity.Severity(rows[row][col])).Padding(0, 1)
			}
			return cellStyle
		})
	return t.String()
}

// RenderSchema は作成フォームの項目一覧を描く
func RenderSchema(schema form.Schema) string {
	rows := make([][]string, 0, len(schema))
	for _, f := range schema {
		rows = append(rows, []string{f.Name, f.Label, f.Kind.String(), strings.Join(f.EnumValues, ", ")})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Field", "Label", "Kind", "Options").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
