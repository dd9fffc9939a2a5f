package entity

import (
	"fmt"
	"strings"
)

// Tab はコンソールで表示中のインシデント種別
type Tab int

const (
	TabOperational Tab = iota
	TabProject
)

var Tabs = []Tab{TabOperational, TabProject}

func (t Tab) String() string {
	switch t {
	case TabOperational:
		return "operational"
	case TabProject:
		return "project"
	}
	return fmt.Sprintf("Tab(%d)", int(t))
}

// Title は画面の見出し用
func (t Tab) Title() string {
	switch t {
	case TabOperational:
		return "Operational Incidents"
	case TabProject:
		return "Project Incidents"
	}
	return t.String()
}

func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "operational", "operation", "op", "ops":
		return TabOperational, nil
	case "project", "projects", "pj":
		return TabProject, nil
	}
	return 0, fmt.Errorf("unknown tab %q", s)
}
