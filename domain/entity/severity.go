package entity

import "strings"

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities は低い順
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank は深刻度の大小を返す。大文字小文字は区別しない。
// 未知の値は -1 で、どの既知の値よりも小さい
func (s Severity) Rank() int {
	for i, v := range Severities {
		if strings.EqualFold(string(v), string(s)) {
			return i
		}
	}
	return -1
}
