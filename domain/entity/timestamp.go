package entity

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// バックエンドは LocalDateTime をタイムゾーン無しで返すことがある
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp はパースできなかった場合も元の文字列を保持する
type Timestamp struct {
	Time time.Time
	Raw  string
}

func ParseTimestamp(s string) Timestamp {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Raw: s}
		}
	}
	return Timestamp{Raw: s}
}

func (t Timestamp) Valid() bool {
	return !t.Time.IsZero()
}

// Compare は日時順に比べる。パースできない値は有効な日時より前に置き、
// 両方パースできない場合は元の文字列を大文字小文字を無視して比べる
func (t Timestamp) Compare(o Timestamp) int {
	switch {
	case t.Valid() && o.Valid():
		return t.Time.Compare(o.Time)
	case t.Valid():
		return 1
	case o.Valid():
		return -1
	}
	return strings.Compare(strings.ToLower(t.Raw), strings.ToLower(o.Raw))
}

func (t Timestamp) String() string {
	if t.Valid() {
		return t.Time.Format("2006-01-02 15:04")
	}
	return t.Raw
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseTimestamp(s)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw == "" && t.Valid() {
		return json.Marshal(t.Time.Format("2006-01-02T15:04:05"))
	}
	if t.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.Raw)
}
