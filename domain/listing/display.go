package listing

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pyama86/opsboard/domain/entity"
)

type Order int

const (
	Asc Order = iota
	Desc
)

func (o Order) String() string {
	if o == Desc {
		return "desc"
	}
	return "asc"
}

func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return Asc, fmt.Errorf("unknown sort order %q", s)
}

// SortDirective の Field が空なら並べ替えない
type SortDirective struct {
	Field string
	Order Order
}

// Ranker を実装した値は Rank の大小で比較する
type Ranker interface {
	Rank() int
}

// FieldSet は一覧 1 種類ぶんの検索対象フィールドと値の取り出し方
type FieldSet[T any] struct {
	Searchable []string
	Sortable   []string
	Value      func(item T, field string) (any, bool)
}

// Display は検索語で絞り込んでから安定ソートした新しいスライスを返す。入力は変更しない。
func Display[T any](items []T, term string, sd SortDirective, fields FieldSet[T]) []T {
	out := Filter(items, term, fields)
	Sort(out, sd, fields)
	return out
}

// Filter は検索対象フィールドのどれかが検索語を含む要素だけを残す。大文字小文字は区別しない
func Filter[T any](items []T, term string, fields FieldSet[T]) []T {
	out := make([]T, 0, len(items))
	needle := strings.ToLower(term)
	for _, item := range items {
		if needle == "" || matches(item, needle, fields) {
			out = append(out, item)
		}
	}
	return out
}

func matches[T any](item T, needle string, fields FieldSet[T]) bool {
	for _, name := range fields.Searchable {
		v, ok := fields.Value(item, name)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(Text(v)), needle) {
			return true
		}
	}
	return false
}

func Sort[T any](items []T, sd SortDirective, fields FieldSet[T]) {
	if sd.Field == "" {
		return
	}
	slices.SortStableFunc(items, func(a, b T) int {
		va, okA := fields.Value(a, sd.Field)
		vb, okB := fields.Value(b, sd.Field)
		if !okA || !okB {
			return 0
		}
		c := Compare(va, vb)
		if sd.Order == Desc {
			return -c
		}
		return c
	})
}

// Compare は両方が文字列なら大文字小文字を無視して、それ以外は値の自然な順序で比べる。
// 比べられない組み合わせは 0
func Compare(a, b any) int {
	if ra, ok := a.(Ranker); ok {
		if rb, ok := b.(Ranker); ok {
			return cmp.Compare(ra.Rank(), rb.Rank())
		}
	}
	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(strings.ToLower(va), strings.ToLower(vb))
		}
	case int64:
		if vb, ok := b.(int64); ok {
			return cmp.Compare(va, vb)
		}
	case int:
		if vb, ok := b.(int); ok {
			return cmp.Compare(va, vb)
		}
	case float64:
		if vb, ok := b.(float64); ok {
			return cmp.Compare(va, vb)
		}
	case time.Time:
		if vb, ok := b.(time.Time); ok {
			return va.Compare(vb)
		}
	case entity.Timestamp:
		if vb, ok := b.(entity.Timestamp); ok {
			return va.Compare(vb)
		}
	case fmt.Stringer:
		if vb, ok := b.(fmt.Stringer); ok {
			return strings.Compare(strings.ToLower(va.String()), strings.ToLower(vb.String()))
		}
	}
	return 0
}

// Text は検索用に値を文字列にする
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
