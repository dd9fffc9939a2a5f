package handler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/pyama86/opsboard/domain/entity"
	"github.com/pyama86/opsboard/domain/form"
	"github.com/pyama86/opsboard/domain/listing"
	"github.com/pyama86/opsboard/domain/repository"
	"golang.org/x/sync/errgroup"
)

// collection は一覧 1 種類ぶんの状態。
// 取得のたびに gen を進め、古い gen の結果は捨てる
type collection[T any] struct {
	items   []T
	gen     uint64
	loading bool
	err     error
}

func (c *collection[T]) begin() uint64 {
	c.gen++
	c.loading = true
	return c.gen
}

// apply は gen が最新のときだけ結果を反映する。失敗時は前回の一覧を残す
func (c *collection[T]) apply(gen uint64, items []T, err error) bool {
	if gen != c.gen {
		return false
	}
	c.loading = false
	c.err = err
	if err == nil {
		c.items = items
	}
	return true
}

// Console はインシデント画面の状態を持つ。
// タブ、検索語、並び順、両タブの一覧、作成フォームを一つのロックで守る
type Console struct {
	mu        sync.Mutex
	incidents repository.IncidentRepository
	session   repository.SessionReader
	notifier  repository.Notifier

	tab    entity.Tab
	search string
	sort   listing.SortDirective

	operational collection[entity.OperationalIncident]
	project     collection[entity.ProjectIncident]

	formState FormState
	draft     form.Draft
}

type Option func(*Console)

func WithNotifier(n repository.Notifier) Option {
	return func(c *Console) {
		c.notifier = n
	}
}

func NewConsole(incidents repository.IncidentRepository, session repository.SessionReader, opts ...Option) *Console {
	c := &Console{
		incidents: incidents,
		session:   session,
		tab:       entity.TabOperational,
		draft:     form.NewDraft(entity.TabOperational),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Console) Tab() entity.Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab
}

// SelectTab はタブを切り替え、作成中の下書きを捨てる。検索語と並び順はそのまま
func (c *Console) SelectTab(tab entity.Tab) error {
	if !slices.Contains(entity.Tabs, tab) {
		return fmt.Errorf("unknown tab %d", int(tab))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = tab
	c.draft = form.NewDraft(tab)
	return nil
}

func (c *Console) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

func (c *Console) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
}

func (c *Console) SortDirective() listing.SortDirective {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// SetSort は現在のタブで選べる項目だけを受け付ける。Field が空なら並べ替えを解除する
func (c *Console) SetSort(sd listing.SortDirective) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sd.Field != "" && !slices.Contains(listing.SortOptions(c.tab), sd.Field) {
		return fmt.Errorf("cannot sort %s incidents by %q", c.tab, sd.Field)
	}
	c.sort = sd
	return nil
}

func (c *Console) SortOptions() []string {
	return listing.SortOptions(c.Tab())
}

func (c *Console) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.operational.loading || c.project.loading
}

// Refresh は両タブの一覧を並行して取り直す。
// それぞれ独立に失敗を扱い、失敗した側は前回の一覧を残す。
func (c *Console) Refresh(ctx context.Context) error {
	token, ok := c.session.CurrentToken()
	if !ok {
		slog.Info("Skip refresh: not logged in")
		return repository.ErrNoSession
	}

	c.mu.Lock()
	opGen := c.operational.begin()
	pjGen := c.project.begin()
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		items, err := c.incidents.OperationalIncidents(ctx, token)
		if err != nil {
			slog.Error("Failed to fetch operational incidents", slog.Any("err", err))
			err = fmt.Errorf("fetch operational incidents: %w", err)
		}
		c.mu.Lock()
		applied := c.operational.apply(opGen, items, err)
		c.mu.Unlock()
		if !applied {
			slog.Debug("Discard stale operational incidents", slog.Uint64("gen", opGen))
		}
		return err
	})
	g.Go(func() error {
		items, err := c.incidents.ProjectIncidents(ctx, token)
		if err != nil {
			slog.Error("Failed to fetch project incidents", slog.Any("err", err))
			err = fmt.Errorf("fetch project incidents: %w", err)
		}
		c.mu.Lock()
		applied := c.project.apply(pjGen, items, err)
		c.mu.Unlock()
		if !applied {
			slog.Debug("Discard stale project incidents", slog.Uint64("gen", pjGen))
		}
		return err
	})
	return g.Wait()
}

func (c *Console) OperationalRows() []entity.OperationalIncident {
	c.mu.Lock()
	defer c.mu.Unlock()
	return listing.Display(c.operational.items, c.search, c.sort, listing.OperationalFields)
}

func (c *Console) ProjectRows() []entity.ProjectIncident {
	c.mu.Lock()
	defer c.mu.Unlock()
	return listing.Display(c.project.items, c.search, c.sort, listing.ProjectFields)
}

// Snapshot は描画用に現在の状態をまとめて返す
type Snapshot struct {
	Tab         entity.Tab
	Search      string
	Sort        listing.SortDirective
	SortOptions []string
	Loading     bool

	Operational    []entity.OperationalIncident
	Project        []entity.ProjectIncident
	OperationalErr error
	ProjectErr     error

	FormState FormState
	Draft     form.Draft
}

func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Tab:            c.tab,
		Search:         c.search,
		Sort:           c.sort,
		SortOptions:    listing.SortOptions(c.tab),
		Loading:        c.operational.loading || c.project.loading,
		Operational:    listing.Display(c.operational.items, c.search, c.sort, listing.OperationalFields),
		Project:        listing.Display(c.project.items, c.search, c.sort, listing.ProjectFields),
		OperationalErr: c.operational.err,
		ProjectErr:     c.project.err,
		FormState:      c.formState,
		Draft:          c.draft,
	}
}
