package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pyama86/opsboard/domain/entity"
	"github.com/pyama86/opsboard/domain/form"
	"github.com/pyama86/opsboard/domain/repository"
)

var ErrFormNotOpen = errors.New("create form is not open")

type FormState int

const (
	FormClosed FormState = iota
	FormOpen
	FormSubmitting
)

func (s FormState) String() string {
	switch s {
	case FormClosed:
		return "closed"
	case FormOpen:
		return "open"
	case FormSubmitting:
		return "submitting"
	}
	return "unknown"
}

func (c *Console) FormState() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formState
}

// Draft は作成中の下書きのコピー
func (c *Console) Draft() form.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Console) Schema() form.Schema {
	return form.SchemaFor(c.Tab())
}

// OpenCreate は空の下書きでフォームを開く。送信中は何もしない
func (c *Console) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.formState == FormSubmitting {
		return
	}
	c.formState = FormOpen
	c.draft = form.NewDraft(c.tab)
}

func (c *Console) CancelCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.formState != FormOpen {
		return
	}
	c.formState = FormClosed
	c.draft = form.NewDraft(c.tab)
}

// SetField は入力イベント 1 回ぶんを下書きへ反映する
func (c *Console) SetField(name, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.formState != FormOpen {
		return ErrFormNotOpen
	}
	return c.draft.Set(name, raw)
}

// Submit は下書きをそのタブの作成 API へ送る。
// 成功したらフォームを閉じて両タブの一覧を取り直す。
// 失敗したらフォームは開いたまま、下書きもそのまま残す。
func (c *Console) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.formState != FormOpen {
		c.mu.Unlock()
		return ErrFormNotOpen
	}
	c.mu.Unlock()

	token, ok := c.session.CurrentToken()
	if !ok {
		slog.Info("Skip submit: not logged in")
		return repository.ErrNoSession
	}

	c.mu.Lock()
	if c.formState != FormOpen {
		c.mu.Unlock()
		return ErrFormNotOpen
	}
	c.formState = FormSubmitting
	draft := c.draft
	c.mu.Unlock()

	if err := c.create(ctx, token, draft); err != nil {
		c.mu.Lock()
		c.formState = FormOpen
		c.mu.Unlock()
		slog.Error("Failed to create incident", slog.String("tab", draft.Tab().String()), slog.Any("err", err))
		return fmt.Errorf("create %s incident: %w", draft.Tab(), err)
	}

	c.mu.Lock()
	c.formState = FormClosed
	c.draft = form.NewDraft(c.tab)
	c.mu.Unlock()
	slog.Info("Incident created", slog.String("tab", draft.Tab().String()))

	if err := c.Refresh(ctx); err != nil {
		slog.Warn("Failed to refresh after create", slog.Any("err", err))
	}

	if c.notifier != nil {
		if err := c.notifier.NotifyIncidentCreated(ctx, draft.Tab(), draft.Payload()); err != nil {
			slog.Error("Failed to notify incident", slog.Any("err", err))
		}
	}
	return nil
}

// create は下書きのタブで送り先を決める。表示中のタブは見ない
func (c *Console) create(ctx context.Context, token string, draft form.Draft) error {
	switch draft.Tab() {
	case entity.TabOperational:
		d, _ := draft.Operational()
		return c.incidents.CreateOperationalIncident(ctx, token, d)
	case entity.TabProject:
		d, _ := draft.Project()
		return c.incidents.CreateProjectIncident(ctx, token, d)
	}
	return fmt.Errorf("unknown tab %s", draft.Tab())
}
