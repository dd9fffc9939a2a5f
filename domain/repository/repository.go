package repository

import (
	"context"
	"errors"

	"github.com/pyama86/opsboard/domain/entity"
)

// ErrNoSession はトークンが保存されていないときに返す
var ErrNoSession = errors.New("no session token")

type OperationalIncidentRepository interface {
	OperationalIncidents(ctx context.Context, token string) ([]entity.OperationalIncident, error)
	CreateOperationalIncident(ctx context.Context, token string, draft entity.OperationalIncidentDraft) error
}

type ProjectIncidentRepository interface {
	ProjectIncidents(ctx context.Context, token string) ([]entity.ProjectIncident, error)
	CreateProjectIncident(ctx context.Context, token string, draft entity.ProjectIncidentDraft) error
}

type IncidentRepository interface {
	OperationalIncidentRepository
	ProjectIncidentRepository
}

// SessionReader は呼ばれるたびに現在のトークンを返す。無ければ ok=false
type SessionReader interface {
	CurrentToken() (token string, ok bool)
}

type SessionRepository interface {
	SessionReader
	Load() (*entity.Session, error)
	Save(*entity.Session) error
	Clear() error
}

// Notifier は作成済みインシデントをどこかへ知らせる
type Notifier interface {
	NotifyIncidentCreated(ctx context.Context, tab entity.Tab, payload any) error
}
