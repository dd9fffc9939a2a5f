package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pyama86/opsboard/domain/entity"
)

// FileSessionRepository はセッションを JSON ファイルに保存する。
// CurrentToken は毎回ファイルを読み直す
type FileSessionRepository struct {
	path string
}

func NewFileSessionRepository(path string) *FileSessionRepository {
	return &FileSessionRepository{path: path}
}

func (r *FileSessionRepository) Path() string {
	return r.path
}

func (r *FileSessionRepository) CurrentToken() (string, bool) {
	s, err := r.Load()
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			slog.Warn("Failed to read session", slog.String("path", r.path), slog.Any("err", err))
		}
		return "", false
	}
	return s.Token, true
}

func (r *FileSessionRepository) Load() (*entity.Session, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var s entity.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	s.Token = strings.TrimSpace(s.Token)
	if s.Token == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (r *FileSessionRepository) Save(s *entity.Session) error {
	if s == nil || strings.TrimSpace(s.Token) == "" {
		return fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (r *FileSessionRepository) Clear() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
