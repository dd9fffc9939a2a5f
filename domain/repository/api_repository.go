package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Songmu/retry"
	"github.com/google/uuid"
	"github.com/pyama86/opsboard/domain/entity"
)

const (
	operationalIncidentsPath = "/api/operations/incidents"
	projectIncidentsPath     = "/api/projects/incidents"
)

var ErrUnauthorized = errors.New("unauthorized")

// APIError はバックエンドが 2xx 以外を返したときのエラー。
// 409 の {field, message} はそのまま保持する
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Field      string
	Message    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Field != "" {
		msg += fmt.Sprintf(": %s: %s", e.Field, e.Message)
	} else if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// Temporary はリトライして意味がありそうなステータスか
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type APIRepository struct {
	baseURL       string
	client        *http.Client
	retryCount    uint
	retryInterval time.Duration
}

func NewAPIRepository(cfg APIConfig) (*APIRepository, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", cfg.BaseURL)
	}
	return &APIRepository{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		client:        &http.Client{Timeout: cfg.Timeout},
		retryCount:    cfg.RetryCount,
		retryInterval: cfg.RetryInterval,
	}, nil
}

func (r *APIRepository) OperationalIncidents(ctx context.Context, token string) ([]entity.OperationalIncident, error) {
	var incidents []entity.OperationalIncident
	if err := r.getJSON(ctx, token, operationalIncidentsPath, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *APIRepository) ProjectIncidents(ctx context.Context, token string) ([]entity.ProjectIncident, error) {
	var incidents []entity.ProjectIncident
	if err := r.getJSON(ctx, token, projectIncidentsPath, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

// ProjectIncidentsFor は部署・プロジェクトで絞ったプロジェクトインシデント一覧
func (r *APIRepository) ProjectIncidentsFor(ctx context.Context, token string, departmentID, projectID int64) ([]entity.ProjectIncident, error) {
	var incidents []entity.ProjectIncident
	path := fmt.Sprintf("%s/department/%d/%d", projectIncidentsPath, departmentID, projectID)
	if err := r.getJSON(ctx, token, path, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *APIRepository) CreateOperationalIncident(ctx context.Context, token string, draft entity.OperationalIncidentDraft) error {
	return r.postJSON(ctx, token, operationalIncidentsPath, draft)
}

func (r *APIRepository) CreateProjectIncident(ctx context.Context, token string, draft entity.ProjectIncidentDraft) error {
	return r.postJSON(ctx, token, projectIncidentsPath, draft)
}

func (r *APIRepository) getJSON(ctx context.Context, token, path string, out any) error {
	var body []byte
	// リトライしても結果の変わらないエラーはここに入れて打ち切る
	var permanent error
	err := retry.Retry(r.retryCount+1, r.retryInterval, func() error {
		b, err := r.do(ctx, http.MethodGet, token, path, nil)
		if err != nil {
			var apiErr *APIError
			if (errors.As(err, &apiErr) && !apiErr.Temporary()) || ctx.Err() != nil {
				permanent = err
				return nil
			}
			slog.Warn("GET failed", slog.String("path", path), slog.Any("err", err))
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return err
	}
	if permanent != nil {
		return permanent
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// 作成は冪等ではないのでリトライしない
func (r *APIRepository) postJSON(ctx context.Context, token, path string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	_, err = r.do(ctx, http.MethodPost, token, path, b)
	return err
}

func (r *APIRepository) do(ctx context.Context, method, token, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: path, StatusCode: res.StatusCode}
		decodeErrorBody(b, apiErr)
		slog.Debug("api error", slog.String("request_id", requestID), slog.Any("err", apiErr))
		return nil, apiErr
	}
	return b, nil
}

func decodeErrorBody(b []byte, apiErr *APIError) {
	var payload struct {
		Field   string `json:"field"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(b))
		return
	}
	apiErr.Field = payload.Field
	apiErr.Message = payload.Message
	if apiErr.Message == "" {
		apiErr.Message = payload.Error
	}
}
