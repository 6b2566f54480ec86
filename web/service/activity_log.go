package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/locale"
)

// ActivityLogService reads and prunes the backend's audit trail (admin only).
type ActivityLogService struct {
	client *backend.Client
	limit  int
}

func NewActivityLogService(client *backend.Client, limit int) *ActivityLogService {
	if limit <= 0 {
		limit = 200
	}
	return &ActivityLogService{client: client, limit: limit}
}

// ListLogs returns the first page of log entries, newest first.
func (s *ActivityLogService) ListLogs(ctx context.Context) ([]backend.Record, error) {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("limit", strconv.Itoa(s.limit))
	res, err := s.client.Get(ctx, "/logs", q)
	if err != nil {
		logger.Warning("list activity logs failed:", err)
		return []backend.Record{}, &backend.ValidationError{
			Msg: backend.UserMessage(err, locale.I18n("pages.logs.toasts.loadFailed")),
		}
	}
	return res.Data, nil
}

// DeleteLog removes one entry. Without confirmed no request is made.
func (s *ActivityLogService) DeleteLog(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return backend.ErrNotConfirmed
	}
	if _, err := s.client.Delete(ctx, "/logs/"+url.PathEscape(id), nil); err != nil {
		logger.Warningf("delete log %s failed: %v", id, err)
		return &backend.ValidationError{
			Msg: backend.UserMessage(err, locale.I18n("pages.logs.toasts.deleteFailed")),
		}
	}
	return nil
}
