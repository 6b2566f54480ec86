package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/shyamgroup/backoffice/backend"
	"github.com/shyamgroup/backoffice/logger"
	"github.com/shyamgroup/backoffice/web/locale"
	"github.com/shyamgroup/backoffice/web/session"
)

// Roles an admin may assign.
var Roles = []string{session.RoleAdmin, session.RoleUploader}

// UserAdminService manages console accounts. Calls need an admin bearer
// header in ctx (see AuthGate.Context).
type UserAdminService struct {
	client *backend.Client
}

func NewUserAdminService(client *backend.Client) *UserAdminService {
	return &UserAdminService{client: client}
}

func (s *UserAdminService) ListUsers(ctx context.Context) ([]backend.Record, error) {
	res, err := s.client.Get(ctx, "/auth/users", nil)
	if err != nil {
		logger.Warning("list users failed:", err)
		return []backend.Record{}, &backend.ValidationError{
			Msg: backend.UserMessage(err, locale.I18n("pages.users.toasts.loadFailed")),
		}
	}
	return res.Data, nil
}

// CreateUploader registers a new uploader account and returns its email.
func (s *UserAdminService) CreateUploader(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", &backend.ValidationError{Msg: locale.I18n("pages.uploader.toasts.required")}
	}
	res, err := s.client.PostJSON(ctx, "/auth/create-uploader", Credentials{Email: email, Password: password})
	if err != nil {
		logger.Warningf("create uploader %s failed: %v", email, err)
		return "", &backend.ValidationError{
			Msg: backend.UserMessage(err, locale.I18n("pages.uploader.toasts.failed")),
		}
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := res.Decode(&body); err != nil || body.Email == "" {
		body.Email = email
	}
	logger.Infof("uploader %s created", body.Email)
	return body.Email, nil
}

// SetUserRole changes the role of user id.
func (s *UserAdminService) SetUserRole(ctx context.Context, id, role string) error {
	valid := false
	for _, r := range Roles {
		if r == role {
			valid = true
		}
	}
	if !valid {
		return &backend.ValidationError{Msg: locale.I18n("pages.users.toasts.badRole", "Role=="+role)}
	}
	_, err := s.client.PutJSON(ctx, "/auth/users/"+url.PathEscape(id), map[string]string{"role": role})
	if err != nil {
		logger.Warningf("set role of %s failed: %v", id, err)
		return &backend.ValidationError{
			Msg: backend.UserMessage(err, locale.I18n("pages.users.toasts.roleFailed")),
		}
	}
	logger.Infof("user %s is now %s", id, role)
	return nil
}

// DeleteUser removes user id. Without confirmed no request is made.
func (s *UserAdminService) DeleteUser(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return backend.ErrNotConfirmed
	}
	_, err := s.client.Delete(ctx, "/auth/users/"+url.PathEscape(id), nil)
	if err != nil {
		logger.Warningf("delete user %s failed: %v", id, err)
		return &backend.ValidationError{
			Msg: backend.UserMessage(err, locale.I18n("pages.users.toasts.deleteFailed")),
		}
	}
	logger.Infof("user %s deleted", id)
	return nil
}
