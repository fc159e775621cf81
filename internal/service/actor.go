package service

import (
	"context"
	"time"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/storage"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID        string
	Role      domain.Role
	IsAdmin   bool
	AdminRole domain.AdminRole
}

// IsSuperAdmin reports whether the actor holds the super_admin role.
func (a Actor) IsSuperAdmin() bool {
	return a.IsAdmin && a.AdminRole == domain.AdminRoleSuper
}

// avatarResolver turns stored avatar keys into client URLs.
type avatarResolver struct {
	store  storage.Storage
	expiry time.Duration
}

func (r avatarResolver) url(ctx context.Context, key string) string {
	if key == "" || r.store == nil {
		return ""
	}
	url, err := r.store.URL(ctx, key, r.expiry)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("failed to resolve avatar url")
		return ""
	}
	return url
}

// response builds the full view of user with its avatar URL.
func (r avatarResolver) response(ctx context.Context, user *domain.User) domain.UserResponse {
	resp := user.ToResponse()
	resp.AvatarURL = r.url(ctx, user.AvatarKey)
	return resp
}
