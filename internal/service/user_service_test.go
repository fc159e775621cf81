package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/jwt"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/storage"
)

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.userSvc.Register(ctx, &domain.RegisterRequest{
		Name:     " Ada ",
		Email:    "Ada@Example.com ",
		Password: "secret123",
		Role:     domain.RoleCleaner,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User.Profile)

	claims, err := env.tokens.ValidateToken(ctx, resp.Token, jwt.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.ID)
	assert.Equal(t, "cleaner", claims.Role)
	assert.False(t, claims.IsAdmin)

	_, err = env.userSvc.Register(ctx, &domain.RegisterRequest{
		Name: "Other", Email: "ada@example.com", Password: "secret123", Role: domain.RoleClient,
	})
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestUserService_RegisterRejectsAdminRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.userSvc.Register(context.Background(), &domain.RegisterRequest{
		Name: "Mallory", Email: "m@example.com", Password: "secret123", Role: domain.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "Ben", "ben@example.com", domain.RoleClient)

	resp, err := env.userSvc.Login(ctx, &domain.LoginRequest{Email: "BEN@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, actor.ID, resp.User.ID)

	_, err = env.userSvc.Login(ctx, &domain.LoginRequest{Email: "ben@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.userSvc.Login(ctx, &domain.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_LoginSuspended(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "Ben", "ben@example.com", domain.RoleClient)
	admin := env.admin(t, "root@example.com", domain.AdminRoleSuper)

	suspended := domain.UserStatusSuspended
	_, err := env.adminSvc.UpdateUser(ctx, admin, actor.ID, &domain.AdminUpdateUserRequest{Status: &suspended})
	require.NoError(t, err)

	_, err = env.userSvc.Login(ctx, &domain.LoginRequest{Email: "ben@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrAccountSuspended)
}

func TestUserService_RefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.userSvc.Register(ctx, &domain.RegisterRequest{
		Name: "Cleo", Email: "cleo@example.com", Password: "secret123", Role: domain.RoleClient,
	})
	require.NoError(t, err)

	refreshed, err := env.userSvc.RefreshToken(ctx, &domain.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)

	_, err = env.userSvc.RefreshToken(ctx, &domain.RefreshTokenRequest{RefreshToken: resp.Token})
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, env.userSvc.Logout(ctx, resp.User.ID))
	_, err = env.userSvc.RefreshToken(ctx, &domain.RefreshTokenRequest{RefreshToken: refreshed.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_GetUserPublicView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.register(t, "Ada", "ada@example.com", domain.RoleClient)
	ben := env.register(t, "Ben", "ben@example.com", domain.RoleClient)
	admin := env.admin(t, "root@example.com", domain.AdminRoleSupport)

	self, err := env.userSvc.GetUser(ctx, ada, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", self.Email)

	other, err := env.userSvc.GetUser(ctx, ben, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Email)
	assert.Equal(t, "Ada", other.Name)

	byAdmin, err := env.userSvc.GetUser(ctx, admin, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byAdmin.Email)
}

func TestUserService_UpdateMePartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "Ada", "ada@example.com", domain.RoleClient)

	city := "Lagos"
	resp, err := env.userSvc.UpdateMe(ctx, actor.ID, &domain.UpdateUserRequest{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Lagos", resp.City)
	assert.Equal(t, "Ada", resp.Name)

	phone := "+2348000000000"
	resp, err = env.userSvc.UpdateMe(ctx, actor.ID, &domain.UpdateUserRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Lagos", resp.City)
	assert.Equal(t, phone, resp.Phone)
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "Ada", "ada@example.com", domain.RoleClient)

	err := env.userSvc.ChangePassword(ctx, actor.ID, &domain.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, env.userSvc.ChangePassword(ctx, actor.ID, &domain.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"}))

	_, err = env.userSvc.Login(ctx, &domain.LoginRequest{Email: "ada@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestUserService_UploadAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), PublicPath: "/uploads"})
	require.NoError(t, err)
	svc := NewUserService(env.users, env.tokens, store, env.cleanerSvc, UserServiceConfig{BcryptCost: bcrypt.MinCost, MaxAvatarBytes: 1024})
	actor := env.register(t, "Ada", "ada@example.com", domain.RoleClient)

	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	first, err := svc.UploadAvatar(ctx, actor.ID, bytes.NewReader(data), int64(len(data)), "image/png")
	require.NoError(t, err)
	assert.Contains(t, first.AvatarURL, "/uploads/avatars/"+actor.ID+"/")

	user, err := env.users.GetByID(ctx, actor.ID)
	require.NoError(t, err)
	firstKey := user.AvatarKey

	_, err = svc.UploadAvatar(ctx, actor.ID, bytes.NewReader(data), int64(len(data)), "image/png")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(store.BasePath(), filepath.FromSlash(firstKey)))
	assert.True(t, os.IsNotExist(err), "previous avatar should be removed")

	_, err = svc.UploadAvatar(ctx, actor.ID, bytes.NewReader(data), int64(len(data)), "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = svc.UploadAvatar(ctx, actor.ID, bytes.NewReader(make([]byte, 2048)), 2048, "image/png")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUserService_UploadAvatarChecksContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), PublicPath: "/uploads"})
	require.NoError(t, err)
	svc := NewUserService(env.users, env.tokens, store, env.cleanerSvc, UserServiceConfig{BcryptCost: bcrypt.MinCost, MaxAvatarBytes: 1024})
	actor := env.register(t, "Ada", "ada@example.com", domain.RoleClient)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	_, err = svc.UploadAvatar(ctx, actor.ID, bytes.NewReader(pdf), int64(len(pdf)), "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	user, err := env.users.GetByID(ctx, actor.ID)
	require.NoError(t, err)
	assert.Empty(t, user.AvatarKey, "rejected upload must not be stored")

	// JPEG bytes declared as PNG are stored as what they are.
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...)
	resp, err := svc.UploadAvatar(ctx, actor.ID, bytes.NewReader(jpeg), int64(len(jpeg)), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.AvatarURL, ".jpg"), resp.AvatarURL)

	user, err = env.users.GetByID(ctx, actor.ID)
	require.NoError(t, err)
	stored, err := os.ReadFile(filepath.Join(store.BasePath(), filepath.FromSlash(user.AvatarKey)))
	require.NoError(t, err)
	assert.Equal(t, jpeg, stored, "sniffed bytes are written back in full")
}

func TestUserService_DeleteMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.register(t, "Ada", "ada@example.com", domain.RoleClient)

	require.NoError(t, env.userSvc.DeleteMe(ctx, actor.ID))

	_, err := env.userSvc.GetMe(ctx, actor.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	env.register(t, "Ada Again", "ada@example.com", domain.RoleClient)
}
