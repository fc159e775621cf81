package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/blackicons2020/skillskonnect-sub001/internal/audit"
	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/jwt"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/storage"
)

// UserServiceConfig tunes account handling.
type UserServiceConfig struct {
	BcryptCost     int
	MaxAvatarBytes int64
	AvatarURLTTL   time.Duration
}

// avatarTypes maps accepted image content types to file extensions.
var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo     repository.UserRepository
	tokens   TokenManager
	store    storage.Storage
	cleaners CleanerService
	avatars  avatarResolver
	cfg      UserServiceConfig
}

// NewUserService creates a new user service. cleaners may be nil.
func NewUserService(repo repository.UserRepository, tokens TokenManager, store storage.Storage, cleaners CleanerService, cfg UserServiceConfig) UserService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.MaxAvatarBytes == 0 {
		cfg.MaxAvatarBytes = 5 << 20
	}
	return &userServiceImpl{
		repo:     repo,
		tokens:   tokens,
		store:    store,
		cleaners: cleaners,
		avatars:  avatarResolver{store: store, expiry: cfg.AvatarURLTTL},
		cfg:      cfg,
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword hashes a password with bcrypt at cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Register registers a new client or cleaner.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	if req.Role != domain.RoleClient && req.Role != domain.RoleCleaner {
		return nil, ErrInvalidRole
	}

	hashedPassword, err := HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: hashedPassword,
		Role:         req.Role,
		Phone:        strings.TrimSpace(req.Phone),
		City:         strings.TrimSpace(req.City),
		Status:       domain.UserStatusActive,
	}
	if req.Role == domain.RoleCleaner {
		user.Profile = &domain.CleanerProfile{Services: []string{}, Availability: []string{}}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrEmailExists) {
			l.Error().Err(err).Msg("failed to create user")
		}
		return nil, err
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after register")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")
	return resp, nil
}

// Login authenticates a user.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)
	email := NormalizeEmail(req.Email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogTarget(ctx, audit.ActionLoginFailed, "", "", email, "login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogTarget(ctx, audit.ActionLoginFailed, user.ID, user.ID, email, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	if user.Status == domain.UserStatusSuspended {
		audit.LogTarget(ctx, audit.ActionLoginFailed, user.ID, user.ID, email, "login failed: account suspended")
		return nil, ErrAccountSuspended
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens after login")
		return nil, err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")
	return resp, nil
}

// RefreshToken exchanges a refresh token for a new pair carrying the user's current role.
func (s *userServiceImpl) RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	claims, err := s.tokens.ValidateToken(ctx, req.RefreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, jwt.ErrInvalidToken) || errors.Is(err, jwt.ErrExpiredToken) || errors.Is(err, jwt.ErrRevokedToken) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.Status == domain.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to refresh tokens")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRefreshToken, user.ID, "token refreshed")
	return resp, nil
}

// Logout revokes every outstanding token of the user.
func (s *userServiceImpl) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeUserTokens(ctx, userID); err != nil {
		return err
	}
	audit.Log(ctx, audit.ActionLogout, userID, "user logged out")
	return nil
}

func (s *userServiceImpl) GetMe(ctx context.Context, userID string) (*domain.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := s.avatars.response(ctx, user)
	return &resp, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, viewer Actor, userID string) (*domain.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := s.avatars.response(ctx, user)
	if viewer.ID != userID && !viewer.IsAdmin {
		resp = resp.PublicView()
	}
	return &resp, nil
}

// UpdateMe applies a partial update; absent fields keep their values.
func (s *userServiceImpl) UpdateMe(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.City != nil {
		user.City = strings.TrimSpace(*req.City)
	}
	if req.Address != nil {
		user.Address = strings.TrimSpace(*req.Address)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.repo.Update(ctx, user); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to update user")
		return nil, err
	}
	s.invalidateCleaner(ctx, user)

	audit.Log(ctx, audit.ActionUpdateProfile, userID, "profile updated")
	resp := s.avatars.response(ctx, user)
	return &resp, nil
}

func (s *userServiceImpl) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := HashPassword(req.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.repo.Update(ctx, user); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to update password")
		return err
	}

	audit.Log(ctx, audit.ActionChangePassword, userID, "password changed")
	return nil
}

// UploadAvatar stores a new profile photo and removes the previous one.
func (s *userServiceImpl) UploadAvatar(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (*domain.AvatarResponse, error) {
	l := log.Ctx(ctx)

	if _, ok := avatarTypes[strings.ToLower(strings.TrimSpace(contentType))]; !ok {
		return nil, ErrUnsupportedMedia
	}
	if size > s.cfg.MaxAvatarBytes {
		return nil, ErrFileTooLarge
	}
	if s.store == nil {
		return nil, errors.New("avatar storage is not configured")
	}

	// The declared type comes from the client; the stored type comes from the bytes.
	contentType, body, err := sniffImage(r)
	if err != nil {
		return nil, err
	}
	ext := avatarTypes[contentType]

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)
	if err := s.store.Put(ctx, key, io.LimitReader(body, s.cfg.MaxAvatarBytes), size, contentType); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to store avatar")
		return nil, err
	}

	oldKey := user.AvatarKey
	user.AvatarKey = key
	if err := s.repo.Update(ctx, user); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to save avatar key")
		_ = s.store.Remove(ctx, key)
		return nil, err
	}

	if oldKey != "" {
		if err := s.store.Remove(ctx, oldKey); err != nil {
			l.Warn().Err(err).Str("key", oldKey).Msg("failed to delete previous avatar")
		}
	}
	s.invalidateCleaner(ctx, user)

	audit.Log(ctx, audit.ActionUploadAvatar, userID, "avatar uploaded")
	return &domain.AvatarResponse{AvatarURL: s.avatars.url(ctx, key)}, nil
}

// sniffImage detects the image type from the first 512 bytes of r and returns
// a reader that still yields the whole upload.
func sniffImage(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if _, ok := avatarTypes[contentType]; !ok {
		return "", nil, ErrUnsupportedMedia
	}
	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}

// DeleteMe soft-deletes the account and revokes its sessions.
func (s *userServiceImpl) DeleteMe(ctx context.Context, userID string) error {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to delete user")
		return err
	}
	if err := s.tokens.RevokeUserTokens(ctx, userID); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to revoke tokens of deleted user")
	}
	if user.AvatarKey != "" && s.store != nil {
		if err := s.store.Remove(ctx, user.AvatarKey); err != nil {
			l.Warn().Err(err).Str("key", user.AvatarKey).Msg("failed to delete avatar of deleted user")
		}
	}
	s.invalidateCleaner(ctx, user)

	audit.Log(ctx, audit.ActionDeleteAccount, userID, "account deleted")
	return nil
}

func (s *userServiceImpl) issue(ctx context.Context, user *domain.User) (*domain.AuthResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(ctx, identityOf(user))
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{
		User:         s.avatars.response(ctx, user),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExpiresAt,
	}, nil
}

func (s *userServiceImpl) invalidateCleaner(ctx context.Context, user *domain.User) {
	if s.cleaners != nil && user.Role == domain.RoleCleaner {
		s.cleaners.Invalidate(ctx, user.ID)
	}
}

func identityOf(user *domain.User) jwt.Identity {
	return jwt.Identity{
		ID:        user.ID,
		Role:      string(user.Role),
		IsAdmin:   user.IsAdmin,
		AdminRole: string(user.AdminRole),
	}
}
