package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
)

var (
	ErrAuthFailed = errors.New("authentication failed")
	ErrDisabled   = errors.New("account disabled")
)

// 既知ロール。権限の中身は rbac.Matrix が持つ
var KnownRoles = []string{"super_admin", "admin", "hr_manager", "hr_staff", "recruiter", "employee"}

func IsKnownRole(role string) bool {
	for _, r := range KnownRoles {
		if r == role {
			return true
		}
	}
	return false
}

type AuthService interface {
	Login(ctx context.Context, id, password string) (string, *Account, error)
	Register(ctx context.Context, id, password, role, displayName string) error
	List(ctx context.Context) ([]Account, error)
	Delete(ctx context.Context, id string) error
	ChangeRole(ctx context.Context, id, role string) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
}

type Service struct {
	store  AccountStore
	secret []byte
	ttl    time.Duration
	clock  ids.Clock
}

func NewService(store AccountStore, secret []byte, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl, clock: ids.RealClock{}}
}

func (s *Service) Secret() []byte { return s.secret }

func (s *Service) Login(ctx context.Context, id, password string) (string, *Account, error) {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if acct == nil {
		return "", nil, ErrAuthFailed
	}
	if acct.IsDisabled {
		return "", nil, ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthFailed
	}

	token, err := IssueToken(s.secret, acct.ID, acct.Role, s.clock.Now().Add(s.ttl))
	if err != nil {
		return "", nil, err
	}
	return token, acct, nil
}

// IssueToken: HS256 / sub, role, exp
func IssueToken(secret []byte, sub, role string, exp time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  exp.Unix(),
	})
	return token.SignedString(secret)
}

func (s *Service) Register(ctx context.Context, id, password, role, displayName string) error {
	if id == "" || password == "" {
		return apperr.Invalid("id and password are required")
	}
	if len(password) < 8 {
		return apperr.Invalid("password must be at least 8 characters")
	}
	if !IsKnownRole(role) {
		return apperr.Invalid("unknown role: " + role)
	}

	exists, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if exists != nil {
		return apperr.Conflict("account id already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if displayName == "" {
		displayName = id
	}
	return s.store.Create(ctx, &Account{
		ID:           id,
		PasswordHash: string(hash),
		Role:         role,
		DisplayName:  displayName,
	})
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("account not found")
	}
	return nil
}

func (s *Service) ChangeRole(ctx context.Context, id, role string) error {
	if !IsKnownRole(role) {
		return apperr.Invalid("unknown role: " + role)
	}
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if acct == nil {
		return apperr.NotFound("account not found")
	}
	_, err = s.store.UpdateRole(ctx, id, role)
	return err
}

func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) error {
	n, err := s.store.SetDisabled(ctx, id, disabled)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("account not found")
	}
	return nil
}
