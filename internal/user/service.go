package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/shorty/pkg/logger"
	"github.com/dmitrymomot/shorty/pkg/password"
	"github.com/dmitrymomot/shorty/pkg/validator"
)

// MinPasswordEntropy is the weakest password, in bits, an account may be given.
const MinPasswordEntropy = 60.0

// Default account created on an empty database.
const (
	DefaultAdminName     = "admin"
	DefaultAdminPassword = "banana"
)

// Service holds the account rules on top of Repository.
type Service struct {
	repo   *Repository
	logger *slog.Logger
	params password.Params
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPasswordParams overrides the argon2id cost used for new hashes.
func WithPasswordParams(p password.Params) ServiceOption {
	return func(s *Service) {
		s.params = p
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a Service backed by repo.
func NewService(repo *Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, params: password.DefaultParams, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) hash(plain string) (string, error) {
	h, err := password.HashWith(plain, s.params)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

// Login checks the credentials and issues a login token. Any mismatch,
// including an unknown username, is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, plain string) (string, error) {
	creds, err := s.repo.PasswordByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	state, err := password.Verify(creds.Hash, plain)
	if err != nil {
		s.logger.WarnContext(ctx, "stored password hash unreadable", slog.Int64("user_id", creds.ID), slog.Any("error", err))
		return "", ErrInvalidCredentials
	}
	if !state.IsValid() {
		return "", ErrInvalidCredentials
	}

	if state == password.StateValidRehashed {
		if h, err := s.hash(plain); err == nil {
			if err := s.repo.UpdatePassword(ctx, creds.ID, h); err != nil {
				s.logger.WarnContext(ctx, "password rehash failed", slog.Int64("user_id", creds.ID), slog.Any("error", err))
			}
		}
	}

	token := uuid.NewString()
	if err := s.repo.AddToken(ctx, token, creds.ID); err != nil {
		return "", err
	}
	return token, nil
}

// Logout revokes a single login token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteToken(ctx, token)
}

// SignOut revokes every login of the account.
func (s *Service) SignOut(ctx context.Context, userID int64) error {
	_, err := s.repo.DeleteTokensByUser(ctx, userID)
	return err
}

// List returns every account ordered by id.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns one account or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create adds an account. Rule violations come back as
// validator.ValidationErrors.
func (s *Service) Create(ctx context.Context, form NewUserForm) (int64, error) {
	var ve validator.ValidationErrors
	checkPassword(&ve, form.Password)
	if len(ve) > 0 {
		return 0, ve
	}

	hash, err := s.hash(form.Password)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.repo.InTx(ctx, func(ctx context.Context, repo *Repository) error {
		if err := checkUsername(ctx, repo, &ve, form.Username, ""); err != nil {
			return err
		}
		if len(ve) > 0 {
			return ve
		}
		newID, err := repo.Create(ctx, form.Username, hash, ParseRole(form.Role))
		id = newID
		return err
	})
	return id, err
}

// UpdateProfile renames an account and changes its role. Keeping the current
// username skips the uniqueness check.
func (s *Service) UpdateProfile(ctx context.Context, id int64, form ProfileForm) error {
	return s.repo.InTx(ctx, func(ctx context.Context, repo *Repository) error {
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		var ve validator.ValidationErrors
		if err := checkUsername(ctx, repo, &ve, form.Username, current.Username); err != nil {
			return err
		}
		if len(ve) > 0 {
			return ve
		}
		return repo.UpdateProfile(ctx, id, form.Username, ParseRole(form.Role))
	})
}

// UpdatePassword replaces the password of an account.
func (s *Service) UpdatePassword(ctx context.Context, id int64, form PasswordForm) error {
	var ve validator.ValidationErrors
	checkPassword(&ve, form.Password)
	if len(ve) > 0 {
		return ve
	}
	hash, err := s.hash(form.Password)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// EnsureAdmin creates the default root account when there are no accounts.
// It reports whether the account was created.
func (s *Service) EnsureAdmin(ctx context.Context) (bool, error) {
	if n, err := s.repo.Count(ctx); err != nil || n > 0 {
		return false, err
	}
	hash, err := s.hash(DefaultAdminPassword)
	if err != nil {
		return false, err
	}

	created := false
	err = s.repo.InTx(ctx, func(ctx context.Context, repo *Repository) error {
		n, err := repo.Count(ctx)
		if err != nil || n > 0 {
			return err
		}
		if _, err := repo.Create(ctx, DefaultAdminName, hash, RoleRoot); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func checkUsername(ctx context.Context, repo *Repository, ve *validator.ValidationErrors, username, current string) error {
	if username == current {
		return nil
	}
	if username == VisitorName {
		ve.Add("username", "validation.username_reserved", "Username is reserved", nil)
		return nil
	}
	taken, err := repo.UsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		ve.Add("username", "validation.username_taken", "Username is already taken", nil)
	}
	return nil
}

func checkPassword(ve *validator.ValidationErrors, plain string) {
	if password.Entropy(plain) < MinPasswordEntropy {
		ve.Add("password", "validation.password_entropy",
			fmt.Sprintf("Password entropy score must be over %v", MinPasswordEntropy),
			map[string]any{"min": MinPasswordEntropy})
	}
}
