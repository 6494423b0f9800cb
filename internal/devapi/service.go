package devapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/travelreviews/webclient/internal/api/middleware"
	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/core/ports"
)

// AccountService implements registration, login and account administration.
type AccountService struct {
	repo      ports.AccountRepository
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAccountService(repo ports.AccountRepository, jwtSecret string, tokenTTL time.Duration) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

func (s *AccountService) Register(ctx context.Context, reg domain.Registration) (string, *domain.Account, error) {
	if err := checkPassword(reg.Password); err != nil {
		return "", nil, err
	}
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	username := strings.TrimSpace(reg.Username)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return "", nil, fmt.Errorf("%w: User with this email already exists", domain.ErrUserExists)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, err
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return "", nil, fmt.Errorf("%w: User with this username already exists", domain.ErrUserExists)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return "", nil, err
	}
	return token, created, nil
}

// Login accepts an email or a username. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, creds domain.Credentials) (string, *domain.Account, error) {
	if creds.Password == "" || (creds.Email == "" && creds.Username == "") {
		return "", nil, domain.ErrInvalidCredentials
	}

	var (
		account *domain.Account
		err     error
	)
	if creds.Email != "" {
		account, err = s.repo.FindByEmail(ctx, strings.TrimSpace(creds.Email))
	} else {
		account, err = s.repo.FindByUsername(ctx, strings.TrimSpace(creds.Username))
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !account.IsActive {
		return "", nil, ErrAccountDisabled
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// Authorize loads the active account behind a token and checks that its role
// still matches the one the token was issued with.
func (s *AccountService) Authorize(ctx context.Context, id string, tokenRole domain.Role) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, domain.ErrUserNotFound
	}
	if account.Role != tokenRole {
		return nil, ErrRoleChanged
	}
	return account, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.FirstName != nil {
		account.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		account.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Avatar != nil {
		account.Avatar = *update.Avatar
	}
	account.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, account)
}

func (s *AccountService) ListUsers(ctx context.Context, page, limit int) ([]*domain.Account, int, error) {
	page, limit = normalizePage(page, limit)
	return s.repo.List(ctx, (page-1)*limit, limit)
}

func (s *AccountService) SetRole(ctx context.Context, id string, role domain.Role) (*domain.Account, error) {
	if !domain.ValidRole(string(role)) {
		return nil, ErrInvalidRole
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account.Role = role
	account.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, account)
}

func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CountUsers returns the number of stored accounts.
func (s *AccountService) CountUsers(ctx context.Context) (int, error) {
	_, total, err := s.repo.List(ctx, 0, 1)
	return total, err
}

// EnsureAdmin creates the bootstrap admin unless an account with that email
// already exists.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (*domain.Account, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return s.repo.Create(ctx, &domain.Account{
		Username:     strings.SplitN(email, "@", 2)[0],
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		FirstName:    "Site",
		LastName:     "Admin",
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *AccountService) generateToken(account *domain.Account) (string, error) {
	return middleware.SignToken(s.jwtSecret, account.ID, account.Role, s.now(), s.tokenTTL)
}

// checkPassword enforces length and character-class rules.
func checkPassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: Password must be at least 8 characters long", ErrWeakPassword)
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return fmt.Errorf("%w: Password must contain at least one uppercase letter", ErrWeakPassword)
	case !lower:
		return fmt.Errorf("%w: Password must contain at least one lowercase letter", ErrWeakPassword)
	case !digit:
		return fmt.Errorf("%w: Password must contain at least one number", ErrWeakPassword)
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
