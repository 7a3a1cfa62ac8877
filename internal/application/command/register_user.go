package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/user"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Зачисление стажёра: сначала аккаунт в GitLab, затем локальная запись.
// Порядок важен: без аккаунта в GitLab стажёр бесполезен (некуда форкать),
// а осиротевший аккаунт GitLab безопасен и переживёт повторную попытку.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the data needed to enroll a user.
type RegisterUserCommand struct {
	// Username is the unique login, also the GitLab namespace.
	Username string

	// Name is the display name.
	Name string

	// Email is the unique email.
	Email string

	// Password is the plaintext password, hashed before storage.
	Password string

	// Role is the user role ("ADMIN"/"USER", case-insensitive).
	Role string

	// InternshipID is the internship the user is enrolled into.
	// Empty for administrators.
	InternshipID string
}

// Validate validates the command.
func (c RegisterUserCommand) Validate() error {
	if c.Username == "" {
		return shared.NewDomainError("user", "Register", shared.ErrEmptyValue, "username cannot be empty")
	}
	if c.Email == "" {
		return shared.NewDomainError("user", "Register", shared.ErrEmptyValue, "email cannot be empty")
	}
	if len(c.Password) < 8 {
		return shared.NewDomainError("user", "Register", shared.ErrInvalidInput, "password must be at least 8 characters")
	}
	return nil
}

// RegisterUserResult contains the result of user registration.
type RegisterUserResult struct {
	// UserID is the internal ID of the created user.
	UserID string

	// GitlabAccountID is the account ID in GitLab; zero for admins
	// registered without remote provisioning.
	GitlabAccountID int64

	// CreatedAt is when the user was created.
	CreatedAt time.Time
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	userRepo    user.Repository
	provisioner ProvisioningClient
	hasher      PasswordHasher
}

// NewRegisterUserHandler creates a new RegisterUserHandler.
func NewRegisterUserHandler(
	userRepo user.Repository,
	provisioner ProvisioningClient,
	hasher PasswordHasher,
) *RegisterUserHandler {
	return &RegisterUserHandler{
		userRepo:    userRepo,
		provisioner: provisioner,
		hasher:      hasher,
	}
}

// Handle executes the register user command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	role, err := user.ParseRole(cmd.Role)
	if err != nil {
		return nil, err
	}
	if role == user.RoleUser && cmd.InternshipID == "" {
		return nil, shared.NewDomainError("user", "Register", shared.ErrEmptyValue, "intern requires an internship")
	}

	// Ранняя проверка дубликатов до похода в GitLab. Уникальные индексы
	// всё равно страхуют от гонки.
	if _, err := h.userRepo.GetByUsername(ctx, cmd.Username); err == nil {
		return nil, shared.ErrUserExists
	} else if !errors.Is(err, shared.ErrUserNotFound) {
		return nil, fmt.Errorf("register_user: failed to check username: %w", err)
	}

	var accountID int64
	if role == user.RoleUser {
		account, err := h.provisioner.CreateAccount(ctx, cmd.Username, cmd.Name, cmd.Email, cmd.Password)
		if err != nil {
			// Аккаунт от прошлой неудавшейся попытки - не ошибка.
			if !errors.Is(err, shared.ErrAlreadyExists) {
				return nil, fmt.Errorf("register_user: failed to provision account: %w", err)
			}
		} else {
			accountID = account.ID
		}
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("register_user: failed to hash password: %w", err)
	}

	now := timeutil.Now()
	u, err := user.NewUser(uuid.NewString(), cmd.Username, cmd.Name, cmd.Email, hash, role, cmd.InternshipID, now)
	if err != nil {
		return nil, err
	}

	if err := h.userRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("register_user: failed to save user: %w", err)
	}

	return &RegisterUserResult{
		UserID:          u.ID,
		GitlabAccountID: accountID,
		CreatedAt:       now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENSURE ADMIN COMMAND
// Бутстрап административного аккаунта при старте сервиса. Идемпотентен:
// существующий администратор не трогается.
// ══════════════════════════════════════════════════════════════════════════════

// EnsureAdminCommand creates the bootstrap administrator if missing.
type EnsureAdminCommand struct {
	// Username is the admin login.
	Username string

	// Email is the admin email.
	Email string

	// Password is the admin plaintext password.
	Password string
}

// EnsureAdminHandler handles the EnsureAdminCommand.
type EnsureAdminHandler struct {
	userRepo user.Repository
	hasher   PasswordHasher
}

// NewEnsureAdminHandler creates a new EnsureAdminHandler.
func NewEnsureAdminHandler(userRepo user.Repository, hasher PasswordHasher) *EnsureAdminHandler {
	return &EnsureAdminHandler{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Handle creates the administrator unless one already exists.
func (h *EnsureAdminHandler) Handle(ctx context.Context, cmd EnsureAdminCommand) error {
	if cmd.Username == "" || cmd.Password == "" {
		return shared.NewDomainError("user", "EnsureAdmin", shared.ErrEmptyValue, "admin credentials cannot be empty")
	}

	_, err := h.userRepo.GetByUsername(ctx, cmd.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrUserNotFound) {
		return fmt.Errorf("ensure_admin: failed to check admin: %w", err)
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return fmt.Errorf("ensure_admin: failed to hash password: %w", err)
	}

	now := timeutil.Now()
	admin, err := user.NewUser(uuid.NewString(), cmd.Username, cmd.Username, cmd.Email, hash, user.RoleAdmin, "", now)
	if err != nil {
		return err
	}

	if err := h.userRepo.Create(ctx, admin); err != nil {
		// Параллельный старт второго экземпляра сервиса.
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("ensure_admin: failed to save admin: %w", err)
	}

	return nil
}
