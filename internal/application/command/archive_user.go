package command

import (
	"context"
	"fmt"

	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/user"
	"github.com/internship-hub/internship-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARCHIVE USER COMMAND
// Отчисление стажёра: сначала блокировка аккаунта в GitLab, затем локальная
// архивация (роль + решения) одной транзакцией. Порядок remote-first:
// заблокированный аккаунт при упавшей локальной части безопасен, повтор
// команды доведёт состояние до конца. Обратный порядок оставил бы
// отчисленного стажёра с живым доступом к GitLab.
// ══════════════════════════════════════════════════════════════════════════════

// UserArchiver performs the local part of archival атомарно: смена роли
// и архивация всех решений стажёра в одной транзакции.
type UserArchiver interface {
	ArchiveWithSolutions(ctx context.Context, userID string) error
}

// ArchiveUserCommand expels a user from the program.
type ArchiveUserCommand struct {
	// UserID is the user to archive.
	UserID string
}

// Validate validates the command.
func (c ArchiveUserCommand) Validate() error {
	if c.UserID == "" {
		return shared.NewDomainError("user", "Archive", shared.ErrEmptyValue, "user id cannot be empty")
	}
	return nil
}

// ArchiveUserHandler handles the ArchiveUserCommand.
type ArchiveUserHandler struct {
	userRepo    user.Repository
	archiver    UserArchiver
	provisioner ProvisioningClient
	log         *logger.Logger
}

// NewArchiveUserHandler creates a new ArchiveUserHandler.
func NewArchiveUserHandler(
	userRepo user.Repository,
	archiver UserArchiver,
	provisioner ProvisioningClient,
	log *logger.Logger,
) *ArchiveUserHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ArchiveUserHandler{
		userRepo:    userRepo,
		archiver:    archiver,
		provisioner: provisioner,
		log:         log.With(logger.Component("archive_user")),
	}
}

// Handle executes the archive user command.
func (h *ArchiveUserHandler) Handle(ctx context.Context, cmd ArchiveUserCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	u, err := h.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	// Повторная архивация - no-op, чтобы команду можно было безопасно
	// повторять после частичного отказа.
	if u.Role == user.RoleArchived {
		return nil
	}

	if err := h.provisioner.BlockAccount(ctx, u.Username); err != nil {
		return fmt.Errorf("archive_user: failed to block account: %w", err)
	}

	if err := h.archiver.ArchiveWithSolutions(ctx, u.ID); err != nil {
		return fmt.Errorf("archive_user: failed to archive locally: %w", err)
	}

	h.log.Info("user archived", logger.Username(u.Username))
	return nil
}
