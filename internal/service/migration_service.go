package service

import (
	"context"

	"github.com/shivakharbanda/journalclub/internal/repository"
	"github.com/shivakharbanda/journalclub/pkg/logger"
	"github.com/shivakharbanda/journalclub/pkg/metrics"
)

// MigrationService moves a guest identity's engagement onto a registered user
// account at login or registration. Calling it with a token that has no guest
// identity is a no-op, so retried logins cannot double-merge.
type MigrationService interface {
	Migrate(ctx context.Context, deviceToken string, userID uint64) error
}

type migrationService struct {
	migrationRepo repository.MigrationRepository
	metrics       *metrics.Metrics
	log           *logger.Logger
}

func NewMigrationService(migrationRepo repository.MigrationRepository, m *metrics.Metrics, log *logger.Logger) MigrationService {
	return &migrationService{
		migrationRepo: migrationRepo,
		metrics:       m,
		log:           log,
	}
}

func (s *migrationService) Migrate(ctx context.Context, deviceToken string, userID uint64) error {
	if deviceToken == "" {
		s.metrics.MigrationsTotal.WithLabelValues("noop").Inc()
		return nil
	}

	merged, err := s.migrationRepo.TransferGuestData(ctx, deviceToken, userID)
	if err != nil {
		s.metrics.MigrationsTotal.WithLabelValues("failed").Inc()
		s.log.WithUserID(userID).WithError(err).Error("Guest migration failed")
		return err
	}

	if !merged {
		s.metrics.MigrationsTotal.WithLabelValues("noop").Inc()
		return nil
	}

	s.metrics.MigrationsTotal.WithLabelValues("merged").Inc()
	s.log.WithUserID(userID).Info("Guest engagement migrated to user account")
	return nil
}
