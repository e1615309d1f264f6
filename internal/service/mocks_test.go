package service

import (
	"context"
	"errors"
	"time"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/pkg/logger"
	"github.com/shivakharbanda/journalclub/pkg/metrics"
)

// Shared across tests; prometheus collectors register once per process.
var testMetrics = metrics.NewMetrics("servicetest")

var testLogger = logger.NewLogger("servicetest")

var errNotImplemented = errors.New("not implemented")

// Mock repositories

type mockGuestRepository struct {
	getOrCreateFunc func(ctx context.Context, deviceToken string) (*models.GuestIdentity, error)
	findFunc        func(ctx context.Context, deviceToken string) (*models.GuestIdentity, error)
}

func (m *mockGuestRepository) GetOrCreateByDeviceToken(ctx context.Context, deviceToken string) (*models.GuestIdentity, error) {
	if m.getOrCreateFunc != nil {
		return m.getOrCreateFunc(ctx, deviceToken)
	}
	return nil, errNotImplemented
}

func (m *mockGuestRepository) FindByDeviceToken(ctx context.Context, deviceToken string) (*models.GuestIdentity, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, deviceToken)
	}
	return nil, errNotImplemented
}

type mockEpisodeRepository struct {
	createFunc     func(ctx context.Context, episode *models.Episode) (uint64, error)
	updateFunc     func(ctx context.Context, episode *models.Episode) error
	deleteFunc     func(ctx context.Context, id uint64) error
	findByIDFunc   func(ctx context.Context, id uint64) (*models.Episode, error)
	findBySlugFunc func(ctx context.Context, slug string) (*models.Episode, error)
	slugExistsFunc func(ctx context.Context, slug string) (bool, error)
	listFunc       func(ctx context.Context, titleQuery string, limit, offset int) ([]*models.Episode, error)
	recomputeFunc  func(ctx context.Context) (int64, error)
}

func (m *mockEpisodeRepository) Create(ctx context.Context, episode *models.Episode) (uint64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, episode)
	}
	return 0, errNotImplemented
}

func (m *mockEpisodeRepository) Update(ctx context.Context, episode *models.Episode) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, episode)
	}
	return errNotImplemented
}

func (m *mockEpisodeRepository) Delete(ctx context.Context, id uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errNotImplemented
}

func (m *mockEpisodeRepository) FindByID(ctx context.Context, id uint64) (*models.Episode, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockEpisodeRepository) FindBySlug(ctx context.Context, slug string) (*models.Episode, error) {
	if m.findBySlugFunc != nil {
		return m.findBySlugFunc(ctx, slug)
	}
	return nil, errNotImplemented
}

func (m *mockEpisodeRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	if m.slugExistsFunc != nil {
		return m.slugExistsFunc(ctx, slug)
	}
	return false, errNotImplemented
}

func (m *mockEpisodeRepository) List(ctx context.Context, titleQuery string, limit, offset int) ([]*models.Episode, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, titleQuery, limit, offset)
	}
	return nil, errNotImplemented
}

func (m *mockEpisodeRepository) RecomputeReactionCounts(ctx context.Context) (int64, error) {
	if m.recomputeFunc != nil {
		return m.recomputeFunc(ctx)
	}
	return 0, errNotImplemented
}

type mockTopicRepository struct {
	createFunc           func(ctx context.Context, topic *models.Topic) (uint64, error)
	updateFunc           func(ctx context.Context, topic *models.Topic) error
	deleteFunc           func(ctx context.Context, id uint64) error
	findByIDFunc         func(ctx context.Context, id uint64) (*models.Topic, error)
	findBySlugFunc       func(ctx context.Context, slug string) (*models.Topic, error)
	listFunc             func(ctx context.Context) ([]*models.Topic, error)
	listByEpisodeFunc    func(ctx context.Context, episodeID uint64) ([]*models.Topic, error)
	setEpisodeTopicsFunc func(ctx context.Context, episodeID uint64, topicIDs []uint64) error
}

func (m *mockTopicRepository) Create(ctx context.Context, topic *models.Topic) (uint64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, topic)
	}
	return 0, errNotImplemented
}

func (m *mockTopicRepository) Update(ctx context.Context, topic *models.Topic) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, topic)
	}
	return errNotImplemented
}

func (m *mockTopicRepository) Delete(ctx context.Context, id uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errNotImplemented
}

func (m *mockTopicRepository) FindByID(ctx context.Context, id uint64) (*models.Topic, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockTopicRepository) FindBySlug(ctx context.Context, slug string) (*models.Topic, error) {
	if m.findBySlugFunc != nil {
		return m.findBySlugFunc(ctx, slug)
	}
	return nil, errNotImplemented
}

func (m *mockTopicRepository) List(ctx context.Context) ([]*models.Topic, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockTopicRepository) ListByEpisode(ctx context.Context, episodeID uint64) ([]*models.Topic, error) {
	if m.listByEpisodeFunc != nil {
		return m.listByEpisodeFunc(ctx, episodeID)
	}
	return nil, errNotImplemented
}

func (m *mockTopicRepository) SetEpisodeTopics(ctx context.Context, episodeID uint64, topicIDs []uint64) error {
	if m.setEpisodeTopicsFunc != nil {
		return m.setEpisodeTopicsFunc(ctx, episodeID, topicIDs)
	}
	return errNotImplemented
}

type mockTagRepository struct {
	getOrCreateFunc      func(ctx context.Context, name, slug string) (*models.Tag, error)
	findBySlugFunc       func(ctx context.Context, slug string) (*models.Tag, error)
	updateFunc           func(ctx context.Context, tag *models.Tag) error
	deleteFunc           func(ctx context.Context, id uint64) error
	listByEpisodeFunc    func(ctx context.Context, episodeID uint64) ([]*models.Tag, error)
	setEpisodeTagsFunc   func(ctx context.Context, episodeID uint64, tagIDs []uint64) error
	clearEpisodeTagsFunc func(ctx context.Context, episodeID uint64) error
}

func (m *mockTagRepository) GetOrCreateByName(ctx context.Context, name, slug string) (*models.Tag, error) {
	if m.getOrCreateFunc != nil {
		return m.getOrCreateFunc(ctx, name, slug)
	}
	return nil, errNotImplemented
}

func (m *mockTagRepository) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	if m.findBySlugFunc != nil {
		return m.findBySlugFunc(ctx, slug)
	}
	return nil, errNotImplemented
}

func (m *mockTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, tag)
	}
	return errNotImplemented
}

func (m *mockTagRepository) Delete(ctx context.Context, id uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errNotImplemented
}

func (m *mockTagRepository) ListByEpisode(ctx context.Context, episodeID uint64) ([]*models.Tag, error) {
	if m.listByEpisodeFunc != nil {
		return m.listByEpisodeFunc(ctx, episodeID)
	}
	return nil, errNotImplemented
}

func (m *mockTagRepository) SetEpisodeTags(ctx context.Context, episodeID uint64, tagIDs []uint64) error {
	if m.setEpisodeTagsFunc != nil {
		return m.setEpisodeTagsFunc(ctx, episodeID, tagIDs)
	}
	return errNotImplemented
}

func (m *mockTagRepository) ClearEpisodeTags(ctx context.Context, episodeID uint64) error {
	if m.clearEpisodeTagsFunc != nil {
		return m.clearEpisodeTagsFunc(ctx, episodeID)
	}
	return errNotImplemented
}

type mockProgressRepository struct {
	upsertFunc func(ctx context.Context, actor models.Actor, episodeID uint64, positionSeconds, durationSeconds int64, completed bool) error
	getFunc    func(ctx context.Context, actor models.Actor, episodeID uint64) (*models.ListeningProgress, error)
	listFunc   func(ctx context.Context, actor models.Actor, limit int) ([]*models.ContinueListeningItem, error)
}

func (m *mockProgressRepository) Upsert(ctx context.Context, actor models.Actor, episodeID uint64, positionSeconds, durationSeconds int64, completed bool) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, actor, episodeID, positionSeconds, durationSeconds, completed)
	}
	return errNotImplemented
}

func (m *mockProgressRepository) Get(ctx context.Context, actor models.Actor, episodeID uint64) (*models.ListeningProgress, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, actor, episodeID)
	}
	return nil, errNotImplemented
}

func (m *mockProgressRepository) ListInProgress(ctx context.Context, actor models.Actor, limit int) ([]*models.ContinueListeningItem, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, actor, limit)
	}
	return nil, errNotImplemented
}

type mockReactionRepository struct {
	setFunc   func(ctx context.Context, actor models.Actor, episodeID uint64, action models.ReactionAction) error
	clearFunc func(ctx context.Context, actor models.Actor, episodeID uint64) error
	getFunc   func(ctx context.Context, actor models.Actor, episodeID uint64) (*models.Reaction, error)
}

func (m *mockReactionRepository) Set(ctx context.Context, actor models.Actor, episodeID uint64, action models.ReactionAction) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, actor, episodeID, action)
	}
	return errNotImplemented
}

func (m *mockReactionRepository) Clear(ctx context.Context, actor models.Actor, episodeID uint64) error {
	if m.clearFunc != nil {
		return m.clearFunc(ctx, actor, episodeID)
	}
	return errNotImplemented
}

func (m *mockReactionRepository) Get(ctx context.Context, actor models.Actor, episodeID uint64) (*models.Reaction, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, actor, episodeID)
	}
	return nil, errNotImplemented
}

type mockSaveRepository struct {
	toggleFunc  func(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error)
	isSavedFunc func(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error)
	listFunc    func(ctx context.Context, actor models.Actor) ([]*models.SavedItem, error)
}

func (m *mockSaveRepository) Toggle(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error) {
	if m.toggleFunc != nil {
		return m.toggleFunc(ctx, actor, targetType, targetID)
	}
	return false, errNotImplemented
}

func (m *mockSaveRepository) IsSaved(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error) {
	if m.isSavedFunc != nil {
		return m.isSavedFunc(ctx, actor, targetType, targetID)
	}
	return false, errNotImplemented
}

func (m *mockSaveRepository) ListByActor(ctx context.Context, actor models.Actor) ([]*models.SavedItem, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, actor)
	}
	return nil, errNotImplemented
}

type mockCacheRepository struct {
	getFunc        func(ctx context.Context, slug string) (*models.EpisodeDetail, error)
	setFunc        func(ctx context.Context, slug string, detail *models.EpisodeDetail, ttl time.Duration) error
	invalidateFunc func(ctx context.Context, slug string) error
}

func (m *mockCacheRepository) GetEpisodeDetail(ctx context.Context, slug string) (*models.EpisodeDetail, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, slug)
	}
	return nil, nil
}

func (m *mockCacheRepository) SetEpisodeDetail(ctx context.Context, slug string, detail *models.EpisodeDetail, ttl time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, slug, detail, ttl)
	}
	return nil
}

func (m *mockCacheRepository) InvalidateEpisode(ctx context.Context, slug string) error {
	if m.invalidateFunc != nil {
		return m.invalidateFunc(ctx, slug)
	}
	return nil
}

type mockUserRepository struct {
	createFunc         func(ctx context.Context, user *models.User) (uint64, error)
	findByIDFunc       func(ctx context.Context, id uint64) (*models.User, error)
	findByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	findByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) (uint64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return 0, errNotImplemented
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, errNotImplemented
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, errNotImplemented
}

type mockTokenRepository struct {
	createFunc   func(ctx context.Context, userID uint64, name string, expiresAt time.Time) (string, error)
	validateFunc func(ctx context.Context, token string) (*models.User, error)
	deleteFunc   func(ctx context.Context, userID uint64) error
}

func (m *mockTokenRepository) Create(ctx context.Context, userID uint64, name string, expiresAt time.Time) (string, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, name, expiresAt)
	}
	return "", errNotImplemented
}

func (m *mockTokenRepository) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, token)
	}
	return nil, errNotImplemented
}

func (m *mockTokenRepository) DeleteUserTokens(ctx context.Context, userID uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID)
	}
	return errNotImplemented
}

type mockMigrationRepository struct {
	transferFunc func(ctx context.Context, deviceToken string, userID uint64) (bool, error)
}

func (m *mockMigrationRepository) TransferGuestData(ctx context.Context, deviceToken string, userID uint64) (bool, error) {
	if m.transferFunc != nil {
		return m.transferFunc(ctx, deviceToken, userID)
	}
	return false, errNotImplemented
}

type mockCommentRepository struct {
	createFunc        func(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	getByIDFunc       func(ctx context.Context, id uint64) (*models.Comment, error)
	listTopLevelFunc  func(ctx context.Context, targetType models.SavableType, targetID uint64, limit, offset int) ([]*models.Comment, error)
	countTopLevelFunc func(ctx context.Context, targetType models.SavableType, targetID uint64) (int64, error)
	listThreadFunc    func(ctx context.Context, rootID uint64) ([]*models.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, comment)
	}
	return nil, errNotImplemented
}

func (m *mockCommentRepository) GetByID(ctx context.Context, id uint64) (*models.Comment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockCommentRepository) ListTopLevel(ctx context.Context, targetType models.SavableType, targetID uint64, limit, offset int) ([]*models.Comment, error) {
	if m.listTopLevelFunc != nil {
		return m.listTopLevelFunc(ctx, targetType, targetID, limit, offset)
	}
	return nil, errNotImplemented
}

func (m *mockCommentRepository) CountTopLevel(ctx context.Context, targetType models.SavableType, targetID uint64) (int64, error) {
	if m.countTopLevelFunc != nil {
		return m.countTopLevelFunc(ctx, targetType, targetID)
	}
	return 0, errNotImplemented
}

func (m *mockCommentRepository) ListThread(ctx context.Context, rootID uint64) ([]*models.Comment, error) {
	if m.listThreadFunc != nil {
		return m.listThreadFunc(ctx, rootID)
	}
	return nil, errNotImplemented
}

type mockMigrationService struct {
	migrateFunc func(ctx context.Context, deviceToken string, userID uint64) error
}

func (m *mockMigrationService) Migrate(ctx context.Context, deviceToken string, userID uint64) error {
	if m.migrateFunc != nil {
		return m.migrateFunc(ctx, deviceToken, userID)
	}
	return nil
}
