package handler

import (
	"context"
	"errors"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/service"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
)

var testValidator = helpers.NewCustomValidator()

var errNotImplemented = errors.New("not implemented")

type mockActorService struct {
	resolveFunc         func(ctx context.Context, user *models.User, deviceToken string) (models.Actor, error)
	resolveExistingFunc func(ctx context.Context, user *models.User, deviceToken string) (models.Actor, error)
}

func (m *mockActorService) Resolve(ctx context.Context, user *models.User, deviceToken string) (models.Actor, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, user, deviceToken)
	}
	return models.Actor{}, service.ErrMissingActor
}

func (m *mockActorService) ResolveExisting(ctx context.Context, user *models.User, deviceToken string) (models.Actor, error) {
	if m.resolveExistingFunc != nil {
		return m.resolveExistingFunc(ctx, user, deviceToken)
	}
	return models.Actor{}, service.ErrMissingActor
}

type mockEngagementService struct {
	recordProgressFunc    func(ctx context.Context, actor models.Actor, episodeID uint64, positionSeconds, durationSeconds int64) error
	getProgressFunc       func(ctx context.Context, actor models.Actor, episodeID uint64) (*models.ListeningProgress, error)
	continueListeningFunc func(ctx context.Context, actor models.Actor, limit int) ([]*models.ContinueListeningItem, error)
	setReactionFunc       func(ctx context.Context, actor models.Actor, episodeID uint64, action models.ReactionAction) error
	clearReactionFunc     func(ctx context.Context, actor models.Actor, episodeID uint64) error
	toggleSaveFunc        func(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error)
	listSavedFunc         func(ctx context.Context, actor models.Actor) ([]*models.SavedItem, error)
}

func (m *mockEngagementService) RecordProgress(ctx context.Context, actor models.Actor, episodeID uint64, positionSeconds, durationSeconds int64) error {
	if m.recordProgressFunc != nil {
		return m.recordProgressFunc(ctx, actor, episodeID, positionSeconds, durationSeconds)
	}
	return errNotImplemented
}

func (m *mockEngagementService) GetProgress(ctx context.Context, actor models.Actor, episodeID uint64) (*models.ListeningProgress, error) {
	if m.getProgressFunc != nil {
		return m.getProgressFunc(ctx, actor, episodeID)
	}
	return nil, errNotImplemented
}

func (m *mockEngagementService) ContinueListening(ctx context.Context, actor models.Actor, limit int) ([]*models.ContinueListeningItem, error) {
	if m.continueListeningFunc != nil {
		return m.continueListeningFunc(ctx, actor, limit)
	}
	return nil, errNotImplemented
}

func (m *mockEngagementService) SetReaction(ctx context.Context, actor models.Actor, episodeID uint64, action models.ReactionAction) error {
	if m.setReactionFunc != nil {
		return m.setReactionFunc(ctx, actor, episodeID, action)
	}
	return errNotImplemented
}

func (m *mockEngagementService) ClearReaction(ctx context.Context, actor models.Actor, episodeID uint64) error {
	if m.clearReactionFunc != nil {
		return m.clearReactionFunc(ctx, actor, episodeID)
	}
	return errNotImplemented
}

func (m *mockEngagementService) ToggleSave(ctx context.Context, actor models.Actor, targetType models.SavableType, targetID uint64) (bool, error) {
	if m.toggleSaveFunc != nil {
		return m.toggleSaveFunc(ctx, actor, targetType, targetID)
	}
	return false, errNotImplemented
}

func (m *mockEngagementService) ListSaved(ctx context.Context, actor models.Actor) ([]*models.SavedItem, error) {
	if m.listSavedFunc != nil {
		return m.listSavedFunc(ctx, actor)
	}
	return nil, errNotImplemented
}

type mockEpisodeService struct {
	createFunc    func(ctx context.Context, input service.EpisodeInput) (*models.Episode, error)
	updateFunc    func(ctx context.Context, slug string, input service.EpisodeInput) (*models.Episode, error)
	deleteFunc    func(ctx context.Context, slug string) error
	listFunc      func(ctx context.Context, titleQuery string, limit, offset int) ([]*models.Episode, error)
	getDetailFunc func(ctx context.Context, slug string, actor models.Actor) (*models.EpisodeDetail, error)
}

func (m *mockEpisodeService) Create(ctx context.Context, input service.EpisodeInput) (*models.Episode, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, input)
	}
	return nil, errNotImplemented
}

func (m *mockEpisodeService) Update(ctx context.Context, slug string, input service.EpisodeInput) (*models.Episode, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, slug, input)
	}
	return nil, errNotImplemented
}

func (m *mockEpisodeService) Delete(ctx context.Context, slug string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, slug)
	}
	return errNotImplemented
}

func (m *mockEpisodeService) List(ctx context.Context, titleQuery string, limit, offset int) ([]*models.Episode, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, titleQuery, limit, offset)
	}
	return nil, errNotImplemented
}

func (m *mockEpisodeService) GetDetail(ctx context.Context, slug string, actor models.Actor) (*models.EpisodeDetail, error) {
	if m.getDetailFunc != nil {
		return m.getDetailFunc(ctx, slug, actor)
	}
	return nil, errNotImplemented
}

type mockAuthService struct {
	registerFunc func(ctx context.Context, username, email, password, deviceToken string) (*models.User, string, error)
	loginFunc    func(ctx context.Context, username, password, deviceToken string) (*models.User, string, error)
	logoutFunc   func(ctx context.Context, userID uint64) error
	validateFunc func(ctx context.Context, token string) (*models.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, email, password, deviceToken string) (*models.User, string, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, username, email, password, deviceToken)
	}
	return nil, "", errNotImplemented
}

func (m *mockAuthService) Login(ctx context.Context, username, password, deviceToken string) (*models.User, string, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password, deviceToken)
	}
	return nil, "", errNotImplemented
}

func (m *mockAuthService) Logout(ctx context.Context, userID uint64) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, userID)
	}
	return errNotImplemented
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, token)
	}
	return nil, nil
}
