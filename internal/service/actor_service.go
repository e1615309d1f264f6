package service

import (
	"context"
	"errors"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/repository"
)

// ErrMissingActor means the request carried neither an authenticated user nor
// a guest device token, so no engagement can be attributed.
var ErrMissingActor = errors.New("no actor on request")

// ActorService resolves the engagement subject for a request. An authenticated
// user always wins over the guest cookie; an unauthenticated request resolves
// to the guest identity for its device token, creating one on first contact.
type ActorService interface {
	Resolve(ctx context.Context, user *models.User, deviceToken string) (models.Actor, error)
	// ResolveExisting is the read-path variant: it never creates a guest
	// identity, so probing reads cannot mint rows.
	ResolveExisting(ctx context.Context, user *models.User, deviceToken string) (models.Actor, error)
}

type actorService struct {
	guestRepo repository.GuestRepository
}

func NewActorService(guestRepo repository.GuestRepository) ActorService {
	return &actorService{guestRepo: guestRepo}
}

func (s *actorService) Resolve(ctx context.Context, user *models.User, deviceToken string) (models.Actor, error) {
	if user != nil {
		return models.UserActor(user.ID), nil
	}
	if deviceToken == "" {
		return models.Actor{}, ErrMissingActor
	}

	guest, err := s.guestRepo.GetOrCreateByDeviceToken(ctx, deviceToken)
	if err != nil {
		return models.Actor{}, err
	}
	return models.GuestActor(guest.ID), nil
}

func (s *actorService) ResolveExisting(ctx context.Context, user *models.User, deviceToken string) (models.Actor, error) {
	if user != nil {
		return models.UserActor(user.ID), nil
	}
	if deviceToken == "" {
		return models.Actor{}, ErrMissingActor
	}

	guest, err := s.guestRepo.FindByDeviceToken(ctx, deviceToken)
	if err != nil {
		return models.Actor{}, err
	}
	if guest == nil {
		return models.Actor{}, ErrMissingActor
	}
	return models.GuestActor(guest.ID), nil
}
