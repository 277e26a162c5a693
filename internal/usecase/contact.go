package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/repository"
)

// ContactUsecase manages a user's personal contact directory.
type ContactUsecase interface {
	// Create adds a contact. When the contact email belongs to a registered
	// user the reference is linked immediately and that user is notified;
	// otherwise the link is back-filled when they register.
	Create(ctx context.Context, owner *model.User, params CreateContactParams) (*model.Contact, error)

	Get(ctx context.Context, id, ownerID string) (*model.Contact, error)
	List(ctx context.Context, ownerID string) ([]*model.Contact, error)
	ListRelationships(ctx context.Context, ownerID string) ([]string, error)
	Update(ctx context.Context, id, ownerID string, params repository.UpdateContactParams) (*model.Contact, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// CreateContactParams defines the parameters for adding a contact.
type CreateContactParams struct {
	ContactEmail string
	Relationship string
	Aliases      []string
}

var ErrContactNotFound = errors.New("contact not found")

type contactUsecase struct {
	contactRepo  repository.ContactRepository
	userRepo     repository.UserRepository
	notification NotificationUsecase
	logger       *zerolog.Logger
}

// NewContactUsecase creates the contact usecase.
func NewContactUsecase(
	contactRepo repository.ContactRepository,
	userRepo repository.UserRepository,
	notification NotificationUsecase,
	logger *zerolog.Logger,
) ContactUsecase {
	return &contactUsecase{
		contactRepo:  contactRepo,
		userRepo:     userRepo,
		notification: notification,
		logger:       logger,
	}
}

func (u *contactUsecase) Create(
	ctx context.Context,
	owner *model.User,
	params CreateContactParams,
) (*model.Contact, error) {
	contact := &model.Contact{
		OwnerID:      owner.ID,
		ContactEmail: params.ContactEmail,
		Relationship: params.Relationship,
		Aliases:      params.Aliases,
	}

	contactUser, err := u.userRepo.GetUserByEmail(ctx, params.ContactEmail)
	switch {
	case err == nil:
		contact.ContactUserID = contactUser.ID
	case errors.Is(err, mongo.ErrNoDocuments):
		// Not registered yet; registration back-fills the reference.
	default:
		return nil, err
	}

	created, err := u.contactRepo.CreateContact(ctx, contact)
	if err != nil {
		return nil, err
	}

	if contactUser != nil {
		if _, err := u.notification.Save(ctx, &model.Notification{
			SenderID:       owner.ID,
			RecipientID:    contactUser.ID,
			RecipientEmail: contactUser.Email,
			Kind:           model.NotificationContactInvitation,
			Payload: bson.M{
				"title":   "New contact",
				"message": owner.Name + " added you as a contact.",
			},
		}); err != nil {
			u.logger.Error().Err(err).Str("contact_id", created.ID.Hex()).Msg("failed to store contact notification")
		}
	}

	return created, nil
}

func (u *contactUsecase) Get(ctx context.Context, id, ownerID string) (*model.Contact, error) {
	contact, err := u.contactRepo.GetContact(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrContactNotFound
		}

		return nil, err
	}

	return contact, nil
}

func (u *contactUsecase) List(ctx context.Context, ownerID string) ([]*model.Contact, error) {
	return u.contactRepo.ListContacts(ctx, ownerID)
}

func (u *contactUsecase) ListRelationships(ctx context.Context, ownerID string) ([]string, error) {
	return u.contactRepo.ListRelationships(ctx, ownerID)
}

func (u *contactUsecase) Update(
	ctx context.Context,
	id, ownerID string,
	params repository.UpdateContactParams,
) (*model.Contact, error) {
	if _, err := u.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}

	contact, err := u.contactRepo.UpdateContact(ctx, id, params)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrContactNotFound
		}

		return nil, err
	}

	return contact, nil
}

func (u *contactUsecase) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := u.Get(ctx, id, ownerID); err != nil {
		return err
	}

	if _, err := u.contactRepo.SoftDeleteContact(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrContactNotFound
		}

		return err
	}

	return nil
}
