package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taskport/taskport-api/internal/mailer"
	"github.com/taskport/taskport-api/internal/model"
	"github.com/taskport/taskport-api/internal/notify"
	"github.com/taskport/taskport-api/internal/repository"
	"github.com/taskport/taskport-api/internal/sms"
)

// NotificationUsecase persists in-app notifications and fans messages out
// over email, SMS, and live connections. Every outbound channel honors the
// recipient's opt-in flags.
type NotificationUsecase interface {
	// Save persists the notification and pushes it to the recipient's open
	// connections.
	Save(ctx context.Context, notification *model.Notification) (*model.Notification, error)

	// List returns the recipient's stored notifications.
	List(ctx context.Context, recipientID string) ([]*model.Notification, error)

	// SendEmail delivers one message to every addressed user who has opted
	// in to email. When nobody is eligible it succeeds without touching the
	// transport.
	SendEmail(ctx context.Context, emails []string, subject, body string) error

	// SendSMS delivers a text to the addressed user. The recipient must
	// have opted in to SMS and have a mobile number on file.
	SendSMS(ctx context.Context, email, text string) error
}

var ErrSMSNotAvailable = errors.New("recipient has not opted in to sms or has no mobile number")

type notificationUsecase struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	mail             mailer.Sender
	sms              sms.Sender
	publisher        notify.Publisher
	logger           *zerolog.Logger
}

// NewNotificationUsecase creates the notification usecase.
func NewNotificationUsecase(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	mail mailer.Sender,
	smsSender sms.Sender,
	publisher notify.Publisher,
	logger *zerolog.Logger,
) NotificationUsecase {
	return &notificationUsecase{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		mail:             mail,
		sms:              smsSender,
		publisher:        publisher,
		logger:           logger,
	}
}

func (u *notificationUsecase) Save(
	ctx context.Context,
	notification *model.Notification,
) (*model.Notification, error) {
	saved, err := u.notificationRepo.CreateNotification(ctx, notification)
	if err != nil {
		return nil, err
	}

	event := notify.Event{
		Kind:   saved.Kind,
		SentAt: saved.NotifiedAt.UnixMilli(),
	}
	if title, ok := saved.Payload["title"].(string); ok {
		event.Title = title
	}
	if message, ok := saved.Payload["message"].(string); ok {
		event.Message = message
	}
	u.publisher.Publish(saved.RecipientID.Hex(), event)

	return saved, nil
}

func (u *notificationUsecase) List(ctx context.Context, recipientID string) ([]*model.Notification, error) {
	return u.notificationRepo.ListNotifications(ctx, recipientID)
}

func (u *notificationUsecase) SendEmail(ctx context.Context, emails []string, subject, body string) error {
	var eligible []string
	for _, email := range emails {
		user, err := u.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}

			return err
		}

		if user.EmailService {
			eligible = append(eligible, user.Email)
		}
	}

	// Everyone opted out: succeed without touching the transport.
	if len(eligible) == 0 {
		return nil
	}

	return u.mail.Send(mailer.Email{
		To:      eligible,
		Subject: subject,
		Body:    body,
	})
}

func (u *notificationUsecase) SendSMS(ctx context.Context, email, text string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrSMSNotAvailable
		}

		return err
	}

	if !user.SMSService || user.Mobile == "" {
		return ErrSMSNotAvailable
	}

	return u.sms.Send(ctx, user.CountryISDCode+user.Mobile, text)
}
