package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/taskport/taskport-api/internal/config"
	"github.com/taskport/taskport-api/internal/graphqlapi"
	"github.com/taskport/taskport-api/internal/handler"
	"github.com/taskport/taskport-api/internal/mailer"
	"github.com/taskport/taskport-api/internal/notify"
	"github.com/taskport/taskport-api/internal/obs"
	"github.com/taskport/taskport-api/internal/payment"
	"github.com/taskport/taskport-api/internal/provider"
	"github.com/taskport/taskport-api/internal/repository"
	"github.com/taskport/taskport-api/internal/server"
	"github.com/taskport/taskport-api/internal/sms"
	"github.com/taskport/taskport-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load(&logger)
	if !cfg.IsProduction() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	obs.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}
	cancel()
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	db := client.Database(cfg.DBName)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	userRepo := repository.NewUserMongoRepository(indexCtx, &logger, db)
	codeRepo := repository.NewCodeMongoRepository(indexCtx, &logger, db)
	indexCancel()

	sessionRepo := repository.NewSessionMongoRepository(db)
	orgRepo := repository.NewOrganizationMongoRepository(db)
	planRepo := repository.NewPlanMongoRepository(db)
	contactRepo := repository.NewContactMongoRepository(db)
	groupRepo := repository.NewGroupMongoRepository(db)
	notificationRepo := repository.NewNotificationMongoRepository(db)

	mail := mailer.NewMailer(&logger)
	smsClient := sms.NewClient(cfg.SMS, &logger)
	processor := payment.NewStripeProcessor(cfg.StripeKey, &logger)
	hub := notify.NewHub(&logger)

	providers := map[string]provider.OAuthProvider{
		"google":   provider.NewGoogleOAuthProvider(cfg.GoogleClientID),
		"facebook": provider.NewFacebookOAuthProvider(),
	}

	codes := usecase.NewCodeUsecase(codeRepo)
	sessions := usecase.NewSessionUsecase(sessionRepo, userRepo)
	notifications := usecase.NewNotificationUsecase(notificationRepo, userRepo, mail, smsClient, hub, &logger)
	auth := usecase.NewAuthUsecase(userRepo, orgRepo, contactRepo, codes, sessions, notifications, mail, providers, cfg, &logger)
	users := usecase.NewUserUsecase(userRepo, sessionRepo, codes, mail, cfg)
	members := usecase.NewMemberUsecase(userRepo, orgRepo, sessionRepo, codes, mail, cfg, &logger)
	orgs := usecase.NewOrganizationUsecase(orgRepo, userRepo)
	plans := usecase.NewPlanUsecase(planRepo, processor)
	billing := usecase.NewBillingUsecase(orgRepo, planRepo, userRepo, processor, &logger)
	contacts := usecase.NewContactUsecase(contactRepo, userRepo, notifications, &logger)
	groups := usecase.NewGroupUsecase(groupRepo)

	graphqlHandler, err := graphqlapi.NewHandler(&graphqlapi.Resolvers{
		Users:         users,
		Members:       members,
		Organizations: orgs,
		Plans:         plans,
		Contacts:      contacts,
		Groups:        groups,
	}, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build graphql schema")
	}

	router := server.NewRouter(&server.Handlers{
		Auth:          handler.NewAuthHandler(auth, cfg, &logger),
		User:          handler.NewUserHandler(users, sessions, cfg, &logger),
		Member:        handler.NewMemberHandler(members, users, cfg, &logger),
		Organization:  handler.NewOrganizationHandler(orgs, cfg, &logger),
		Billing:       handler.NewBillingHandler(billing, orgs, cfg, &logger),
		Plan:          handler.NewPlanHandler(plans, cfg, &logger),
		Contact:       handler.NewContactHandler(contacts, cfg, &logger),
		Group:         handler.NewGroupHandler(groups, cfg, &logger),
		Notification:  handler.NewNotificationHandler(notifications, hub, cfg, &logger),
		GraphQL:       graphqlHandler,
		Authenticator: handler.NewAuthenticator(sessions, cfg),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
