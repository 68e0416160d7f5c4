package core

import (
	"fmt"
	"net/http"
	"time"

	"api/internal/activity"
	c "api/internal/cache"
	"api/internal/configuration"
	"api/internal/events"
	h "api/internal/helpers"
	"api/internal/messaging"
	"api/internal/mfa"
	m "api/internal/middlewares"
	"api/internal/models"
	"api/internal/notifier"
	"api/internal/services"
	"api/internal/session"
	"api/internal/sms"
	"api/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedDemoUser provisions the demo account on startup when enabled. The
// password hash is refreshed if the account already exists.
func SeedDemoUser(db *gorm.DB, config models.Configuration) {
	if !config.App.SeedDemoUser || config.App.DemoUserEmail == "" {
		return
	}

	hash, err := h.CreateHash(config.App.DemoUserPassword)
	if err != nil {
		zap.L().Fatal("Failed to hash demo user password", zap.Error(err))
	}

	demoUser := models.User{
		Email:          config.App.DemoUserEmail,
		Username:       "demo",
		DisplayName:    "Demo User",
		HashedPassword: hash,
		Verified:       true,
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"hashed_password"}),
	}).Create(&demoUser)
	if result.Error != nil {
		zap.L().Error("Failed to seed demo user", zap.Error(result.Error))
		return
	}

	zap.L().Info("Demo user seeded", zap.String("email", config.App.DemoUserEmail))
}

// StartWorkers launches the notifications worker draining the event topic.
func StartWorkers(
	eventsManager *EventsManager,
	notify notifier.INotifier,
) {
	eventParams := &events.EventParams{
		Notifier: notify,
	}

	notifications := eventsManager.GetSubscriber(configuration.EventsNotifications).Subscribe()
	go events.HandleEvents(eventParams, notifications)
	zap.L().Info("Started notifications worker")
}

func StartHTTPServer(
	config models.Configuration,
	db *gorm.DB,
	cache c.ICache,
	activityLogger activity.IActivityLogger,
	notificationsPublisher messaging.IPublisher,
) {
	authConfig := config.App.GetAuthConfig()

	users := store.NewUserStore(db)
	sessions := session.NewManager(cache)
	smsProvider := sms.NewStubProvider(cache)
	verifier := &mfa.Verifier{
		Users:         users,
		Cache:         cache,
		SMS:           smsProvider,
		EncryptionKey: authConfig.MFAEncryptionKey,
	}

	authService := services.AuthService{
		Users:          users,
		Sessions:       sessions,
		AuthConfig:     authConfig,
		Verifier:       verifier,
		SMS:            smsProvider,
		Publisher:      notificationsPublisher,
		ActivityLogger: activityLogger,
	}

	mfaService := services.MFAService{
		Users:          users,
		AuthConfig:     authConfig,
		Verifier:       verifier,
		Publisher:      notificationsPublisher,
		ActivityLogger: activityLogger,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(m.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(apiRouter chi.Router) {
		apiRouter.Mount("/auth", authService.PublicRoutes())

		apiRouter.Group(func(authed chi.Router) {
			authed.Use(m.Authenticate(sessions))
			authed.Mount("/auth/account", authService.Routes())
			authed.Mount("/mfa", mfaService.Routes())
		})
	})

	zap.L().Info("HTTP server starting", zap.Int("port", config.App.Port))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.App.Port),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  5 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		zap.L().Error("Failed to start the app", zap.Error(err))
	}
}
