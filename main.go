package main

import (
	"api/internal/configuration"
	"api/internal/core"
	"api/internal/database"

	"go.uber.org/zap"
)

func main() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))

	config := configuration.Read()
	core.NewLogger(config.App.LogLevel)

	db := database.InitDB(config.Database)
	cache := core.NewCache(config.Cache)
	notify := core.NewNotifier(config.Notifier)
	activityLogger := core.NewActivityLogger(config.Activity)

	eventsManager := core.NewEventsManager()
	defer eventsManager.Close()

	core.SeedDemoUser(db, config)
	core.StartWorkers(eventsManager, notify)

	core.StartHTTPServer(
		config,
		db,
		cache,
		activityLogger,
		eventsManager.GetPublisher(configuration.EventsNotifications),
	)
}
