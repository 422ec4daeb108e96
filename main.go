package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Marc02130/tiktaik-sub000/domain/repository"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/cache"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/configuration"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/logger"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/persistence"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/pubsub"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/realtime"
	"github.com/Marc02130/tiktaik-sub000/infrastructure/servicebus"
	httpHandler "github.com/Marc02130/tiktaik-sub000/interfaces/http"
	"github.com/Marc02130/tiktaik-sub000/server"
	"github.com/Marc02130/tiktaik-sub000/usecase"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Env files are non-destructive; OS env keeps precedence.
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App
	feedCfg := configuration.C.Feed

	mongoCfg := configuration.C.Database.Mongo
	mongoDb, err := persistence.NewMongoDb(mongoCfg.Host, mongoCfg.Port, mongoCfg.User, mongoCfg.Password, mongoCfg.Name)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while connecting to MongoDB")
		os.Exit(1)
	}
	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	err = mongoDb.Ping(pingCtx, nil)
	pingCancel()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while pinging MongoDB")
		os.Exit(1)
	}
	defer func() {
		if err := mongoDb.Disconnect(context.Background()); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while disconnecting MongoDB")
		}
	}()

	videoStore := persistence.NewVideoStore(mongoDb, mongoCfg.Name)
	userRepository := persistence.NewUserRepository(mongoDb, mongoCfg.Name)

	feedCache, closeCache := initiateFeedCache(ctx, feedCfg)
	defer closeCache()

	resolver := usecase.NewViewerContextResolver(videoStore, feedCfg.WatchHistorySize, feedCfg.PreferredTagSample)
	scorer := usecase.NewScorer(nil)
	optimizer := usecase.NewQueryOptimizer(feedCfg.ConstrainedPageSize, feedCfg.PrefetchLookahead, feedCfg.PreloadThreshold)
	feedUsecase := usecase.NewFeedUsecase(videoStore, feedCache, resolver, scorer, usecase.FeedOptions{
		OverfetchFactor: feedCfg.OverfetchFactor,
		OverfetchCap:    feedCfg.OverfetchCap,
	})

	feedHub := realtime.NewFeedHub()
	invalidator := usecase.NewFeedInvalidator(feedCache, feedHub)

	if projectID := configuration.C.Pubsub.ProjectID; projectID != "" {
		pubsubClient, err := pubsub.NewPubSub(ctx, projectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while creating Pub/Sub client")
		} else {
			defer pubsubClient.Close()
			subscriber := pubsub.NewFeedEventSubscriber(pubsubClient, configuration.C.Pubsub.Subscription, invalidator)
			g.Go(func() error {
				return subscriber.Start(ctx)
			})
		}
	}

	if connectionString := configuration.C.ServiceBus.ConnectionString; connectionString != "" {
		serviceBusClient, err := servicebus.NewServiceBus(connectionString)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while creating Service Bus client")
		} else {
			receiver := servicebus.NewFeedEventReceiver(serviceBusClient, configuration.C.ServiceBus.Queue, invalidator)
			g.Go(func() error {
				return receiver.Start(ctx)
			})
		}
	}

	feedHandler := httpHandler.NewFeedHandler(feedUsecase, optimizer, feedCfg.DefaultPageSize, feedCfg.MaxPageSize)

	if os.Getenv("ENV") == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.InitiateRouter(feedHandler, feedHub, userRepository)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.GetLogger().WithField("port", app.Port).Info("Feed engine listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case sig := <-interrupt:
		logger.GetLogger().WithField("signal", sig.String()).Info("Shutdown signal received")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while shutting down HTTP server")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Error while waiting for workers")
	}
	logger.GetLogger().Info("Feed engine stopped")
}

// initiateFeedCache selects the page-cache backend. Redis failures fall
// back to the in-memory cache so the feed keeps serving.
func initiateFeedCache(ctx context.Context, feedCfg configuration.Feed) (repository.IFeedCache, func()) {
	ttl := time.Duration(feedCfg.CacheTTLSeconds) * time.Second
	sweep := time.Duration(feedCfg.SweepIntervalSeconds) * time.Second

	if feedCfg.CacheBackend == "redis" {
		redisCfg := configuration.C.RedisClient
		addr := net.JoinHostPort(redisCfg.Host, redisCfg.Port)
		client, err := cache.NewCache(ctx, addr, redisCfg.Username, redisCfg.Password)
		if err == nil {
			logger.GetLogger().WithField("addr", addr).Info("Using redis feed cache")
			return cache.NewRedisFeedCache(client, ttl), func() {
				if err := client.Close(); err != nil {
					logger.GetLogger().WithField("error", err).Error("Error while closing redis client")
				}
			}
		}
		logger.GetLogger().WithField("error", err).Warn("Redis unavailable, falling back to memory cache")
	}

	memoryCache := cache.NewMemoryFeedCache(ttl, sweep, nil)
	return memoryCache, memoryCache.Close
}
