package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"presenter-service/internal/config"
	"presenter-service/internal/control"
	"presenter-service/internal/middleware"
	"presenter-service/internal/session"
	"presenter-service/internal/slides"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	store := session.NewRedisStore(infra.Redis.Client)
	allocator := session.NewAllocator(store, cfg.SessionTTL)
	authenticator := session.NewAuthenticator(store)
	relay := session.NewRelay(store)
	resolver := slides.NewResolver(infra.Presigner)

	controlHandler := control.NewHandler(
		allocator,
		authenticator,
		relay,
		store,
		resolver,
		cfg.SessionTTL,
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	controlHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// The presenter frontend is served separately; redirect a bare
	// origin so it lands somewhere useful.
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/present/")
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.Redis.Close()
	}, nil
}
