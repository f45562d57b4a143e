// Package api is the serverless entrypoint. The engine is built once per
// instance and reused across invocations.
package api

import (
	"net/http"
	"sync"

	"farmconnect/config"
	"farmconnect/routes"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	router  *gin.Engine
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg := config.LoadConfig()
		logger := config.SetupLogger(cfg)

		pool, err := config.ConnectDB(cfg)
		if err != nil {
			initErr = err
			return
		}
		rdb, err := config.ConnectRedis(cfg)
		if err != nil {
			initErr = err
			return
		}

		deps, err := routes.NewDependencies(cfg, pool, rdb, logger)
		if err != nil {
			initErr = err
			return
		}
		router = routes.NewRouter(cfg, deps, logger)
	})
}

func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		log.Error().Err(initErr).Msg("api init failed")
		http.Error(w, `{"success":false,"message":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	router.ServeHTTP(w, r)
}
