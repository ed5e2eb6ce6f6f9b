package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/adapters/signal"
	"github.com/avolkov/peerpad/internal/app/orch"
	"github.com/avolkov/peerpad/internal/config"
	"github.com/avolkov/peerpad/internal/domain"
	"github.com/avolkov/peerpad/internal/runner"
)

// ClientTokenMiddleware mints a stable per-browser token; it doubles as the
// connection/session identity for the lifetime of a socket.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *orch.Coordinator, run *runner.Runner) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("PeerPadSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewSignalWSController(coord, cfg.ReadLimit, cfg.PingPeriod)

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.Rooms.List())
	})

	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.Stats.Snapshot())
	})

	api.POST("/run", func(c *gin.Context) {
		var req struct {
			Code     string `json:"code"`
			Language string `json:"language"`
			Stdin    string `json:"input"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
			return
		}
		lang, err := domain.ParseLanguage(req.Language)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language"})
			return
		}

		res, err := run.Run(c.Request.Context(), req.Code, lang, req.Stdin)
		if err != nil {
			var runErr *runner.RunError
			switch {
			case errors.Is(err, runner.ErrTimeout):
				c.JSON(http.StatusOK, gin.H{"error": "execution timed out"})
			case errors.As(err, &runErr):
				c.JSON(http.StatusOK, gin.H{"error": runErr.Stage + " failed", "details": runErr.Details})
			default:
				log.Error().Err(err).Str("module", "adapters.http").Msg("run failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}
		c.JSON(http.StatusOK, res)
	})

	return r
}
