package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nativeschema/site-api/internal/config"
	"github.com/nativeschema/site-api/internal/http/middleware"
	"github.com/nativeschema/site-api/internal/metrics"
	"github.com/nativeschema/site-api/internal/model"
	"github.com/nativeschema/site-api/internal/service/inbound"
	"github.com/nativeschema/site-api/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ContactSubmitter is implemented by *contact.Service.
type ContactSubmitter interface {
	Submit(ctx context.Context, sub model.ContactSubmission) error
}

// InboundDispatcher is implemented by *inbound.Dispatcher.
type InboundDispatcher interface {
	Dispatch(ctx context.Context, ev model.WebhookEvent) inbound.Outcome
}

type Deps struct {
	Contact ContactSubmitter
	Inbound InboundDispatcher
	Redis   *redis.Client // nil disables the contact rate limit
	Logger  *zap.Logger
}

type Server struct {
	e   *echo.Echo
	log *zap.Logger
}

func NewServer(cfg config.Config, deps Deps) (*Server, error) {
	lg := deps.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.INFO)
	e.IPExtractor = clientIPExtractor(cfg.HTTP.TrustCFHeader)

	e.Use(
		echoMid.Recover(),
		echoMid.RequestIDWithConfig(echoMid.RequestIDConfig{Generator: util.NewID}),
		requestLogger(lg),
		echoMid.CORSWithConfig(echoMid.CORSConfig{
			AllowOrigins: cfg.HTTP.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		}),
	)
	if cfg.HTTP.BodyLimit != "" {
		e.Use(echoMid.BodyLimit(cfg.HTTP.BodyLimit))
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          deps.Redis,
		Limit:          cfg.RateLimit.ContactPerWindow,
		Window:         cfg.RateLimit.Window,
		KeyPrefix:      "rl:contact:",
		RetryAfterHint: true,
		OnLimited: func(echo.Context) {
			metrics.ContactSubmissions.WithLabelValues("limited").Inc()
		},
	})
	sigMW, err := middleware.SignatureMiddleware(middleware.SignatureConfig{
		Secret: cfg.Inbound.WebhookSecret,
	})
	if err != nil {
		return nil, err
	}

	// routes
	api := e.Group("/api")
	api.POST("/contact", contactHandler(deps.Contact, lg), rlMW)
	api.POST("/email/webhook", webhookHandler(deps.Inbound, lg), sigMW)
	api.GET("/email/webhook", webhookStatusHandler)

	return &Server{e: e, log: lg}, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	s.log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

// clientIPExtractor reads CF-Connecting-IP only when the deployment sits
// behind Cloudflare; otherwise the socket peer is the client.
func clientIPExtractor(trustCF bool) echo.IPExtractor {
	direct := echo.ExtractIPDirect()
	if !trustCF {
		return direct
	}
	return func(r *http.Request) string {
		if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
			return ip
		}
		return direct(r)
	}
}

func requestLogger(lg *zap.Logger) echo.MiddlewareFunc {
	return echoMid.RequestLoggerWithConfig(echoMid.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v echoMid.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				lg.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			lg.Info("request", fields...)
			return nil
		},
	})
}
