package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/digitalwallet/wallet-web/internal/api/handler"
	"github.com/digitalwallet/wallet-web/internal/api/middleware"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
	"github.com/digitalwallet/wallet-web/internal/infrastructure/http/handlers"
	"github.com/digitalwallet/wallet-web/internal/web"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions      ports.SessionResolver
	Wallet        ports.WalletService
	Renderer      echo.Renderer
	HealthChecks  map[string]handlers.Check
	SecureCookies bool
	Log           zerolog.Logger
	// Registry receives the HTTP metrics; nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Renderer == nil {
		d.Renderer = web.MustRenderer()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = d.Renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "wallet_web",
		Registerer: registerer,
	}))
	e.Use(echomiddleware.BodyLimit("64K"))

	// --- Ops (no session) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(d.HealthChecks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	// --- Pages ---
	authHandler := handler.NewAuthHandler(d.Wallet, d.Sessions, d.SecureCookies, d.Log)
	walletHandler := handler.NewWalletHandler(d.Wallet, d.SecureCookies, d.Log)

	// Per-route middleware: a prefix-less group would send unknown paths
	// through the guards.
	session := middleware.Session(d.Sessions, d.SecureCookies)
	guest := []echo.MiddlewareFunc{session, middleware.GuestOnly()}
	protected := []echo.MiddlewareFunc{session, middleware.RequireAuth()}

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, middleware.HomePath)
	})

	e.GET("/login", authHandler.ShowLogin, guest...)
	e.POST("/login", authHandler.Login, guest...)
	e.GET("/register", authHandler.ShowRegister, guest...)
	e.POST("/register", authHandler.Register, guest...)
	e.POST("/logout", authHandler.Logout, session)

	e.GET("/dashboard", walletHandler.Dashboard, protected...)
	e.GET("/add-money", walletHandler.ShowAddMoney, protected...)
	e.POST("/add-money", walletHandler.AddMoney, protected...)
	e.GET("/transfer", walletHandler.ShowTransfer, protected...)
	e.POST("/transfer", walletHandler.Transfer, protected...)
	e.POST("/transfer/confirm", walletHandler.ConfirmTransfer, protected...)
	e.POST("/transfer/cancel", walletHandler.CancelTransfer, protected...)
	e.GET("/transactions", walletHandler.Transactions, protected...)

	return e
}

// requestLogger logs one line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
