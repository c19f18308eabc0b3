package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/pkg/httpx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"

	_ "github.com/aussiebroadwan/authmodes/api/authmodes" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options configure the parts of the router that vary per deployment.
type Options struct {
	// SecureCookies marks credential cookies Secure (production).
	SecureCookies bool

	// CORSOrigins may call the API from a browser with credentials.
	CORSOrigins []string

	// Database and Sessions are probed by /readyz.
	Database Pinger
	Sessions Pinger
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cookies      httpx.Cookies
	opts         Options

	Dispatcher *service.Dispatcher
	Accounts   *service.Accounts
}

func NewRouter(
	dispatcher *service.Dispatcher,
	accounts *service.Accounts,
	buildVersion string,
	logger *slog.Logger,
	opts Options,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		cookies:      httpx.Cookies{Secure: opts.SecureCookies},
		opts:         opts,
		Dispatcher:   dispatcher,
		Accounts:     accounts,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if len(opts.CORSOrigins) > 0 {
		r.middlewares = append(r.middlewares, httpx.CORS(opts.CORSOrigins))
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerIdentity()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			authmodes API
//	@version		0.1.0
//	@description	One account store, three ways to stay signed in: a stateless signed token,
//	@description	a hybrid short-lived access token with a rotating refresh token, or a server-side session.
//	@description
//	@description	Every response is an envelope {"data": ..., "error": bool}.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Hybrid access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Dispatcher: r.Dispatcher, Cookies: r.cookies}

	r.Mux.HandleFunc("POST /api/v1/register", h.HandleRegister)
	r.Mux.HandleFunc("POST /api/v1/login", h.HandleLogin)
	r.Mux.HandleFunc("POST /api/v1/logout", h.HandleLogout)
	r.Mux.HandleFunc("POST /api/v1/refresh", h.HandleRefresh)
}

func (r *Router) registerIdentity() {
	me := &MeHandler{Accounts: r.Accounts, Cookies: r.cookies}
	resources := ResourcesHandler()

	routes := []struct {
		mode      service.Mode
		user      string
		resources string
	}{
		{service.ModeStateless, "/api/v1/user", "/api/v1/resources"},
		{service.ModeHybrid, "/api/v1/hybrid-user", "/api/v1/hybrid-resources"},
		{service.ModeSession, "/api/v1/session-user", "/api/v1/session-resources"},
	}

	for _, rt := range routes {
		authn := r.requireMode(rt.mode)
		r.Mux.Handle("GET "+rt.user, httpx.Chain(me, authn, logCaller))
		r.Mux.Handle("GET "+rt.resources, httpx.Chain(resources, authn, logCaller))
	}
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", r.handleLivez)
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.opts.Database, r.opts.Sessions))
}
