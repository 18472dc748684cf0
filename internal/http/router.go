package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fernlabs/sessiond/internal/service"
	"github.com/fernlabs/sessiond/internal/store"
	"github.com/fernlabs/sessiond/pkg/httpx"
	"github.com/fernlabs/sessiond/pkg/slogx"

	_ "github.com/fernlabs/sessiond/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	SessionService *service.SessionService
	AccountService *service.AccountService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUser()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Sessiond API
//	@version		0.1.0
//	@description	Cookie-based session service: password login issues a short-lived
//	@description	JWT access token plus a single-use refresh token delivered in an
//	@description	HttpOnly cookie. Refreshing rotates the refresh token; replaying a
//	@description	consumed token is rejected.
//
//	@contact.name				Fern Labs
//	@contact.url				https://github.com/fernlabs/sessiond
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
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	joinHandler := &JoinHandler{SessionService: r.SessionService}
	loginHandler := &LoginHandler{SessionService: r.SessionService}
	refreshHandler := &RefreshHandler{SessionService: r.SessionService}
	logoutHandler := &LogoutHandler{SessionService: r.SessionService}

	// POST /join - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /api/v1/auth/join",
		httpx.Chain(joinHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP + username form field to slow
	// both IP-spread and single-account brute force
	r.Mux.Handle("POST /api/v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	// POST /refresh - moderate rate limit; legitimate clients refresh at
	// most once per access TTL
	r.Mux.Handle("POST /api/v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - moderate rate limit
	r.Mux.Handle("POST /api/v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUser() {
	userHandler := &UserInfoHandler{AccountService: r.AccountService}
	profileHandler := &ProfileHandler{AccountService: r.AccountService}
	preferencesHandler := &PreferencesHandler{AccountService: r.AccountService}

	authn := AuthnMiddleware(r.SessionService)

	r.Mux.Handle("GET /api/v1/user/{$}",
		httpx.Chain(http.HandlerFunc(userHandler.HandleGet),
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /api/v1/user/{$}",
		httpx.Chain(http.HandlerFunc(userHandler.HandleDelete),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/v1/user/profile",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleGet),
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /api/v1/user/profile",
		httpx.Chain(http.HandlerFunc(profileHandler.HandlePatch),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/v1/user/preferences",
		httpx.Chain(http.HandlerFunc(preferencesHandler.HandleGet),
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /api/v1/user/preferences",
		httpx.Chain(http.HandlerFunc(preferencesHandler.HandlePatch),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
