package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/internal/portal/telemetry"
	"github.com/aussiebroadwan/fieldops/pkg/httpx"
	"github.com/aussiebroadwan/fieldops/pkg/jwtx"
	"github.com/aussiebroadwan/fieldops/pkg/rbac"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"

	_ "github.com/aussiebroadwan/fieldops/api/portal" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	metrics      *telemetry.Metrics

	Cookies    httpx.CookieConfig
	StateCodec *jwtx.StateSigner

	ClaimService   *service.ClaimService
	SessionService *service.SessionService
	AccessService  *service.AccessService
	RolesService   *service.RolesService
	InviteService  *service.InviteService
	ProfileService *service.ProfileService
}

func NewRouter(buildVersion string, st store.Store, metrics *telemetry.Metrics, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      metrics,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, "/livez", "/readyz", "/metrics"),
		r.metrics.HTTPMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMe()
	r.registerRoles()
	r.registerInvitations()
	r.registerProfiles()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Field Operations Portal API
//	@version		0.1.0
//	@description	Sign-in, guest list and role administration for the field operations portal.
//	@description
//	@description	Every /v1 endpoint needs the session cookie set by the sign-in callback.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/fieldops
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						portal_session
//	@description				Opaque session token issued by /auth/callback.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured runs the session check, the per-session rate limit and, when
// perms are given, a permission check requiring any one of them.
func (r *Router) secured(h http.Handler, limit httpx.RateLimitConfig, perms ...rbac.Permission) http.Handler {
	mws := []httpx.Middleware{
		Authenticate(r.SessionService, r.store),
		httpx.RateLimitBySession(limit),
	}
	if len(perms) > 0 {
		mws = append(mws, RequirePermission(r.AccessService, perms...))
	}
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Provider:   r.ClaimService.Provider,
		Claims:     r.ClaimService,
		Sessions:   r.SessionService,
		Access:     r.AccessService,
		Redirects:  r.ClaimService.Redirects,
		StateCodec: r.StateCodec,
		Cookies:    r.Cookies,
	}

	// Sign-in endpoints - strict limit by IP, these hit the identity provider
	r.Mux.Handle("GET /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(httpx.AuthLimit)),
	)
	r.Mux.Handle("GET /auth/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback), httpx.RateLimitByIP(httpx.AuthLimit)),
	)
	r.Mux.Handle("POST /auth/signout",
		httpx.Chain(http.HandlerFunc(h.HandleSignout), httpx.RateLimitByIP(httpx.AuthLimit)),
	)
}

func (r *Router) registerMe() {
	h := &MeHandler{
		Access:   r.AccessService,
		Roles:    r.RolesService,
		Profiles: r.ProfileService,
	}

	r.Mux.Handle("GET /v1/me", r.secured(http.HandlerFunc(h.HandleGet), httpx.APILimit))
	r.Mux.Handle("POST /v1/me/permissions/refresh", r.secured(http.HandlerFunc(h.HandleRefresh), httpx.APILimit))
	r.Mux.Handle("POST /v1/me/onboarding", r.secured(http.HandlerFunc(h.HandleCompleteOnboarding), httpx.APILimit))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	read := rbac.New("roles", rbac.ActionRead)
	create := rbac.New("roles", rbac.ActionCreate)
	update := rbac.New("roles", rbac.ActionUpdate)
	del := rbac.New("roles", rbac.ActionDelete)

	r.Mux.Handle("GET /v1/roles", r.secured(http.HandlerFunc(h.HandleList), httpx.APILimit, read))
	r.Mux.Handle("GET /v1/roles/{id}", r.secured(http.HandlerFunc(h.HandleGet), httpx.APILimit, read))
	r.Mux.Handle("POST /v1/roles", r.secured(http.HandlerFunc(h.HandleCreate), httpx.AdminLimit, create))
	r.Mux.Handle("PATCH /v1/roles/{id}", r.secured(http.HandlerFunc(h.HandleUpdate), httpx.AdminLimit, update))
	r.Mux.Handle("DELETE /v1/roles/{id}", r.secured(http.HandlerFunc(h.HandleDelete), httpx.AdminLimit, del))
	r.Mux.Handle("POST /v1/roles/{id}/permissions", r.secured(http.HandlerFunc(h.HandleGrant), httpx.AdminLimit, update))
	r.Mux.Handle("DELETE /v1/roles/{id}/permissions", r.secured(http.HandlerFunc(h.HandleRevoke), httpx.AdminLimit, update))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{InviteService: r.InviteService}

	r.Mux.Handle("GET /v1/invitations",
		r.secured(http.HandlerFunc(h.HandleList), httpx.APILimit, rbac.New("invitations", rbac.ActionRead)))
	r.Mux.Handle("POST /v1/invitations",
		r.secured(http.HandlerFunc(h.HandleCreate), httpx.AdminLimit, rbac.New("invitations", rbac.ActionCreate)))
	r.Mux.Handle("DELETE /v1/invitations/{id}",
		r.secured(http.HandlerFunc(h.HandleRevoke), httpx.AdminLimit, rbac.New("invitations", rbac.ActionDelete)))
}

func (r *Router) registerProfiles() {
	h := &ProfilesHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /v1/profiles",
		r.secured(http.HandlerFunc(h.HandleList), httpx.APILimit, rbac.New("profiles", rbac.ActionRead)))
	r.Mux.Handle("GET /v1/profiles/{id}",
		r.secured(http.HandlerFunc(h.HandleGet), httpx.APILimit, rbac.New("profiles", rbac.ActionRead)))
	r.Mux.Handle("PATCH /v1/profiles/{id}",
		r.secured(http.HandlerFunc(h.HandleUpdate), httpx.AdminLimit, rbac.New("profiles", rbac.ActionUpdate)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
