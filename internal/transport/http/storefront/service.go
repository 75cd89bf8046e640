// Package storefront exposes the session, catalog and commerce managers to
// the browser UI over /api routes.
package storefront

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"comicstore-go/internal/domain/authz"
	"comicstore-go/internal/domain/catalog"
	"comicstore-go/internal/domain/commerce"
	"comicstore-go/internal/domain/session"
	"comicstore-go/internal/platform/errors"
	"comicstore-go/internal/platform/logging"
	"comicstore-go/internal/platform/system"
	httptransport "comicstore-go/internal/transport/http"
	"comicstore-go/internal/transport/productsapi"
)

// Service is the HTTP transport layer of the storefront gateway.
type Service struct {
	logger   *logging.Logger
	session  *session.Manager
	catalog  *catalog.Reconciler
	ledger   *commerce.Ledger
	products *productsapi.Client
}

// NewService wires the gateway service from its collaborators. The remote
// products client may be nil when no admin backend is configured; the admin
// routes then answer 503.
func NewService(logger *logging.Logger, sess *session.Manager, cat *catalog.Reconciler, ledger *commerce.Ledger, products *productsapi.Client) (*Service, error) {
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "storefront.new", "logger is required")
	}
	if sess == nil {
		return nil, errors.New(errors.KindConfig, "storefront.new", "session manager is required")
	}
	if cat == nil {
		return nil, errors.New(errors.KindConfig, "storefront.new", "catalog reconciler is required")
	}
	if ledger == nil {
		return nil, errors.New(errors.KindConfig, "storefront.new", "commerce ledger is required")
	}
	return &Service{
		logger:   logger,
		session:  sess,
		catalog:  cat,
		ledger:   ledger,
		products: products,
	}, nil
}

// Register mounts the storefront routes on the /api group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.POST("/auth/login", s.handleLogin)
	router.POST("/auth/register", s.handleRegister)
	router.POST("/auth/logout", s.handleLogout)
	router.GET("/auth/session", s.handleSession)

	router.GET("/products", s.handleProductsList)
	router.GET("/products/:id", s.handleProductGet)

	authed := router.Group("")
	authed.Use(s.guardMiddleware(""))
	{
		authed.POST("/products", s.handleProductCreate)
		authed.GET("/cart", s.handleCartGet)
		authed.POST("/cart/items", s.handleCartAdd)
		authed.PUT("/cart/items/:id", s.handleCartUpdate)
		authed.DELETE("/cart/items/:id", s.handleCartRemove)
		authed.DELETE("/cart", s.handleCartClear)
		authed.POST("/checkout", s.handleCheckout)
		authed.GET("/library", s.handleLibrary)
	}

	admin := router.Group("/admin")
	admin.Use(s.guardMiddleware(authz.RoleAdmin))
	{
		admin.GET("/products", s.handleAdminProductsList)
		admin.POST("/products", s.handleAdminProductCreate)
		admin.PUT("/products/:id", s.handleAdminProductUpdate)
		admin.DELETE("/products/:id", s.handleAdminProductDelete)
	}

	router.GET("/health", s.handleHealth)

	s.logger.InfoTag("HTTP", "storefront routes registered")
	return nil
}

// guardMiddleware evaluates the authorization guard against the current
// session snapshot before letting a protected handler run.
func (s *Service) guardMiddleware(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := s.session.Snapshot()
		role := ""
		if snap.Identity != nil {
			role = snap.Identity.Role
		}
		decision := authz.Evaluate(authz.Input{
			Loading:       snap.Loading,
			Authenticated: snap.Authenticated(),
			Role:          role,
			RequiredRole:  requiredRole,
		})

		switch decision.Outcome {
		case authz.OutcomePending:
			httptransport.RespondError(c, http.StatusServiceUnavailable, "session validation in progress", nil)
			c.Abort()
		case authz.OutcomeRedirect:
			httptransport.RespondError(c, http.StatusUnauthorized, "authentication required",
				gin.H{"redirect_to": decision.RedirectTo})
			c.Abort()
		case authz.OutcomeForbidden:
			httptransport.RespondError(c, http.StatusForbidden, "insufficient role", nil)
			c.Abort()
		default:
			c.Next()
		}
	}
}

// handleHealth reports gateway liveness, host resource usage and whether the
// remote products backend answers its probe.
func (s *Service) handleHealth(c *gin.Context) {
	memPercent, err := system.MemoryUsage()
	if err != nil {
		s.logger.WarnTag("HTTP", "memory probe failed: %v", err)
	}
	cpuPercent, err := system.CPUUsage()
	if err != nil {
		s.logger.WarnTag("HTTP", "cpu probe failed: %v", err)
	}

	backendUp := false
	if s.products != nil {
		backendUp = s.products.Healthy(c.Request.Context())
	}

	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"status":           "ok",
		"memory_percent":   memPercent,
		"cpu_percent":      cpuPercent,
		"products_backend": backendUp,
	}, "")
}
