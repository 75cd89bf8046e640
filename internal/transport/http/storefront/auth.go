package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"comicstore-go/internal/platform/errors"
	httptransport "comicstore-go/internal/transport/http"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleLogin forwards credentials to the remote auth service through the
// session manager. The response always carries the resulting session state.
func (s *Service) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "email and password are required", nil)
		return
	}

	ok := s.session.Login(c.Request.Context(), req.Email, req.Password)
	snap := s.session.Snapshot()
	if !ok {
		message := snap.LastError
		if message == "" {
			message = "login failed"
		}
		httptransport.RespondError(c, http.StatusUnauthorized, message, snap)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, snap, "logged in")
}

func (s *Service) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "name, email and password are required", nil)
		return
	}

	if err := s.session.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		status := http.StatusBadGateway
		if errors.IsKind(err, errors.KindAuth) {
			status = http.StatusUnauthorized
		}
		httptransport.RespondError(c, status, errors.MessageOf(err, "registration failed"), s.session.Snapshot())
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, s.session.Snapshot(), "registered")
}

func (s *Service) handleLogout(c *gin.Context) {
	s.session.Logout(c.Request.Context())
	httptransport.RespondSuccess(c, http.StatusOK, s.session.Snapshot(), "logged out")
}

// handleSession returns the current snapshot so the UI can hydrate without
// waiting for an auth round trip.
func (s *Service) handleSession(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, s.session.Snapshot(), "")
}
