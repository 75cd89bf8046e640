package storefront

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"comicstore-go/internal/domain/catalog"
	"comicstore-go/internal/platform/errors"
	httptransport "comicstore-go/internal/transport/http"
)

// handleProductsList returns the reconciled catalog, optionally narrowed by
// the ?search= term.
func (s *Service) handleProductsList(c *gin.Context) {
	products := s.catalog.List(c.Request.Context())
	if term := c.Query("search"); term != "" {
		products = catalog.Filter(products, term)
	}
	httptransport.RespondSuccess(c, http.StatusOK, products, "")
}

func (s *Service) handleProductGet(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	product, ok := s.catalog.Find(c.Request.Context(), id)
	if !ok {
		httptransport.RespondError(c, http.StatusNotFound, "product not found", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, product, "")
}

// handleProductCreate appends a user-created product to the local catalog.
func (s *Service) handleProductCreate(c *gin.Context) {
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid product payload", nil)
		return
	}

	created, err := s.catalog.Append(c.Request.Context(), p)
	if err != nil {
		if errors.IsKind(err, errors.KindCatalog) {
			httptransport.RespondError(c, http.StatusBadRequest, errors.MessageOf(err, "invalid product"), nil)
			return
		}
		s.logger.ErrorTag("HTTP", "product append failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "could not save product", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, created, "product created")
}

// Admin routes proxy to the remote products service.

func (s *Service) handleAdminProductsList(c *gin.Context) {
	if s.products == nil {
		httptransport.RespondError(c, http.StatusServiceUnavailable, "products backend not configured", nil)
		return
	}
	products, err := s.products.GetAll(c.Request.Context())
	if err != nil {
		s.respondRemoteError(c, err, http.StatusBadGateway)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, products, "")
}

func (s *Service) handleAdminProductCreate(c *gin.Context) {
	if s.products == nil {
		httptransport.RespondError(c, http.StatusServiceUnavailable, "products backend not configured", nil)
		return
	}
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid product payload", nil)
		return
	}
	created, err := s.products.Create(c.Request.Context(), p)
	if err != nil {
		s.respondRemoteError(c, err, http.StatusBadRequest)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, created, "product created")
}

func (s *Service) handleAdminProductUpdate(c *gin.Context) {
	if s.products == nil {
		httptransport.RespondError(c, http.StatusServiceUnavailable, "products backend not configured", nil)
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid product payload", nil)
		return
	}
	updated, err := s.products.Update(c.Request.Context(), id, p)
	if err != nil {
		s.respondRemoteError(c, err, http.StatusNotFound)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, updated, "product updated")
}

func (s *Service) handleAdminProductDelete(c *gin.Context) {
	if s.products == nil {
		httptransport.RespondError(c, http.StatusServiceUnavailable, "products backend not configured", nil)
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	if err := s.products.Delete(c.Request.Context(), id); err != nil {
		s.respondRemoteError(c, err, http.StatusNotFound)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "product deleted")
}

// respondRemoteError maps errors from the remote products client. Transport
// problems read as a bad gateway; service rejections keep the caller-chosen
// status and the server message.
func (s *Service) respondRemoteError(c *gin.Context, err error, rejectStatus int) {
	if errors.IsKind(err, errors.KindTransport) {
		s.logger.WarnTag("HTTP", "products backend unreachable: %v", err)
		httptransport.RespondError(c, http.StatusBadGateway, "products backend unreachable", nil)
		return
	}
	httptransport.RespondError(c, rejectStatus, errors.MessageOf(err, "products backend rejected the request"), nil)
}
