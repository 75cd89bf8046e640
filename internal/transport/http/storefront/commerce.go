package storefront

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httptransport "comicstore-go/internal/transport/http"
)

type cartAddRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity"`
}

type cartUpdateRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Service) cartView() gin.H {
	return gin.H{
		"lines":       s.ledger.Lines(),
		"total_count": s.ledger.TotalCount(),
		"total_price": s.ledger.TotalPrice(),
	}
}

func (s *Service) handleCartGet(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, s.cartView(), "")
}

// handleCartAdd resolves the product through the catalog so the cart never
// holds prices the client made up.
func (s *Service) handleCartAdd(c *gin.Context) {
	var req cartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "product_id is required", nil)
		return
	}

	product, ok := s.catalog.Find(c.Request.Context(), req.ProductID)
	if !ok {
		httptransport.RespondError(c, http.StatusNotFound, "product not found", nil)
		return
	}

	s.ledger.AddItem(product, req.Quantity)
	httptransport.RespondSuccess(c, http.StatusOK, s.cartView(), "item added")
}

func (s *Service) handleCartUpdate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	var req cartUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "quantity is required", nil)
		return
	}

	s.ledger.UpdateQuantity(id, req.Quantity)
	httptransport.RespondSuccess(c, http.StatusOK, s.cartView(), "cart updated")
}

func (s *Service) handleCartRemove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	s.ledger.RemoveItem(id)
	httptransport.RespondSuccess(c, http.StatusOK, s.cartView(), "item removed")
}

func (s *Service) handleCartClear(c *gin.Context) {
	s.ledger.Clear()
	httptransport.RespondSuccess(c, http.StatusOK, s.cartView(), "cart cleared")
}

// handleCheckout commits the cart into the purchase history. An empty cart
// is not an error; the response just has no receipt.
func (s *Service) handleCheckout(c *gin.Context) {
	receipt, err := s.ledger.Checkout(c.Request.Context())
	if err != nil {
		s.logger.ErrorTag("HTTP", "checkout failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "could not record the purchase", s.cartView())
		return
	}
	if receipt == nil {
		httptransport.RespondSuccess(c, http.StatusOK, nil, "cart is empty")
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, receipt, "purchase recorded")
}

func (s *Service) handleLibrary(c *gin.Context) {
	records := s.ledger.Library(c.Request.Context())
	httptransport.RespondSuccess(c, http.StatusOK, records, "")
}
