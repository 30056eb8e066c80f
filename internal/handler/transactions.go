package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/service"
)

// TransactionHandler serves manual entries and the pay action.
type TransactionHandler struct {
	transactions *service.TransactionService
}

func NewTransactionHandler(s *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: s}
}

type createTransactionReq struct {
	CreditorID string  `json:"creditor_id" binding:"required"`
	DebtorID   string  `json:"debtor_id" binding:"required"`
	ItemID     string  `json:"item_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
}

type payReq struct {
	Paid *bool `json:"paid" binding:"required"`
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, badRequest("%v", err))
		return
	}
	t, err := h.transactions.Create(c.Request.Context(), actor(c), &models.Transaction{
		CreditorID: req.CreditorID,
		DebtorID:   req.DebtorID,
		ItemID:     req.ItemID,
		Amount:     req.Amount,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusCreated, newTransactionView(t))
}

// Pay handles PATCH /transactions/:id.
func (h *TransactionHandler) Pay(c *gin.Context) {
	var req payReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, badRequest("%v", err))
		return
	}
	t, err := h.transactions.MarkPaid(c.Request.Context(), actor(c), c.Param("id"), *req.Paid)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, newTransactionView(t))
}
