package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/service"
)

// ItemHandler serves items, their valuation and per-item buy-in/buy-out.
type ItemHandler struct {
	items *service.ItemService
}

func NewItemHandler(s *service.ItemService) *ItemHandler {
	return &ItemHandler{items: s}
}

type createItemReq struct {
	FlatID             string   `json:"flat_id"`
	Name               string   `json:"name" binding:"required,max=128"`
	IsBill             bool     `json:"is_bill"`
	InitialValue       *float64 `json:"initial_value" binding:"required"`
	PurchaseDate       string   `json:"purchase_date" binding:"required"`
	YearlyDepreciation float64  `json:"yearly_depreciation"`
	MinimumValue       *float64 `json:"minimum_value"`
	MinimumValuePct    *float64 `json:"minimum_value_pct"`
}

type updateItemReq struct {
	Name               *string  `json:"name" binding:"omitempty,max=128"`
	IsBill             *bool    `json:"is_bill"`
	InitialValue       *float64 `json:"initial_value"`
	PurchaseDate       *string  `json:"purchase_date"`
	YearlyDepreciation *float64 `json:"yearly_depreciation"`
	MinimumValue       *float64 `json:"minimum_value"`
	MinimumValuePct    *float64 `json:"minimum_value_pct"`
	ClearMinimumValue  bool     `json:"clear_minimum_value"`
	ClearMinimumPct    bool     `json:"clear_minimum_value_pct"`
}

type itemLedgerView struct {
	itemView
	Transactions []transactionView `json:"transactions"`
}

type itemValueView struct {
	ItemID string  `json:"item_id"`
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Share  float64 `json:"share"`
}

type membershipView struct {
	Item         itemView          `json:"item"`
	Transactions []transactionView `json:"transactions"`
}

// Create handles POST /items.
func (h *ItemHandler) Create(c *gin.Context) {
	var req createItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, badRequest("%v", err))
		return
	}
	purchased, err := models.ParseDate(req.PurchaseDate)
	if err != nil {
		Error(c, badRequest("purchase_date: %v", err))
		return
	}

	item, err := h.items.Create(c.Request.Context(), actor(c), &models.Item{
		FlatID:             req.FlatID,
		Name:               req.Name,
		IsBill:             req.IsBill,
		InitialValue:       *req.InitialValue,
		PurchaseDate:       purchased,
		YearlyDepreciation: req.YearlyDepreciation,
		MinimumValue:       req.MinimumValue,
		MinimumValuePct:    req.MinimumValuePct,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusCreated, newItemView(item))
}

// List handles GET /items.
func (h *ItemHandler) List(c *gin.Context) {
	offset, limit, err := pageQuery(c)
	if err != nil {
		Error(c, err)
		return
	}
	items, err := h.items.List(c.Request.Context(), offset, limit)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, itemViews(items))
}

// Get handles GET /items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.items.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, newItemView(item))
}

// Update handles PATCH /items/:id.
func (h *ItemHandler) Update(c *gin.Context) {
	var req updateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, badRequest("%v", err))
		return
	}
	patch := service.ItemPatch{
		Name:               req.Name,
		IsBill:             req.IsBill,
		InitialValue:       req.InitialValue,
		YearlyDepreciation: req.YearlyDepreciation,
		MinimumValue:       req.MinimumValue,
		MinimumValuePct:    req.MinimumValuePct,
		ClearMinimumValue:  req.ClearMinimumValue,
		ClearMinimumPct:    req.ClearMinimumPct,
	}
	if req.PurchaseDate != nil {
		d, err := models.ParseDate(*req.PurchaseDate)
		if err != nil {
			Error(c, badRequest("purchase_date: %v", err))
			return
		}
		patch.PurchaseDate = &d
	}

	item, err := h.items.Update(c.Request.Context(), actor(c), c.Param("id"), patch)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, newItemView(item))
}

// Delete handles DELETE /items/:id.
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.items.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"ok": true})
}

// Transactions handles GET /items/:id/transactions.
func (h *ItemHandler) Transactions(c *gin.Context) {
	item, txns, err := h.items.Transactions(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, itemLedgerView{itemView: newItemView(item), Transactions: transactionViews(txns)})
}

// Value handles GET /items/:id/value?date=.
func (h *ItemHandler) Value(c *gin.Context) {
	date, err := dateQuery(c)
	if err != nil {
		Error(c, err)
		return
	}
	v, err := h.items.Value(c.Request.Context(), actor(c), c.Param("id"), date)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, itemValueView{
		ItemID: v.ItemID,
		Date:   models.FormatDate(v.Date),
		Value:  v.Value,
		Share:  v.Share,
	})
}

// AddUser handles PATCH /items/:id/add/:user_id?date=.
func (h *ItemHandler) AddUser(c *gin.Context) {
	h.membership(c, h.items.AddUser)
}

// RemoveUser handles PATCH /items/:id/remove/:user_id?date=.
func (h *ItemHandler) RemoveUser(c *gin.Context) {
	h.membership(c, h.items.RemoveUser)
}

type membershipFunc func(ctx context.Context, actor *models.User, itemID, userID string, date time.Time) (*models.Item, []*models.Transaction, error)

func (h *ItemHandler) membership(c *gin.Context, change membershipFunc) {
	date, err := dateQuery(c)
	if err != nil {
		Error(c, err)
		return
	}
	item, txns, err := change(c.Request.Context(), actor(c), c.Param("id"), c.Param("user_id"), date)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, membershipView{Item: newItemView(item), Transactions: transactionViews(txns)})
}
