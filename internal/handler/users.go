package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/service"
)

// UserHandler serves profiles and per-user ledger views.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{users: s}
}

type updateUserReq struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=64"`
	LastName  *string `json:"last_name" binding:"omitempty,max=64"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password"`
}

type userLedgerView struct {
	userView
	Items   []itemView        `json:"items"`
	Credits []transactionView `json:"credits"`
	Debts   []transactionView `json:"debts"`
}

type userBalancesView struct {
	memberBalanceView
	Counterparties []counterpartyView `json:"counterparties"`
}

// List handles GET /users.
func (h *UserHandler) List(c *gin.Context) {
	offset, limit, err := pageQuery(c)
	if err != nil {
		Error(c, err)
		return
	}
	users, err := h.users.List(c.Request.Context(), offset, limit)
	if err != nil {
		Error(c, err)
		return
	}
	out := make([]userView, len(users))
	for i, u := range users {
		out[i] = newUserView(u)
	}
	Success(c, http.StatusOK, out)
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, newUserView(user))
}

// Update handles PATCH /users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, badRequest("%v", err))
		return
	}
	user, err := h.users.Update(c.Request.Context(), actor(c), c.Param("id"), service.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, newUserView(user))
}

// Delete handles DELETE /users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"ok": true})
}

// Transactions handles GET /users/:id/transactions.
func (h *UserHandler) Transactions(c *gin.Context) {
	ledger, err := h.users.Transactions(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, userLedgerView{
		userView: newUserView(ledger.User),
		Items:    itemViews(ledger.Items),
		Credits:  transactionViews(ledger.Credits),
		Debts:    transactionViews(ledger.Debts),
	})
}

// Balances handles GET /users/:id/balances.
func (h *UserHandler) Balances(c *gin.Context) {
	balances, err := h.users.Balances(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	out := userBalancesView{
		memberBalanceView: newMemberBalanceView(balances.Summary),
		Counterparties:    make([]counterpartyView, len(balances.Counterparties)),
	}
	for i, cp := range balances.Counterparties {
		out.Counterparties[i] = counterpartyView{UserID: cp.UserID, Net: cp.Net.StringFixed(2)}
	}
	Success(c, http.StatusOK, out)
}

// Debts handles GET /transactions/:id/debts where :id is the user.
func (h *UserHandler) Debts(c *gin.Context) {
	h.ledgerSide(c, h.users.Debts)
}

// Credits handles GET /transactions/:id/credits where :id is the user.
func (h *UserHandler) Credits(c *gin.Context) {
	h.ledgerSide(c, h.users.Credits)
}

type sideFunc func(ctx context.Context, actor *models.User, userID string, paid *bool) ([]*models.Transaction, error)

func (h *UserHandler) ledgerSide(c *gin.Context, list sideFunc) {
	paid, err := paidQuery(c)
	if err != nil {
		Error(c, err)
		return
	}
	txns, err := list(c.Request.Context(), actor(c), c.Param("id"), paid)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, transactionViews(txns))
}
