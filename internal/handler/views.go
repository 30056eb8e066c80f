package handler

import (
	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/service"
)

type userView struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	FlatID    string `json:"flat_id,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		FlatID:    u.FlatID,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type flatView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

func newFlatView(f *models.Flat) flatView {
	return flatView{
		ID:        f.ID,
		Name:      f.Name,
		Members:   nonNil(f.Members),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

type itemView struct {
	ID                 string   `json:"id"`
	FlatID             string   `json:"flat_id"`
	Name               string   `json:"name"`
	IsBill             bool     `json:"is_bill"`
	InitialValue       float64  `json:"initial_value"`
	PurchaseDate       string   `json:"purchase_date"`
	YearlyDepreciation float64  `json:"yearly_depreciation"`
	MinimumValue       *float64 `json:"minimum_value"`
	MinimumValuePct    *float64 `json:"minimum_value_pct"`
	Users              []string `json:"users"`
	CreatedAt          int64    `json:"created_at"`
	UpdatedAt          int64    `json:"updated_at"`
}

func newItemView(i *models.Item) itemView {
	return itemView{
		ID:                 i.ID,
		FlatID:             i.FlatID,
		Name:               i.Name,
		IsBill:             i.IsBill,
		InitialValue:       i.InitialValue,
		PurchaseDate:       models.FormatDate(i.PurchaseDate),
		YearlyDepreciation: i.YearlyDepreciation,
		MinimumValue:       i.MinimumValue,
		MinimumValuePct:    i.MinimumValuePct,
		Users:              nonNil(i.Users),
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
	}
}

type transactionView struct {
	ID         string  `json:"id"`
	CreditorID string  `json:"creditor_id"`
	DebtorID   string  `json:"debtor_id"`
	ItemID     string  `json:"item_id"`
	Amount     float64 `json:"amount"`
	Paid       bool    `json:"paid"`
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
}

func newTransactionView(t *models.Transaction) transactionView {
	return transactionView{
		ID:         t.ID,
		CreditorID: t.CreditorID,
		DebtorID:   t.DebtorID,
		ItemID:     t.ItemID,
		Amount:     t.Amount,
		Paid:       t.Paid,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func transactionViews(txns []*models.Transaction) []transactionView {
	out := make([]transactionView, len(txns))
	for i, t := range txns {
		out[i] = newTransactionView(t)
	}
	return out
}

func itemViews(items []*models.Item) []itemView {
	out := make([]itemView, len(items))
	for i, item := range items {
		out[i] = newItemView(item)
	}
	return out
}

type moveView struct {
	User         userView          `json:"user"`
	Flat         flatView          `json:"flat"`
	Items        []itemView        `json:"items"`
	Transactions []transactionView `json:"transactions"`
}

func newMoveView(m *service.MoveResult) moveView {
	return moveView{
		User:         newUserView(m.User),
		Flat:         newFlatView(m.Flat),
		Items:        itemViews(m.Items),
		Transactions: transactionViews(m.Transactions),
	}
}

type memberBalanceView struct {
	UserID     string `json:"user_id"`
	NetBalance string `json:"net_balance"`
	TotalOwed  string `json:"total_owed"`
	TotalOwing string `json:"total_owing"`
}

func newMemberBalanceView(b calculator.MemberBalance) memberBalanceView {
	return memberBalanceView{
		UserID:     b.UserID,
		NetBalance: b.NetBalance.StringFixed(2),
		TotalOwed:  b.TotalOwed.StringFixed(2),
		TotalOwing: b.TotalOwing.StringFixed(2),
	}
}

type debtView struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type counterpartyView struct {
	UserID string `json:"user_id"`
	Net    string `json:"net"`
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
