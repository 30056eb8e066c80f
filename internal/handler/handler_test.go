package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/flatwise/internal/auth"
	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/service"
	"github.com/mmynk/flatwise/internal/settlement"
	"github.com/mmynk/flatwise/internal/storage"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("user u1: %w", storage.ErrNotFound), http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{calculator.ErrInvalidDate, http.StatusBadRequest},
		{fmt.Errorf("%w: name is required", models.ErrInvalidItem), http.StatusBadRequest},
		{badRequest("limit"), http.StatusBadRequest},
		{auth.ErrWeakPassword, http.StatusBadRequest},
		{fmt.Errorf("item i1: %w", settlement.ErrInsufficientUsers), http.StatusConflict},
		{settlement.ErrAlreadyItemUser, http.StatusConflict},
		{settlement.ErrNotItemUser, http.StatusConflict},
		{settlement.ErrAlreadyMember, http.StatusConflict},
		{settlement.ErrNotMember, http.StatusConflict},
		{settlement.ErrWrongFlat, http.StatusConflict},
		{settlement.ErrLastMember, http.StatusConflict},
		{storage.ErrEmailExists, http.StatusConflict},
		{fmt.Errorf("user u1: %w", storage.ErrHasLedger), http.StatusConflict},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrMissingToken, http.StatusUnauthorized},
		{settlement.ErrUnassignedID, http.StatusInternalServerError},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, errors.New("database is locked"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestQueryParsing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	newCtx := func(query string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		return c
	}

	d, err := dateQuery(newCtx("date=2025-03-01"))
	require.NoError(t, err)
	assert.True(t, d.Equal(models.Date(2025, 3, 1)))

	d, err = dateQuery(newCtx(""))
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = dateQuery(newCtx("date=01/03/2025"))
	assert.ErrorIs(t, err, errBadRequest)

	paid, err := paidQuery(newCtx(""))
	require.NoError(t, err)
	require.NotNil(t, paid)
	assert.False(t, *paid)

	paid, err = paidQuery(newCtx("paid=all"))
	require.NoError(t, err)
	assert.Nil(t, paid)

	_, err = paidQuery(newCtx("paid=maybe"))
	assert.ErrorIs(t, err, errBadRequest)

	offset, limit, err := pageQuery(newCtx("offset=5&limit=20"))
	require.NoError(t, err)
	assert.Equal(t, 5, offset)
	assert.Equal(t, 20, limit)

	_, _, err = pageQuery(newCtx("limit=-1"))
	assert.ErrorIs(t, err, errBadRequest)
}

func TestLedgerWorkbook(t *testing.T) {
	ledger := &service.UserLedger{
		User:  &models.User{ID: "u1"},
		Items: []*models.Item{{ID: "i1", Name: "TV"}},
		Credits: []*models.Transaction{
			{ID: "t2", CreditorID: "u1", DebtorID: "u2", ItemID: "i1", Amount: 75, CreatedAt: 200},
		},
		Debts: []*models.Transaction{
			{ID: "t1", CreditorID: "u3", DebtorID: "u1", ItemID: "gone", Amount: 20, Paid: true, CreatedAt: 100},
		},
	}

	rows := ledgerRows(ledger)
	require.Len(t, rows, 2)
	assert.Equal(t, "debt", rows[0].direction)
	assert.Equal(t, "gone", rows[0].item)
	assert.Equal(t, -20.0, rows[0].amount)
	assert.Equal(t, "credit", rows[1].direction)
	assert.Equal(t, "TV", rows[1].item)

	f, err := buildLedgerWorkbook(rows)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	read, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer read.Close()

	assert.Equal(t, []string{ledgerSheet}, read.GetSheetList())
	got, err := read.GetRows(ledgerSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ledgerHeaders, got[0])
	assert.Equal(t, "u3", got[1][2])
	assert.Equal(t, "TV", got[2][3])
	assert.Equal(t, "75.00", got[2][4])
}
