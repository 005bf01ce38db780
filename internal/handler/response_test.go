package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/logic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFailResponseStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		want int
	}{
		{ledger.UnauthorizedAccount(common.Address{}), http.StatusForbidden},
		{artdrop.ErrCampaignNotFound, http.StatusNotFound},
		{campaign.ErrStillOngoing, http.StatusConflict},
		{campaign.ErrZeroContribution, http.StatusBadRequest},
		{ledger.Revert(ledger.KindToken, "ERC20: insufficient"), http.StatusUnprocessableEntity},
		{fmt.Errorf("query: %w", logic.ErrNotFound), http.StatusNotFound},
		{artdrop.ErrUnknownToken, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			FailResponse(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestPagination(t *testing.T) {
	p := pagination(0, 0, 41)
	assert.Equal(t, Pagination{Page: 1, PageSize: 20, Total: 41, TotalPage: 3}, p)

	p = pagination(2, 500, 0)
	assert.Equal(t, int64(0), p.TotalPage)
	assert.Equal(t, 100, p.PageSize)
}

func TestParseHelpers(t *testing.T) {
	_, err := parseAddress("to", "0x123")
	assert.Error(t, err)

	addr, err := parseAddress("to", "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	assert.NoError(t, err)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", addr.Hex())

	_, err = parseUint("amount", "1.5")
	assert.Error(t, err)
	_, err = parseUint("amount", "-1")
	assert.Error(t, err)

	v, err := parseUint("amount", "115792089237316195423570985008687907853269984665640564039457584007913129639935")
	assert.NoError(t, err)
	assert.Equal(t, 256, v.BitLen())
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
}
