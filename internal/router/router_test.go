package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/config"
	"github.com/blues/artdrop/internal/handler"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/metrics"
	"github.com/blues/artdrop/internal/router"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	artist  = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	backer1 = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	backer2 = "0x90F79bf6EB2c4f870365E785982E1f101E93b906"
)

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	node   *artdrop.Node
}

func newServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := artdrop.NewNode(ledger.New(ledger.FixedClock(time.Unix(1_700_000_000, 0))), common.HexToAddress(owner))
	require.NoError(t, err)
	return &testServer{
		t:      t,
		node:   node,
		engine: router.Setup(router.Deps{Node: node, Metrics: metrics.New(), Config: cfg}),
	}
}

func (s *testServer) do(method, path, sender string, body interface{}) (int, response) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sender != "" {
		req.Header.Set(handler.SenderHeader, sender)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp response
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func (s *testServer) ok(method, path, sender string, body interface{}) json.RawMessage {
	s.t.Helper()
	code, resp := s.do(method, path, sender, body)
	require.Truef(s.t, code == http.StatusOK || code == http.StatusCreated, "%s %s: %d %s", method, path, code, resp.Message)
	require.True(s.t, resp.Success)
	return resp.Data
}

func decode[T any](t *testing.T, data json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func createCampaign(s *testServer) {
	s.t.Helper()
	data := s.ok(http.MethodPost, "/api/v1/campaigns", owner, handler.CreateCampaignRequest{
		Name:          "Genesis",
		Description:   "First drop",
		Artist:        artist,
		FundsGoal:     "1000",
		Deadline:      "3600",
		InitialSupply: "1000000",
	})
	created := decode[struct {
		CampaignID uint32 `json:"campaignId"`
	}](s.t, data)
	require.Equal(s.t, uint32(1), created.CampaignID)
}

func fund(s *testServer, backer, campaignAddr, amount string) {
	s.t.Helper()
	s.ok(http.MethodPost, "/api/v1/usdc/mint", backer, handler.MintRequest{To: backer, Amount: amount})
	s.ok(http.MethodPost, "/api/v1/usdc/approve", backer, handler.ApproveRequest{Spender: campaignAddr, Amount: amount})
	s.ok(http.MethodPost, "/api/v1/campaigns/1/contribute", backer, handler.ContributeRequest{Amount: amount})
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), s.node.RegistryAddress().Hex())
	assert.NotEmpty(t, w.Header().Get(handler.RequestIDHeader))
}

func TestCreateCampaignErrors(t *testing.T) {
	s := newServer(t, nil)
	body := handler.CreateCampaignRequest{
		Name: "Genesis", Description: "First drop", Artist: artist,
		FundsGoal: "1000", Deadline: "3600", InitialSupply: "1000000",
	}

	code, _ := s.do(http.MethodPost, "/api/v1/campaigns", "", body)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := s.do(http.MethodPost, "/api/v1/campaigns", artist, body)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Contains(t, resp.Message, "OwnableUnauthorizedAccount")

	invalid := body
	invalid.FundsGoal = "-5"
	code, _ = s.do(http.MethodPost, "/api/v1/campaigns", owner, invalid)
	assert.Equal(t, http.StatusBadRequest, code)

	invalid = body
	invalid.Name = ""
	code, resp = s.do(http.MethodPost, "/api/v1/campaigns", owner, invalid)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"kind":"validation"}`, string(resp.Data))

	invalid = body
	invalid.Deadline = "18446744073709551816"
	code, resp = s.do(http.MethodPost, "/api/v1/campaigns", owner, invalid)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "Deadline is too long")

	code, _ = s.do(http.MethodGet, "/api/v1/campaigns/9", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/api/v1/campaigns/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSuccessfulCampaignFlow(t *testing.T) {
	s := newServer(t, nil)
	createCampaign(s)

	campaign := decode[handler.CampaignResponse](t, s.ok(http.MethodGet, "/api/v1/campaigns/1", "", nil))
	assert.Equal(t, "created", campaign.Status)

	// 未开始时不能出资
	code, _ := s.do(http.MethodPost, "/api/v1/campaigns/1/contribute", backer1, handler.ContributeRequest{Amount: "1"})
	assert.Equal(t, http.StatusConflict, code)

	receipt := decode[handler.ReceiptResponse](t, s.ok(http.MethodPost, "/api/v1/campaigns/1/start", owner, nil))
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, "CampaignStarted", receipt.Events[0]["eventName"])

	// 未授权时转账失败
	s.ok(http.MethodPost, "/api/v1/usdc/mint", backer1, handler.MintRequest{To: backer1, Amount: "600"})
	code, resp := s.do(http.MethodPost, "/api/v1/campaigns/1/contribute", backer1, handler.ContributeRequest{Amount: "600"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.JSONEq(t, `{"kind":"token"}`, string(resp.Data))

	fund(s, backer1, campaign.Address, "600")
	fund(s, backer2, campaign.Address, "400")

	contributions := decode[[]handler.ContributionResponse](t, s.ok(http.MethodGet, "/api/v1/campaigns/1/contributions", "", nil))
	require.Len(t, contributions, 2)
	assert.Equal(t, "600", contributions[0].Amount)

	remaining := decode[map[string]string](t, s.ok(http.MethodGet, "/api/v1/campaigns/1/remaining-time", "", nil))
	seconds, err := strconv.Atoi(remaining["remainingTime"])
	require.NoError(t, err)
	assert.InDelta(t, 3590, seconds, 10)

	code, _ = s.do(http.MethodPost, "/api/v1/campaigns/1/withdraw", owner, nil)
	assert.Equal(t, http.StatusConflict, code)

	s.ok(http.MethodPost, "/api/v1/dev/increase-time", "", handler.IncreaseTimeRequest{Seconds: 3601})

	campaign = decode[handler.CampaignResponse](t, s.ok(http.MethodGet, "/api/v1/campaigns/1", "", nil))
	assert.Equal(t, "succeeded", campaign.Status)
	assert.Equal(t, "1000", campaign.FundsRaised)

	s.ok(http.MethodPost, "/api/v1/campaigns/1/token-art", owner, handler.CreateTokenArtRequest{Name: "Genesis", Symbol: "GEN"})
	art := decode[handler.TokenArtResponse](t, s.ok(http.MethodGet, "/api/v1/campaigns/1/token-art", "", nil))
	assert.Equal(t, "GEN", art.Symbol)

	s.ok(http.MethodPost, "/api/v1/campaigns/1/distribute", owner, nil)
	s.ok(http.MethodPost, "/api/v1/campaigns/1/withdraw", owner, nil)

	balance := decode[handler.BalanceResponse](t, s.ok(http.MethodGet, "/api/v1/tokens/"+art.Address+"/balance/"+backer1, "", nil))
	assert.Equal(t, "600000", balance.Formatted)

	usdc := decode[handler.BalanceResponse](t, s.ok(http.MethodGet, "/api/v1/usdc/balance/"+artist, "", nil))
	assert.Equal(t, "1000", usdc.Formatted)
	assert.Equal(t, "1000000000", usdc.Raw)

	// 奖励代币可自由转账
	s.ok(http.MethodPost, "/api/v1/tokens/"+art.Address+"/transfer", backer1, handler.TransferRequest{To: backer2, Amount: "100000"})
	balance = decode[handler.BalanceResponse](t, s.ok(http.MethodGet, "/api/v1/tokens/"+art.Address+"/balance/"+backer2, "", nil))
	assert.Equal(t, "500000", balance.Formatted)

	code, _ = s.do(http.MethodGet, "/api/v1/tokens/"+artist+"/balance/"+backer1, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFailedCampaignRefund(t *testing.T) {
	s := newServer(t, nil)
	createCampaign(s)
	campaign := decode[handler.CampaignResponse](t, s.ok(http.MethodGet, "/api/v1/campaigns/1", "", nil))
	s.ok(http.MethodPost, "/api/v1/campaigns/1/start", owner, nil)
	fund(s, backer1, campaign.Address, "250")

	code, _ := s.do(http.MethodPost, "/api/v1/campaigns/1/withdraw-incomplete", owner, nil)
	assert.Equal(t, http.StatusConflict, code)

	s.ok(http.MethodPost, "/api/v1/dev/increase-time", "", handler.IncreaseTimeRequest{Seconds: 3601})
	s.ok(http.MethodPost, "/api/v1/campaigns/1/withdraw-incomplete", owner, nil)

	usdc := decode[handler.BalanceResponse](t, s.ok(http.MethodGet, "/api/v1/usdc/balance/"+backer1, "", nil))
	assert.Equal(t, "250", usdc.Formatted)

	code, _ = s.do(http.MethodPost, "/api/v1/campaigns/1/withdraw-incomplete", owner, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestChainLogs(t *testing.T) {
	s := newServer(t, nil)
	createCampaign(s)

	events := decode[[]map[string]interface{}](t, s.ok(http.MethodGet, "/api/v1/chain/logs?fromBlock=3", "", nil))
	require.Len(t, events, 1)
	event := events[0]["event"].(map[string]interface{})
	assert.Equal(t, "CampaignCreated", event["eventName"])

	code, _ := s.do(http.MethodGet, "/api/v1/chain/logs?fromBlock=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDevRoutesDisabled(t *testing.T) {
	cfg := &config.Config{Ledger: config.LedgerConfig{DevMode: false}}
	s := newServer(t, cfg)

	code, _ := s.do(http.MethodPost, "/api/v1/dev/increase-time", "", handler.IncreaseTimeRequest{Seconds: 1})
	assert.Equal(t, http.StatusNotFound, code)

	// 没有数据库时不注册投影路由
	code, _ = s.do(http.MethodGet, "/api/v1/index/campaigns", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, nil)
	createCampaign(s)
	s.do(http.MethodPost, "/api/v1/campaigns/1/start", artist, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `artdrop_ledger_transactions_total{method="createCampaign",result="ok"} 1`)
	assert.Contains(t, body, `artdrop_ledger_transactions_total{method="startCampaign",result="reverted"} 1`)
	assert.Contains(t, body, `route="/api/v1/campaigns"`)
}

func TestCORSPreflight(t *testing.T) {
	s := newServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/campaigns", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), handler.SenderHeader)
}
