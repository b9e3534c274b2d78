package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/settlement-ramp/bridge"
	"github.com/AlexZinkM/settlement-ramp/internal/events"
	"github.com/AlexZinkM/settlement-ramp/internal/handler"
	"github.com/AlexZinkM/settlement-ramp/internal/idempotency"
	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

const wallet = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

type fixedEntropy struct{ f float64 }

func (e fixedEntropy) Hex(n int) string { return "0x" + strings.Repeat("cd", n) }
func (e fixedEntropy) Float64() float64 { return e.f }
func (e fixedEntropy) IntN(n int) int   { return 7 }

type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	store *session.Store
}

func newTestServer(t *testing.T, settle time.Duration, draw float64) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	entropy := fixedEntropy{f: draw}
	stream := events.NewStreamPublisher()
	t.Cleanup(stream.Close)

	store := session.NewStore(time.Hour, session.Options{
		SettleDelay: settle,
		SuccessRate: 0.9,
		Entropy:     entropy,
		Events:      stream,
		Logger:      log,
	})
	b := bridge.New(bridge.DefaultSettings(), entropy, log)
	h := handler.NewBridgeHandler(store, b, idempotency.NewMemoryStore(time.Hour, log), log).WithStream(stream)

	srv := httptest.NewServer(SetupRouter(h))
	t.Cleanup(func() {
		srv.Close()
		store.CloseAll()
	})
	return &testServer{t: t, srv: srv, store: store}
}

func (ts *testServer) do(method, path string, body any, headers map[string]string) *http.Response {
	ts.t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rdr)
	require.NoError(ts.t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (ts *testServer) create() string {
	resp := ts.do(http.MethodPost, "/sessions", nil, nil)
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)
	return decode[model.SessionResponse](ts.t, resp).ID
}

func (ts *testServer) expect(method, path string, body any, status int) *http.Response {
	ts.t.Helper()
	resp := ts.do(method, path, body, nil)
	require.Equal(ts.t, status, resp.StatusCode, "%s %s", method, path)
	return resp
}

// toConfirm walks the wizard to step 4 through the HTTP surface
func (ts *testServer) toConfirm(id string) {
	p := "/sessions/" + id
	ts.expect(http.MethodPut, p+"/fields/amount", model.FieldRequest{Value: "$250"}, http.StatusOK)
	ts.expect(http.MethodPost, p+"/amount/continue", nil, http.StatusOK)
	ts.expect(http.MethodPut, p+"/fields/email", model.FieldRequest{Value: "a@b.com"}, http.StatusOK)
	ts.expect(http.MethodPost, p+"/paypal/connect", nil, http.StatusOK)
	ts.expect(http.MethodPost, p+"/paypal/continue", nil, http.StatusOK)
	ts.expect(http.MethodPut, p+"/fields/walletAddress", model.FieldRequest{Value: wallet}, http.StatusOK)
	resp := ts.expect(http.MethodPost, p+"/wallet/continue", nil, http.StatusOK)
	require.Equal(ts.t, model.StepConfirm, decode[model.SessionResponse](ts.t, resp).Step)
}

func TestCreateAndGetSession(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()

	resp := ts.expect(http.MethodGet, "/sessions/"+id, nil, http.StatusOK)
	v := decode[model.SessionResponse](t, resp)
	assert.Equal(t, id, v.ID)
	assert.Equal(t, model.StepAmount, v.Step)
	assert.Equal(t, model.TransactionStatusIdle, v.Status)
	assert.Len(t, v.Steps, 4)
}

func TestUnknownSessionIs404(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)

	resp := ts.expect(http.MethodGet, "/sessions/nope", nil, http.StatusNotFound)
	assert.Equal(t, model.CodeNotFound, decode[model.ErrorResponse](t, resp).Code)
}

func TestQuote(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)

	resp := ts.expect(http.MethodGet, "/quote?amount=250", nil, http.StatusOK)
	q := decode[model.Quote](t, resp)
	assert.Equal(t, "$2.50", q.Fee)
	assert.Equal(t, "$247.50", q.Receive)
	assert.True(t, q.Valid)
}

func TestAmountContinue_InvalidIs422(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()

	ts.expect(http.MethodPut, "/sessions/"+id+"/fields/amount", model.FieldRequest{Value: "5"}, http.StatusOK)
	resp := ts.expect(http.MethodPost, "/sessions/"+id+"/amount/continue", nil, http.StatusUnprocessableEntity)

	e := decode[model.ErrorResponse](t, resp)
	assert.Equal(t, model.CodeInvalidAmount, e.Code)
	assert.Equal(t, "Please enter an amount between $10.00 and $10,000.00", e.Error)
}

func TestSetField_Errors(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()

	resp := ts.expect(http.MethodPut, "/sessions/"+id+"/fields/password", model.FieldRequest{Value: "x"}, http.StatusUnprocessableEntity)
	assert.Equal(t, model.CodeUnknownField, decode[model.ErrorResponse](t, resp).Code)

	resp = ts.expect(http.MethodPut, "/sessions/"+id+"/fields/email", model.FieldRequest{Value: "a@b.com"}, http.StatusConflict)
	assert.Equal(t, model.CodeInvalidStep, decode[model.ErrorResponse](t, resp).Code)

	req, err := http.NewRequest(http.MethodPut, ts.srv.URL+"/sessions/"+id+"/fields/amount", strings.NewReader("{"))
	require.NoError(t, err)
	bad, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestBack_AtFirstStepIsConflict(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()

	ts.expect(http.MethodPost, "/sessions/"+id+"/back", nil, http.StatusConflict)
}

func TestPayPal_InvalidEmail(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()
	p := "/sessions/" + id

	ts.expect(http.MethodPut, p+"/fields/amount", model.FieldRequest{Value: "250"}, http.StatusOK)
	ts.expect(http.MethodPost, p+"/amount/continue", nil, http.StatusOK)
	ts.expect(http.MethodPut, p+"/fields/email", model.FieldRequest{Value: "bad"}, http.StatusOK)

	resp := ts.expect(http.MethodPost, p+"/paypal/connect", nil, http.StatusUnprocessableEntity)
	assert.Equal(t, "Please enter a valid email address", decode[model.ErrorResponse](t, resp).Error)

	resp = ts.expect(http.MethodPost, p+"/paypal/continue", nil, http.StatusUnprocessableEntity)
	assert.Equal(t, model.CodePayPalNotConnected, decode[model.ErrorResponse](t, resp).Code)
}

func TestWalletConnectionAndNetwork(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()
	p := "/sessions/" + id

	resp := ts.expect(http.MethodPut, p+"/wallet-connection", model.WalletConnectionRequest{Address: wallet, ChainID: 8453}, http.StatusOK)
	v := decode[model.SessionResponse](t, resp)
	require.NotNil(t, v.Network)
	assert.Equal(t, "Base Network", v.Network.Label)
	assert.True(t, v.Wallet.Connected)

	resp = ts.expect(http.MethodDelete, p+"/wallet-connection", nil, http.StatusOK)
	v = decode[model.SessionResponse](t, resp)
	assert.False(t, v.Wallet.Connected)
	assert.Nil(t, v.Network)
}

func TestWallet_ResolveAndUseConnected(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()
	p := "/sessions/" + id

	ts.expect(http.MethodPut, p+"/fields/amount", model.FieldRequest{Value: "250"}, http.StatusOK)
	ts.expect(http.MethodPost, p+"/amount/continue", nil, http.StatusOK)
	ts.expect(http.MethodPut, p+"/fields/email", model.FieldRequest{Value: "a@b.com"}, http.StatusOK)
	ts.expect(http.MethodPost, p+"/paypal/connect", nil, http.StatusOK)
	ts.expect(http.MethodPost, p+"/paypal/continue", nil, http.StatusOK)

	ts.expect(http.MethodPut, p+"/fields/walletAddress", model.FieldRequest{Value: "alice.com"}, http.StatusOK)
	resp := ts.expect(http.MethodPost, p+"/wallet/resolve", nil, http.StatusUnprocessableEntity)
	assert.Equal(t, model.CodeNotENSName, decode[model.ErrorResponse](t, resp).Code)

	ts.expect(http.MethodPut, p+"/fields/walletAddress", model.FieldRequest{Value: "alice.eth"}, http.StatusOK)
	resp = ts.expect(http.MethodPost, p+"/wallet/resolve", nil, http.StatusOK)
	assert.Equal(t, "0x"+strings.Repeat("cd", 20), decode[model.SessionResponse](t, resp).Details.WalletAddress)

	ts.expect(http.MethodPost, p+"/wallet/use-connected", nil, http.StatusUnprocessableEntity)
	ts.expect(http.MethodPut, p+"/wallet-connection", model.WalletConnectionRequest{Address: wallet, ChainID: 1}, http.StatusOK)
	resp = ts.expect(http.MethodPost, p+"/wallet/use-connected", nil, http.StatusOK)
	assert.Equal(t, wallet, decode[model.SessionResponse](t, resp).Details.WalletAddress)
}

func TestConfirm_SettleReceiptReset(t *testing.T) {
	ts := newTestServer(t, 100*time.Millisecond, 0.5)
	id := ts.create()
	p := "/sessions/" + id
	ts.toConfirm(id)

	resp := ts.expect(http.MethodGet, p+"/summary", nil, http.StatusOK)
	sum := decode[bridge.Summary](t, resp)
	assert.Equal(t, "$247.50", sum.Quote.Receive)

	resp = ts.expect(http.MethodPost, p+"/confirm", nil, http.StatusAccepted)
	sub := decode[model.SubmitResponse](t, resp)
	assert.Equal(t, "0x"+strings.Repeat("cd", 32), sub.TxHash)
	assert.Equal(t, "Transaction submitted", sub.Title)

	// the draft is locked while the status screen has taken over
	ts.expect(http.MethodPost, p+"/back", nil, http.StatusConflict)
	ts.expect(http.MethodGet, p+"/receipt", nil, http.StatusConflict)

	require.Eventually(t, func() bool {
		resp := ts.do(http.MethodGet, p+"/status", nil, nil)
		return decode[model.StatusResponse](t, resp).Status == model.TransactionStatusSuccess
	}, time.Second, 5*time.Millisecond)

	resp = ts.expect(http.MethodGet, p+"/receipt", nil, http.StatusOK)
	rc := decode[model.Receipt](t, resp)
	assert.Equal(t, "Completed", rc.Status)
	assert.Equal(t, "$2.50", rc.Fee)
	assert.NotEmpty(t, rc.QR)

	resp = ts.expect(http.MethodPost, p+"/reset", nil, http.StatusOK)
	v := decode[model.SessionResponse](t, resp)
	assert.Equal(t, model.TransactionStatusIdle, v.Status)
	assert.True(t, v.PayPalConnected)

	ts.expect(http.MethodPost, p+"/reset", nil, http.StatusConflict)
}

func TestConfirm_DuplicateIdempotencyKey(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()
	ts.toConfirm(id)
	headers := map[string]string{handler.IdempotencyHeader: "once"}

	first := ts.do(http.MethodPost, "/sessions/"+id+"/confirm", nil, headers)
	require.Equal(t, http.StatusAccepted, first.StatusCode)

	again := ts.do(http.MethodPost, "/sessions/"+id+"/confirm", nil, headers)
	require.Equal(t, http.StatusConflict, again.StatusCode)
	assert.Equal(t, model.CodeDuplicate, decode[model.ErrorResponse](t, again).Code)
}

func TestConfirm_FailedSubmitReleasesKey(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()
	headers := map[string]string{handler.IdempotencyHeader: "retry-me"}

	// wrong step, nothing is sent
	resp := ts.do(http.MethodPost, "/sessions/"+id+"/confirm", nil, headers)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, model.CodeInvalidStep, decode[model.ErrorResponse](t, resp).Code)

	ts.toConfirm(id)
	resp = ts.do(http.MethodPost, "/sessions/"+id+"/confirm", nil, headers)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestEvents_StreamsSettlement(t *testing.T) {
	ts := newTestServer(t, 100*time.Millisecond, 0.5)
	id := ts.create()
	ts.toConfirm(id)

	resp := ts.do(http.MethodGet, "/sessions/"+id+"/events", nil, map[string]string{"Accept": "text/event-stream"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	data := make(chan string, 8)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "data:") {
				data <- strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		close(data)
	}()

	ts.expect(http.MethodPost, "/sessions/"+id+"/confirm", nil, http.StatusAccepted)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case raw, ok := <-data:
			require.True(t, ok, "stream closed early")
			var ev model.StatusEvent
			require.NoError(t, json.Unmarshal([]byte(raw), &ev))
			assert.Equal(t, id, ev.SessionID)
			if ev.To == model.TransactionStatusSuccess {
				assert.Equal(t, model.TransactionStatusProcessing, ev.From)
				return
			}
		case <-timeout:
			t.Fatal("no settlement event streamed")
		}
	}
}

func TestEvents_UnknownSessionIs404(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	ts.expect(http.MethodGet, "/sessions/nope/events", nil, http.StatusNotFound)
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	id := ts.create()

	ts.expect(http.MethodDelete, "/sessions/"+id, nil, http.StatusNoContent)
	ts.expect(http.MethodGet, "/sessions/"+id, nil, http.StatusNotFound)
	ts.expect(http.MethodDelete, "/sessions/"+id, nil, http.StatusNotFound)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, time.Hour, 0.5)
	ts.create()

	resp := ts.expect(http.MethodGet, "/healthz", nil, http.StatusOK)
	h := decode[model.HealthResponse](t, resp)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 1, h.Sessions)
}
