package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AlexZinkM/settlement-ramp/bridge"
	"github.com/AlexZinkM/settlement-ramp/internal/events"
	"github.com/AlexZinkM/settlement-ramp/internal/idempotency"
	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

// IdempotencyHeader lets a client retry a submit without sending the transaction twice
const IdempotencyHeader = "Idempotency-Key"

// BridgeHandler serves the wizard operations over HTTP
type BridgeHandler struct {
	store   *session.Store
	bridge  *bridge.Bridge
	idem    idempotency.Store
	stream  *events.StreamPublisher
	log     *slog.Logger
	tracer  trace.Tracer
	started time.Time
}

// NewBridgeHandler creates a new BridgeHandler
func NewBridgeHandler(store *session.Store, b *bridge.Bridge, idem idempotency.Store, log *slog.Logger) *BridgeHandler {
	return &BridgeHandler{
		store:   store,
		bridge:  b,
		idem:    idem,
		log:     log,
		tracer:  otel.Tracer("settlement-ramp-http"),
		started: time.Now(),
	}
}

// WithStream enables GET /sessions/{id}/events
func (h *BridgeHandler) WithStream(stream *events.StreamPublisher) *BridgeHandler {
	h.stream = stream
	return h
}

// CreateSession handles POST /sessions
// @Summary      Start a wizard session
// @Description  Creates a session on step 1 with an empty draft and idle transaction
// @Tags         sessions
// @Produce      json
// @Success      201  {object}  model.SessionResponse
// @Router       /sessions [post]
func (h *BridgeHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "CreateSession")
	defer span.End()

	s := h.store.Create()
	span.SetAttributes(attribute.String("session.id", s.ID))
	writeJSON(w, http.StatusCreated, h.bridge.View(s))
}

// GetSession handles GET /sessions/{id}
// @Summary      Get session
// @Description  Returns step, draft, quote, connection flags and transaction status
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /sessions/{id} [get]
func (h *BridgeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "GetSession", func(_ context.Context, s *session.Session) (int, any, error) {
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// DeleteSession handles DELETE /sessions/{id}
// @Summary      Close session
// @Description  Discards the draft and cancels a pending settlement
// @Tags         sessions
// @Param        id   path      string  true  "Session ID"
// @Success      204
// @Failure      404  {object}  model.ErrorResponse
// @Router       /sessions/{id} [delete]
func (h *BridgeHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "DeleteSession")
	defer span.End()

	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		h.fail(w, span, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetField handles PUT /sessions/{id}/fields/{name}
// @Summary      Edit a draft field
// @Description  Sets amount, email or walletAddress from the step that owns it. The amount keeps digits and dots only.
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Session ID"
// @Param        name     path      string              true  "amount, email or walletAddress"
// @Param        request  body      model.FieldRequest  true  "Field value"
// @Success      200      {object}  model.SessionResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Router       /sessions/{id}/fields/{name} [put]
func (h *BridgeHandler) SetField(w http.ResponseWriter, r *http.Request) {
	var req model.FieldRequest
	if !decodeBody(w, r, &req) {
		return
	}
	name := chi.URLParam(r, "name")
	h.withSession(w, r, "SetField", func(_ context.Context, s *session.Session) (int, any, error) {
		if err := h.bridge.SetField(s, name, req.Value); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// Back handles POST /sessions/{id}/back
// @Summary      Previous step
// @Description  Goes back one step; later-step data is kept
// @Tags         wizard
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /sessions/{id}/back [post]
func (h *BridgeHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "Back", func(_ context.Context, s *session.Session) (int, any, error) {
		if err := s.Retreat(); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// Quote handles GET /quote
// @Summary      Fee quote
// @Description  Computes fee and received USDC for an amount without a session
// @Tags         amount
// @Produce      json
// @Param        amount  query     string  false  "Amount in USD"
// @Success      200     {object}  model.Quote
// @Router       /quote [get]
func (h *BridgeHandler) Quote(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "Quote")
	defer span.End()

	writeJSON(w, http.StatusOK, h.bridge.Quote(r.URL.Query().Get("amount")))
}

// ContinueFromAmount handles POST /sessions/{id}/amount/continue
// @Summary      Continue from amount
// @Description  Advances to the PayPal step when the amount is within limits
// @Tags         amount
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /sessions/{id}/amount/continue [post]
func (h *BridgeHandler) ContinueFromAmount(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "ContinueFromAmount", func(_ context.Context, s *session.Session) (int, any, error) {
		if err := h.bridge.ContinueFromAmount(s); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// ConnectPayPal handles POST /sessions/{id}/paypal/connect
// @Summary      Connect PayPal
// @Description  Validates the drafted email and marks PayPal connected after a simulated delay
// @Tags         paypal
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /sessions/{id}/paypal/connect [post]
func (h *BridgeHandler) ConnectPayPal(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "ConnectPayPal", func(ctx context.Context, s *session.Session) (int, any, error) {
		if err := h.bridge.ConnectPayPal(ctx, s); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// DisconnectPayPal handles POST /sessions/{id}/paypal/disconnect
// @Summary      Disconnect PayPal
// @Tags         paypal
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /sessions/{id}/paypal/disconnect [post]
func (h *BridgeHandler) DisconnectPayPal(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "DisconnectPayPal", func(_ context.Context, s *session.Session) (int, any, error) {
		if err := h.bridge.DisconnectPayPal(s); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// ContinueFromPayPal handles POST /sessions/{id}/paypal/continue
// @Summary      Continue from PayPal
// @Description  Advances to the wallet step once PayPal is connected
// @Tags         paypal
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /sessions/{id}/paypal/continue [post]
func (h *BridgeHandler) ContinueFromPayPal(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "ContinueFromPayPal", func(_ context.Context, s *session.Session) (int, any, error) {
		if err := h.bridge.ContinueFromPayPal(s); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// ReportWalletConnection handles PUT /sessions/{id}/wallet-connection
// @Summary      Report wallet connection
// @Description  Records the account and chain reported by the browser wallet extension
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Session ID"
// @Param        request  body      model.WalletConnectionRequest  true  "Connected account"
// @Success      200      {object}  model.SessionResponse
// @Failure      422      {object}  model.ErrorResponse
// @Router       /sessions/{id}/wallet-connection [put]
func (h *BridgeHandler) ReportWalletConnection(w http.ResponseWriter, r *http.Request) {
	var req model.WalletConnectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.withSession(w, r, "ReportWalletConnection", func(_ context.Context, s *session.Session) (int, any, error) {
		if err := h.bridge.ReportWalletConnection(s, req); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// ClearWalletConnection handles DELETE /sessions/{id}/wallet-connection
// @Summary      Wallet disconnected
// @Tags         wallet
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Router       /sessions/{id}/wallet-connection [delete]
func (h *BridgeHandler) ClearWalletConnection(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "ClearWalletConnection", func(_ context.Context, s *session.Session) (int, any, error) {
		if err := h.bridge.ClearWalletConnection(s); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// ResolveENS handles POST /sessions/{id}/wallet/resolve
// @Summary      Resolve ENS name
// @Description  Replaces a drafted .eth name with an address after a simulated lookup
// @Tags         wallet
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /sessions/{id}/wallet/resolve [post]
func (h *BridgeHandler) ResolveENS(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "ResolveENS", func(ctx context.Context, s *session.Session) (int, any, error) {
		if _, err := h.bridge.ResolveENS(ctx, s); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// UseConnectedWallet handles POST /sessions/{id}/wallet/use-connected
// @Summary      Use connected wallet
// @Description  Copies the connected wallet address into the draft
// @Tags         wallet
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /sessions/{id}/wallet/use-connected [post]
func (h *BridgeHandler) UseConnectedWallet(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "UseConnectedWallet", func(_ context.Context, s *session.Session) (int, any, error) {
		if _, err := h.bridge.UseConnectedWallet(s); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// ContinueFromWallet handles POST /sessions/{id}/wallet/continue
// @Summary      Continue from wallet
// @Description  Advances to confirmation when the address is a valid Ethereum address
// @Tags         wallet
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /sessions/{id}/wallet/continue [post]
func (h *BridgeHandler) ContinueFromWallet(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "ContinueFromWallet", func(_ context.Context, s *session.Session) (int, any, error) {
		if err := h.bridge.ContinueFromWallet(s); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// Summary handles GET /sessions/{id}/summary
// @Summary      Confirmation summary
// @Description  Amount, fee, received USDC, wallet and email under review
// @Tags         confirm
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  bridge.Summary
// @Router       /sessions/{id}/summary [get]
func (h *BridgeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "Summary", func(_ context.Context, s *session.Session) (int, any, error) {
		return http.StatusOK, h.bridge.Summary(s), nil
	})
}

// Confirm handles POST /sessions/{id}/confirm
// @Summary      Submit transaction
// @Description  Simulates sending the transaction and starts processing. A repeated Idempotency-Key is rejected.
// @Tags         confirm
// @Produce      json
// @Param        id               path      string  true   "Session ID"
// @Param        Idempotency-Key  header    string  false  "Client generated key"
// @Success      202              {object}  model.SubmitResponse
// @Failure      409              {object}  model.ErrorResponse
// @Failure      422              {object}  model.ErrorResponse
// @Router       /sessions/{id}/confirm [post]
func (h *BridgeHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	clientKey := r.Header.Get(IdempotencyHeader)
	h.withSession(w, r, "Confirm", func(ctx context.Context, s *session.Session) (int, any, error) {
		var key string
		if clientKey != "" {
			key = idempotency.Key("confirm", s.ID, clientKey)
			seen, err := h.idem.Seen(ctx, key)
			if err != nil {
				return 0, nil, err
			}
			if seen {
				return 0, nil, errDuplicate
			}
		}

		resp, err := h.bridge.Submit(ctx, s)
		if err != nil {
			if key != "" {
				// nothing was sent, the client may retry with the same key
				if relErr := h.idem.Release(context.WithoutCancel(ctx), key); relErr != nil {
					h.log.Error("idempotency release failed", "session_id", s.ID, "err", relErr)
				}
			}
			return 0, nil, err
		}
		return http.StatusAccepted, resp, nil
	})
}

// Status handles GET /sessions/{id}/status
// @Summary      Transaction status
// @Description  Status, hash, explorer link and the message for the status screen
// @Tags         status
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.StatusResponse
// @Router       /sessions/{id}/status [get]
func (h *BridgeHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "Status", func(_ context.Context, s *session.Session) (int, any, error) {
		return http.StatusOK, h.bridge.Status(s), nil
	})
}

// Events handles GET /sessions/{id}/events
// @Summary      Status event stream
// @Description  Server-sent events, one "status" event per transaction status transition
// @Tags         status
// @Produce      text/event-stream
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.StatusEvent
// @Failure      404  {object}  model.ErrorResponse
// @Router       /sessions/{id}/events [get]
func (h *BridgeHandler) Events(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "Events")
	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	if h.stream == nil {
		span.End()
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "event stream disabled", Code: model.CodeNotFound})
		return
	}
	if _, err := h.store.Get(id); err != nil {
		h.fail(w, span, err)
		span.End()
		return
	}
	span.End()

	h.stream.Handler(id).ServeHTTP(w, r)
}

// Reset handles POST /sessions/{id}/reset
// @Summary      New transaction / try again
// @Description  Returns a settled transaction to idle. Connections, step and draft are kept.
// @Tags         status
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.SessionResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /sessions/{id}/reset [post]
func (h *BridgeHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "Reset", func(_ context.Context, s *session.Session) (int, any, error) {
		if err := h.bridge.Reset(s); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, h.bridge.View(s), nil
	})
}

// Receipt handles GET /sessions/{id}/receipt
// @Summary      Transaction receipt
// @Description  Receipt with a QR code of the explorer link, available after settlement
// @Tags         status
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  model.Receipt
// @Failure      409  {object}  model.ErrorResponse
// @Router       /sessions/{id}/receipt [get]
func (h *BridgeHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, "Receipt", func(_ context.Context, s *session.Session) (int, any, error) {
		receipt, err := h.bridge.Receipt(s)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, receipt, nil
	})
}

// Health handles GET /healthz
// @Summary      Liveness
// @Tags         health
// @Produce      json
// @Success      200  {object}  model.HealthResponse
// @Router       /healthz [get]
func (h *BridgeHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:        "ok",
		Sessions:      h.store.Len(),
		UptimeSeconds: int(time.Since(h.started).Seconds()),
	})
}

// withSession resolves {id}, runs op inside a span and writes its result or error.
func (h *BridgeHandler) withSession(w http.ResponseWriter, r *http.Request, name string,
	op func(ctx context.Context, s *session.Session) (int, any, error)) {
	ctx, span := h.tracer.Start(r.Context(), name)
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	s, err := h.store.Get(id)
	if err != nil {
		h.fail(w, span, err)
		return
	}

	status, body, err := op(ctx, s)
	if err != nil {
		h.fail(w, span, err)
		return
	}
	writeJSON(w, status, body)
}

func (h *BridgeHandler) fail(w http.ResponseWriter, span trace.Span, err error) {
	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid JSON body", Code: model.CodeBadRequest})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var errDuplicate = errors.New("idempotency key already used for this session")
