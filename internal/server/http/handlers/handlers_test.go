package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/server/http/dto"
	"github.com/polkiloo/digimarket/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/digimarket/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return performRouted(t, method, path, path, handler, setup, body, headers)
}

func performRouted(t *testing.T, method, pattern, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, pattern, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUserID(c); got != 0 {
		t.Fatalf("expected 0 when not set, got %d", got)
	}

	c.Set(middleware.UserIDContextKey, int64(42))
	if got := CurrentUserID(c); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	body, _ := json.Marshal(dto.AuthRequest{Login: "user", Password: "pass"})
	resp := performRequest(t, http.MethodPost, "/register", NewAuthHandler(testhelpers.AuthFacadeStub{}).Register, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if resp.Header().Get("Authorization") == "" {
		t.Fatalf("expected auth header to be set")
	}
}

func TestAuthHandlerRegisterScenarioMatchesE2E(t *testing.T) {
	login := testhelpers.RandomASCIIString(7, 14)
	password := testhelpers.RandomASCIIString(16, 32)
	body, _ := json.Marshal(dto.AuthRequest{Login: login, Password: password})
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{RegisterFn: func(ctx context.Context, gotLogin, gotPassword string, role model.Role) (string, error) {
		if gotLogin != login || gotPassword != password {
			t.Fatalf("unexpected credentials passed to facade: %q %q", gotLogin, gotPassword)
		}
		return "session-token", nil
	}})
	resp := performRequest(t, http.MethodPost, "/register", handler.Register, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	authHeader := resp.Header().Get("Authorization")
	if authHeader != "Bearer session-token" {
		t.Fatalf("unexpected authorization header %q", authHeader)
	}
	var session dto.AuthResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Token != "session-token" || session.TokenType != "Bearer" {
		t.Fatalf("unexpected session body %+v", session)
	}
	result := resp.Result()
	t.Cleanup(func() {
		_ = result.Body.Close()
	})
	cookies := result.Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected auth cookie to be set")
	}
	foundCookie := false
	for _, cookie := range cookies {
		if cookie.Name == "digimarket_token" {
			if cookie.Value != "session-token" {
				t.Fatalf("unexpected token stored in cookie: %q", cookie.Value)
			}
			foundCookie = true
			break
		}
	}
	if !foundCookie {
		t.Fatal("expected auth cookie named digimarket_token")
	}
}

func TestAuthHandlerRegisterFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "invalid credentials", body: []byte(`{"login":"","password":""}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string, model.Role) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		}}, status: http.StatusBadRequest},
		{name: "unknown role", body: []byte(`{"login":"a","password":"b","role":"root"}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string, model.Role) (string, error) {
			return "", fmt.Errorf("%w: unknown role", domainErrors.ErrInvalidInput)
		}}, status: http.StatusBadRequest},
		{name: "already exists", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string, model.Role) (string, error) {
			return "", domainErrors.ErrAlreadyExists
		}}, status: http.StatusConflict},
		{name: "internal", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string, model.Role) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/register", NewAuthHandler(tt.facade).Register, nil, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	body, _ := json.Marshal(dto.AuthRequest{Login: "user", Password: "pass"})
	resp := performRequest(t, http.MethodPost, "/login", NewAuthHandler(testhelpers.AuthFacadeStub{}).Login, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "invalid", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		}}, status: http.StatusUnauthorized},
		{name: "internal", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/login", NewAuthHandler(tt.facade).Login, nil, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerRegisterPassesRole(t *testing.T) {
	var got model.Role
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{RegisterFn: func(_ context.Context, _, _ string, role model.Role) (string, error) {
		got = role
		return "t", nil
	}})
	body, _ := json.Marshal(dto.AuthRequest{Login: "shop", Password: "pw", Role: "seller"})
	resp := performRequest(t, http.MethodPost, "/register", handler.Register, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got != model.RoleSeller {
		t.Fatalf("expected seller role, got %q", got)
	}
}

func withActor(actor model.Actor) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, actor.ID)
		c.Set(middleware.ActorContextKey, actor)
	}
}

var (
	buyer  = model.Actor{ID: 1, Role: model.RoleBuyer, Status: model.UserStatusActive}
	seller = model.Actor{ID: 2, Role: model.RoleSeller, Status: model.UserStatusActive}
	admin  = model.Actor{ID: 3, Role: model.RoleAdmin, Status: model.UserStatusActive}
	jsonCT = map[string]string{"Content-Type": "application/json"}
)

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", resp.Body.String(), err)
	}
	return body
}

func TestCurrentActor(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(middleware.UserIDContextKey, int64(5))
	if got := CurrentActor(c); got.ID != 5 || got.Role != "" {
		t.Fatalf("expected fallback actor with id only, got %+v", got)
	}

	c.Set(middleware.ActorContextKey, seller)
	if got := CurrentActor(c); got != seller {
		t.Fatalf("expected seller actor, got %+v", got)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domainErrors.Denied(domainErrors.ReasonNotOwner), http.StatusForbidden},
		{domainErrors.Denied(domainErrors.ReasonAccountInactive), http.StatusForbidden},
		{domainErrors.ErrNotFound, http.StatusNotFound},
		{domainErrors.ErrInvalidTransition, http.StatusConflict},
		{domainErrors.ErrAlreadyInState, http.StatusConflict},
		{domainErrors.ErrInsufficientStock, http.StatusConflict},
		{domainErrors.ErrOutOfStock, http.StatusConflict},
		{domainErrors.ErrOfferUnavailable, http.StatusConflict},
		{domainErrors.ErrInvalidInput, http.StatusBadRequest},
		{domainErrors.ErrConflict, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(fmt.Errorf("op: %w", tc.err)); got != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, got)
		}
	}
}

func TestRespondErrorIncludesDenialReason(t *testing.T) {
	facade := testhelpers.OfferFacadeStub{TransitionFn: func(context.Context, model.Actor, model.Action, int64) (*model.Offer, error) {
		return nil, domainErrors.Denied(domainErrors.ReasonNotOwner)
	}}
	handler := NewOfferHandler(facade).Transition(model.ActionOfferArchive)
	resp := performRouted(t, http.MethodPost, "/offers/:id/archive", "/offers/7/archive", handler, withActor(seller), nil, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
	body := decodeError(t, resp)
	if body.Error != "FORBIDDEN" || body.Reason != "NOT_OWNER" {
		t.Fatalf("unexpected error body %+v", body)
	}

	facade.TransitionFn = func(context.Context, model.Actor, model.Action, int64) (*model.Offer, error) {
		return nil, fmt.Errorf("archive: %w", domainErrors.ErrInvalidTransition)
	}
	handler = NewOfferHandler(facade).Transition(model.ActionOfferArchive)
	resp = performRouted(t, http.MethodPost, "/offers/:id/archive", "/offers/7/archive", handler, withActor(seller), nil, nil)
	body = decodeError(t, resp)
	if resp.Code != http.StatusConflict || body.Error != "INVALID_TRANSITION" || body.Reason != "" {
		t.Fatalf("unexpected response %d %+v", resp.Code, body)
	}
}

func TestOfferHandlerCreate(t *testing.T) {
	var gotDraft model.OfferDraft
	var gotActor model.Actor
	facade := testhelpers.OfferFacadeStub{CreateFn: func(_ context.Context, actor model.Actor, draft model.OfferDraft) (*model.Offer, error) {
		gotActor, gotDraft = actor, draft
		offer := testhelpers.SampleOffer(11)
		offer.Price = draft.Price
		return offer, nil
	}}
	body := []byte(`{"category_id":4,"title":"Game key","price":"19.99","quantity":5}`)
	resp := performRequest(t, http.MethodPost, "/offers", NewOfferHandler(facade).Create, withActor(seller), body, jsonCT)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	if gotActor != seller {
		t.Fatalf("expected seller actor, got %+v", gotActor)
	}
	if gotDraft != (model.OfferDraft{CategoryID: 4, Title: "Game key", Price: 1999, Quantity: 5}) {
		t.Fatalf("unexpected draft %+v", gotDraft)
	}
	var decoded dto.OfferResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != 11 || decoded.Price != "19.99" || decoded.Status != "active" {
		t.Fatalf("unexpected response %+v", decoded)
	}
}

func TestOfferHandlerCreateFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		facade testhelpers.OfferFacadeStub
		status int
		code   string
	}{
		{name: "bad json", body: []byte("{"), status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "bad price", body: []byte(`{"title":"x","price":"1.999","quantity":1}`), status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "buyer denied", body: []byte(`{"title":"x","price":"1","quantity":1}`), facade: testhelpers.OfferFacadeStub{CreateFn: func(context.Context, model.Actor, model.OfferDraft) (*model.Offer, error) {
			return nil, domainErrors.Denied(domainErrors.ReasonInsufficientRole)
		}}, status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "internal", body: []byte(`{"title":"x","price":"1","quantity":1}`), facade: testhelpers.OfferFacadeStub{CreateFn: func(context.Context, model.Actor, model.OfferDraft) (*model.Offer, error) {
			return nil, errors.New("boom")
		}}, status: http.StatusInternalServerError, code: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/offers", NewOfferHandler(tt.facade).Create, withActor(buyer), tt.body, jsonCT)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
			if body := decodeError(t, resp); body.Error != tt.code {
				t.Fatalf("expected code %s, got %+v", tt.code, body)
			}
		})
	}
}

func TestOfferHandlerGet(t *testing.T) {
	handler := NewOfferHandler(testhelpers.OfferFacadeStub{}).Get
	resp := performRouted(t, http.MethodGet, "/offers/:id", "/offers/9", handler, withActor(buyer), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.OfferResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != 9 || decoded.Price != "12.50" {
		t.Fatalf("unexpected response %+v", decoded)
	}

	for _, path := range []string{"/offers/abc", "/offers/0", "/offers/-3"} {
		resp = performRouted(t, http.MethodGet, "/offers/:id", path, handler, withActor(buyer), nil, nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", path, resp.Code)
		}
	}

	missing := NewOfferHandler(testhelpers.OfferFacadeStub{GetFn: func(context.Context, model.Actor, int64) (*model.Offer, error) {
		return nil, domainErrors.ErrNotFound
	}}).Get
	resp = performRouted(t, http.MethodGet, "/offers/:id", "/offers/9", missing, withActor(buyer), nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestOfferHandlerEdit(t *testing.T) {
	var gotPatch model.OfferPatch
	facade := testhelpers.OfferFacadeStub{EditFn: func(_ context.Context, _ model.Actor, id int64, patch model.OfferPatch) (*model.Offer, error) {
		gotPatch = patch
		return testhelpers.SampleOffer(id), nil
	}}
	handler := NewOfferHandler(facade).Edit

	resp := performRouted(t, http.MethodPatch, "/offers/:id", "/offers/4", handler, withActor(seller), []byte(`{"title":"New","price":"5.5"}`), jsonCT)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotPatch.Title == nil || *gotPatch.Title != "New" || gotPatch.Price == nil || *gotPatch.Price != 550 || gotPatch.CategoryID != nil {
		t.Fatalf("unexpected patch %+v", gotPatch)
	}

	resp = performRouted(t, http.MethodPatch, "/offers/:id", "/offers/4", handler, withActor(seller), []byte(`{"price":"oops"}`), jsonCT)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestOfferHandlerRestock(t *testing.T) {
	var gotQty int64
	facade := testhelpers.OfferFacadeStub{RestockFn: func(_ context.Context, _ model.Actor, id, qty int64) (*model.Offer, error) {
		gotQty = qty
		offer := testhelpers.SampleOffer(id)
		offer.Quantity += qty
		return offer, nil
	}}
	resp := performRouted(t, http.MethodPost, "/offers/:id/restock", "/offers/4/restock", NewOfferHandler(facade).Restock, withActor(seller), []byte(`{"quantity":7}`), jsonCT)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotQty != 7 {
		t.Fatalf("expected quantity 7, got %d", gotQty)
	}
}

func TestOfferHandlerTransitionPassesAction(t *testing.T) {
	actions := []model.Action{
		model.ActionOfferActivate,
		model.ActionOfferDeactivate,
		model.ActionOfferArchive,
		model.ActionOfferDelete,
		model.ActionOfferModerate,
		model.ActionOfferUnmoderate,
	}
	for _, action := range actions {
		var got model.Action
		facade := testhelpers.OfferFacadeStub{TransitionFn: func(_ context.Context, _ model.Actor, a model.Action, id int64) (*model.Offer, error) {
			got = a
			return testhelpers.SampleOffer(id), nil
		}}
		resp := performRouted(t, http.MethodPost, "/offers/:id", "/offers/2", NewOfferHandler(facade).Transition(action), withActor(admin), nil, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", action, resp.Code)
		}
		if got != action {
			t.Fatalf("expected action %s, got %s", action, got)
		}
	}
}

func TestOfferHandlerHidesRememberedStatus(t *testing.T) {
	facade := testhelpers.OfferFacadeStub{TransitionFn: func(_ context.Context, _ model.Actor, _ model.Action, id int64) (*model.Offer, error) {
		offer := testhelpers.SampleOffer(id)
		previous := offer.Status
		offer.Status = model.OfferStatusModerated
		offer.PreviousStatus = &previous
		return offer, nil
	}}
	resp := performRouted(t, http.MethodPost, "/offers/:id", "/offers/2", NewOfferHandler(facade).Transition(model.ActionOfferModerate), withActor(admin), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var fields map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &fields); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if fields["status"] != "moderated" {
		t.Fatalf("unexpected status %v", fields["status"])
	}
	if _, ok := fields["previous_status"]; ok {
		t.Fatalf("moderated offer must not expose its remembered status: %s", resp.Body.String())
	}
}

func TestOrderHandlerPlace(t *testing.T) {
	var gotLines []model.LineItem
	facade := testhelpers.OrderFacadeStub{PlaceFn: func(_ context.Context, _ model.Actor, lines []model.LineItem) (*model.Order, error) {
		gotLines = lines
		return testhelpers.SampleOrder(21), nil
	}}
	body := []byte(`{"items":[{"offer_id":1,"quantity":2},{"offer_id":3,"quantity":1}]}`)
	resp := performRequest(t, http.MethodPost, "/orders", NewOrderHandler(facade).Place, withActor(buyer), body, jsonCT)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	if len(gotLines) != 2 || gotLines[0] != (model.LineItem{OfferID: 1, Quantity: 2}) || gotLines[1] != (model.LineItem{OfferID: 3, Quantity: 1}) {
		t.Fatalf("unexpected lines %+v", gotLines)
	}
	var decoded dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != 21 || decoded.TotalAmount != "25.00" || decoded.Status != "pending_payment" {
		t.Fatalf("unexpected response %+v", decoded)
	}
	if len(decoded.Items) != 1 || decoded.Items[0].PriceAtPurchase != "12.50" {
		t.Fatalf("unexpected items %+v", decoded.Items)
	}
}

func TestOrderHandlerPlaceFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		err    error
		status int
		code   string
	}{
		{name: "bad json", body: []byte("["), status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "out of stock", body: []byte(`{"items":[{"offer_id":1,"quantity":1}]}`), err: domainErrors.ErrOutOfStock, status: http.StatusConflict, code: "OUT_OF_STOCK"},
		{name: "insufficient", body: []byte(`{"items":[{"offer_id":1,"quantity":9}]}`), err: domainErrors.ErrInsufficientStock, status: http.StatusConflict, code: "INSUFFICIENT_STOCK"},
		{name: "unavailable", body: []byte(`{"items":[{"offer_id":1,"quantity":1}]}`), err: domainErrors.ErrOfferUnavailable, status: http.StatusConflict, code: "OFFER_UNAVAILABLE"},
		{name: "inactive account", body: []byte(`{"items":[{"offer_id":1,"quantity":1}]}`), err: domainErrors.Denied(domainErrors.ReasonAccountInactive), status: http.StatusForbidden, code: "ACCOUNT_INACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := testhelpers.OrderFacadeStub{PlaceFn: func(context.Context, model.Actor, []model.LineItem) (*model.Order, error) {
				return nil, tt.err
			}}
			resp := performRequest(t, http.MethodPost, "/orders", NewOrderHandler(facade).Place, withActor(buyer), tt.body, jsonCT)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
			if body := decodeError(t, resp); body.Error != tt.code {
				t.Fatalf("expected code %s, got %+v", tt.code, body)
			}
		})
	}
}

func TestOrderHandlerList(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{}).List
	resp := performRequest(t, http.MethodGet, "/orders", handler, withActor(buyer), nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}

	orders := []model.Order{*testhelpers.SampleOrder(1), *testhelpers.SampleOrder(2)}
	handler = NewOrderHandler(testhelpers.OrderFacadeStub{ListFn: func(context.Context, model.Actor) ([]model.Order, error) {
		return orders, nil
	}}).List
	resp = performRequest(t, http.MethodGet, "/orders", handler, withActor(buyer), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded []dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded) != 2 || decoded[1].ID != 2 {
		t.Fatalf("unexpected orders %+v", decoded)
	}
}

func TestOrderHandlerGetAndTransition(t *testing.T) {
	resp := performRouted(t, http.MethodGet, "/orders/:id", "/orders/8", NewOrderHandler(testhelpers.OrderFacadeStub{}).Get, withActor(buyer), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var got model.Action
	facade := testhelpers.OrderFacadeStub{TransitionFn: func(_ context.Context, _ model.Actor, action model.Action, id int64) (*model.Order, error) {
		got = action
		if action == model.ActionOrderDeliver {
			return nil, domainErrors.ErrInvalidTransition
		}
		order := testhelpers.SampleOrder(id)
		order.Status = model.OrderStatusShipped
		return order, nil
	}}
	handler := NewOrderHandler(facade)

	resp = performRouted(t, http.MethodPost, "/orders/:id/ship", "/orders/8/ship", handler.Transition(model.ActionOrderShip), withActor(seller), nil, nil)
	if resp.Code != http.StatusOK || got != model.ActionOrderShip {
		t.Fatalf("unexpected ship result %d %s", resp.Code, got)
	}

	resp = performRouted(t, http.MethodPost, "/orders/:id/deliver", "/orders/8/deliver", handler.Transition(model.ActionOrderDeliver), withActor(buyer), nil, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestAccountHandler(t *testing.T) {
	var blocked, unblocked int64
	var deleted model.Actor
	facade := testhelpers.AccountFacadeStub{
		BlockFn: func(_ context.Context, _ model.Actor, id int64) error {
			blocked = id
			return nil
		},
		UnblockFn: func(_ context.Context, _ model.Actor, id int64) error {
			unblocked = id
			return fmt.Errorf("%w: user is active", domainErrors.ErrAlreadyInState)
		},
		DeleteFn: func(_ context.Context, actor model.Actor) error {
			deleted = actor
			return nil
		},
	}
	handler := NewAccountHandler(facade)

	resp := performRouted(t, http.MethodPost, "/users/:id/block", "/users/12/block", handler.Block, withActor(admin), nil, nil)
	if resp.Code != http.StatusNoContent || blocked != 12 {
		t.Fatalf("unexpected block result %d %d", resp.Code, blocked)
	}

	resp = performRouted(t, http.MethodPost, "/users/:id/unblock", "/users/13/unblock", handler.Unblock, withActor(admin), nil, nil)
	if resp.Code != http.StatusConflict || unblocked != 13 {
		t.Fatalf("unexpected unblock result %d %d", resp.Code, unblocked)
	}

	resp = performRouted(t, http.MethodPost, "/users/:id/block", "/users/x/block", handler.Block, withActor(admin), nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodDelete, "/user", handler.DeleteSelf, withActor(buyer), nil, nil)
	if resp.Code != http.StatusNoContent || deleted != buyer {
		t.Fatalf("unexpected delete result %d %+v", resp.Code, deleted)
	}
}

func TestAuditHandlerRecent(t *testing.T) {
	var gotLimit int
	userID := int64(1)
	facade := testhelpers.AuditFacadeStub{LogFn: func(_ context.Context, actor model.Actor, limit int) ([]model.LogEntry, error) {
		if actor.Role != model.RoleAdmin {
			return nil, domainErrors.Denied(domainErrors.ReasonInsufficientRole)
		}
		gotLimit = limit
		return []model.LogEntry{{ID: 5, EventType: "order.place.succeeded", UserID: &userID, Message: "order 1"}}, nil
	}}
	handler := NewAuditHandler(facade).Recent

	resp := performRouted(t, http.MethodGet, "/audit", "/audit?limit=10", handler, withActor(admin), nil, nil)
	if resp.Code != http.StatusOK || gotLimit != 10 {
		t.Fatalf("unexpected result %d limit=%d", resp.Code, gotLimit)
	}
	var decoded []dto.LogEntryResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded) != 1 || decoded[0].EventType != "order.place.succeeded" || decoded[0].UserID == nil {
		t.Fatalf("unexpected entries %+v", decoded)
	}

	resp = performRequest(t, http.MethodGet, "/audit", handler, withActor(admin), nil, nil)
	if resp.Code != http.StatusOK || gotLimit != defaultAuditLimit {
		t.Fatalf("expected default limit, got %d %d", resp.Code, gotLimit)
	}

	resp = performRouted(t, http.MethodGet, "/audit", "/audit?limit=zero", handler, withActor(admin), nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/audit", handler, withActor(seller), nil, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/health", NewHealthHandler(testhelpers.HealthFacadeStub{}).Check, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/health", NewHealthHandler(testhelpers.HealthFacadeStub{Err: errors.New("down")}).Check, nil, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

var _ MarketplaceFacade = testhelpers.MarketplaceFacadeStub{}
