//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	cartapp "github.com/emedico/backend/internal/application/cart"
	catalogapp "github.com/emedico/backend/internal/application/catalog"
	chatapp "github.com/emedico/backend/internal/application/chat"
	"github.com/emedico/backend/internal/application/checkout"
	identityapp "github.com/emedico/backend/internal/application/identity"
	pharmacyapp "github.com/emedico/backend/internal/application/pharmacy"
	prescriptionapp "github.com/emedico/backend/internal/application/prescription"
	sessionapp "github.com/emedico/backend/internal/application/session"
	"github.com/emedico/backend/internal/domain/identity"
	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/pharmacy"
	"github.com/emedico/backend/internal/domain/prescription"
	"github.com/emedico/backend/internal/infrastructure/auth"
	"github.com/emedico/backend/internal/infrastructure/cache"
	"github.com/emedico/backend/internal/infrastructure/config"
	"github.com/emedico/backend/internal/infrastructure/event"
	"github.com/emedico/backend/internal/infrastructure/ocr"
	"github.com/emedico/backend/internal/infrastructure/persistence"
	"github.com/emedico/backend/internal/infrastructure/persistence/memory"
	"github.com/emedico/backend/internal/infrastructure/storage"
	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/emedico/backend/internal/interfaces/http/handler"
	"github.com/emedico/backend/internal/interfaces/http/middleware"
	"github.com/emedico/backend/internal/interfaces/http/router"
	"github.com/emedico/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

const apiBase = "/api/v1"

var pngBytes = []byte("\x89PNG\r\n\x1a\nintegration-image")

type confirmationResponse struct {
	OrderID     uuid.UUID    `json:"order_id"`
	OrderNumber string       `json:"order_number"`
	Status      order.Status `json:"status"`
}

type orderListItem struct {
	ID     uuid.UUID    `json:"id"`
	Status order.Status `json:"status"`
}

type StorefrontSuite struct {
	suite.Suite
	db     *TestDB
	engine *gin.Engine
	bus    *event.LocalBus
	events *testutil.EventRecorder
	client *testutil.Client
}

func TestStorefront(t *testing.T) {
	suite.Run(t, new(StorefrontSuite))
}

func (s *StorefrontSuite) SetupSuite() {
	prev := identity.HashCost
	identity.HashCost = bcrypt.MinCost
	s.T().Cleanup(func() { identity.HashCost = prev })

	s.db = NewTestDB(s.T())
}

func (s *StorefrontSuite) SetupTest() {
	s.db.CleanTables()
	s.engine = s.buildEngine()
	s.client = testutil.NewClient(s.T(), s.engine, testutil.TestClientID(s.T().Name()))
}

func (s *StorefrontSuite) TearDownTest() {
	if s.bus != nil {
		_ = s.bus.Stop(context.Background())
	}
}

// buildEngine assembles the production router over the PostgreSQL repositories
func (s *StorefrontSuite) buildEngine() *gin.Engine {
	t := s.T()
	log := zaptest.NewLogger(t)
	ctx := context.Background()
	gdb := s.db.DB

	s.bus = event.NewLocalBus(log)
	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })
	blacklist := auth.NewInMemoryTokenBlacklist()

	medicines := memory.NewMedicineRepository(nil)
	sessions := sessionapp.NewService(memory.NewStateRepository(), persistence.NewGormPreferenceStore(gdb), log)
	carts := cartapp.NewService(persistence.NewGormCartRepository(gdb), medicines, log)
	carts.SetEventPublisher(s.bus)
	prescriptions := prescriptionapp.NewService(persistence.NewGormPrescriptionRepository(gdb),
		storage.NewMemoryStore(), ocr.NewSimulatedExtractor(), time.Hour, log)
	orders := checkout.NewService(persistence.NewGormOrderRepository(gdb), carts, prescriptions,
		idempotency, checkout.Config{}, log)
	orders.SetEventPublisher(s.bus)
	chat := chatapp.NewService(0, log)
	t.Cleanup(func() { _ = chat.Shutdown(context.Background()) })

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-with-enough-length-0123456789",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "emedico-integration",
	})
	authService := identityapp.NewAuthService(persistence.NewGormUserRepository(gdb), jwtService, blacklist,
		s.bus, identityapp.DefaultLockout(), log)

	s.bus.Subscribe(event.NewIdempotentHandler("cart.clear-on-order",
		cartapp.NewOrderPlacedHandler(carts, log), idempotency, log))
	s.events = testutil.NewEventRecorder()
	s.bus.Subscribe(s.events)
	require.NoError(t, s.bus.Start(ctx))

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Secure(middleware.DefaultSecurityConfig()),
		middleware.ClientID(middleware.ClientIDConfig{}),
		middleware.BodyLimit(10<<20),
	)

	systemHandler := handler.NewSystemHandler("emedico-test", "test")
	systemHandler.AddCheck("database", s.db.Ping)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	handlers := router.Handlers{
		System:       systemHandler,
		Session:      handler.NewSessionHandler(sessions),
		Catalog:      handler.NewCatalogHandler(catalogapp.NewService(medicines)),
		Pharmacy:     handler.NewPharmacyHandler(pharmacyapp.NewService(pharmacy.Seed())),
		Cart:         handler.NewCartHandler(carts),
		Order:        handler.NewOrderHandler(orders),
		Prescription: handler.NewPrescriptionHandler(prescriptions),
		Chat:         handler.NewChatHandler(chat, handler.DefaultChatHandlerConfig()),
		Auth:         handler.NewAuthHandler(authService),
	}
	authn := middleware.NewAuthenticator(jwtService, blacklist, log)
	guards := router.Guards{
		Session:      middleware.RequireSession(sessions, "id"),
		Auth:         authn.Require(),
		OptionalAuth: authn.Optional(),
		Upload:       middleware.BodyLimit(prescription.MaxFileSize + 1<<20),
	}

	router.Mount(engine, router.StorefrontGroups(handlers, guards)...)
	return engine
}

func (s *StorefrontSuite) newSession() string {
	w := s.client.Do(http.MethodPost, apiBase+"/sessions", nil)
	created := testutil.RequireData[handler.SessionResponse](s.T(), w, http.StatusCreated)
	return created.SessionID
}

func (s *StorefrontSuite) addItem(sid, medicineID string, qty int) handler.CartResponse {
	w := s.client.Do(http.MethodPost, apiBase+"/sessions/"+sid+"/cart/items",
		map[string]any{"medicine_id": medicineID, "quantity": qty})
	return testutil.RequireData[handler.CartResponse](s.T(), w, http.StatusOK)
}

func (s *StorefrontSuite) cart(sid string) handler.CartResponse {
	w := s.client.Do(http.MethodGet, apiBase+"/sessions/"+sid+"/cart", nil)
	return testutil.RequireData[handler.CartResponse](s.T(), w, http.StatusOK)
}

func checkoutBody() map[string]any {
	return map[string]any{
		"address": map[string]string{
			"full_name":     "Jane Doe",
			"address_line1": "1 Main St",
			"city":          "Springfield",
			"zip_code":      "12345",
			"phone_number":  "+1 555 0100",
		},
		"payment_method": "creditCard",
		"fulfillment":    "delivery",
	}
}

func (s *StorefrontSuite) register(email string) handler.SignInResponse {
	t := s.T()
	w := s.client.Do(http.MethodPost, apiBase+"/auth/register", map[string]string{
		"full_name": "Jane Doe", "email": email, "password": "correct-horse-1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.client.Do(http.MethodPost, apiBase+"/auth/login", map[string]any{
		"email": email, "password": "correct-horse-1", "remember": true,
	})
	return testutil.RequireData[handler.SignInResponse](t, w, http.StatusOK)
}

func (s *StorefrontSuite) TestProbes() {
	w := s.client.Do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *StorefrontSuite) TestCheckoutFlow() {
	t := s.T()
	sid := s.newSession()

	view := s.addItem(sid, "med001", 2)
	s.Equal("11.98", view.Display.Subtotal)
	s.Equal("5.99", view.Display.Shipping)

	w := s.client.Do(http.MethodPost, apiBase+"/sessions/"+sid+"/cart/items",
		map[string]any{"medicine_id": "med004", "quantity": 1})
	testutil.AssertErrorResponse(t, w, dto.ErrCodeItemUnavailable)

	w = s.client.Do(http.MethodPost, apiBase+"/sessions/"+sid+"/checkout", checkoutBody(),
		map[string]string{middleware.HeaderIdempotencyKey: "checkout-" + sid})
	conf := testutil.RequireData[confirmationResponse](t, w, http.StatusCreated)
	s.Equal(order.StatusPlaced, conf.Status)
	s.NotEmpty(conf.OrderNumber)

	// a replayed key answers with the same order
	w = s.client.Do(http.MethodPost, apiBase+"/sessions/"+sid+"/checkout", checkoutBody(),
		map[string]string{middleware.HeaderIdempotencyKey: "checkout-" + sid})
	replay := testutil.RequireData[confirmationResponse](t, w, http.StatusOK)
	s.Equal(conf.OrderID, replay.OrderID)

	s.Eventually(func() bool {
		return s.cart(sid).Totals.ItemCount == 0
	}, 5*time.Second, 20*time.Millisecond, "placed order should clear the cart")

	placed := testutil.AwaitEvents(t, s.events, order.EventTypeOrderPlaced, 1, time.Second)
	s.Equal(sid, placed[0].SessionID())
	s.Equal(conf.OrderID, placed[0].AggregateID())

	w = s.client.Do(http.MethodGet, apiBase+"/sessions/"+sid+"/orders", nil)
	env := testutil.DecodeEnvelope[[]orderListItem](t, w)
	require.True(t, env.Success, w.Body.String())
	require.Len(t, env.Data, 1)
	s.Equal(conf.OrderID, env.Data[0].ID)
	require.NotNil(t, env.Meta)
	s.Equal(int64(1), env.Meta.Total)

	statusPath := apiBase + "/orders/" + conf.OrderID.String() + "/status"
	w = s.client.Do(http.MethodPatch, statusPath, map[string]string{"status": "confirmed"})
	s.Equal(http.StatusUnauthorized, w.Code, "status changes need a signed-in user")

	login := s.register("ops@example.com")
	staff := s.client.WithToken(login.Token.AccessToken)

	w = staff.Do(http.MethodPatch, statusPath, map[string]string{"status": "shipped"})
	s.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())

	for _, next := range []string{"confirmed", "shipped", "delivered"} {
		w = staff.Do(http.MethodPatch, statusPath, map[string]string{"status": next})
		got := testutil.RequireData[orderListItem](t, w, http.StatusOK)
		s.Equal(order.Status(next), got.Status)
	}

	w = s.client.Do(http.MethodGet, apiBase+"/orders/"+conf.OrderID.String()+"/receipt.pdf", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *StorefrontSuite) TestCheckoutRequiresPrescription() {
	t := s.T()
	sid := s.newSession()

	view := s.addItem(sid, "med002", 1)
	s.True(view.RequiresPrescription)

	w := s.client.Do(http.MethodPost, apiBase+"/sessions/"+sid+"/checkout", checkoutBody())
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	testutil.AssertErrorResponse(t, w, dto.ErrCodePrescriptionRequired)

	req := testutil.MultipartFile(t, http.MethodPost, apiBase+"/sessions/"+sid+"/prescription",
		handler.PrescriptionFormField, "rx.png", pngBytes)
	w = s.client.Send(req)
	uploaded := testutil.RequireData[handler.PrescriptionStateResponse](t, w, http.StatusCreated)
	require.NotNil(t, uploaded.Upload)
	s.Equal(int64(len(pngBytes)), uploaded.Upload.Size)
	s.NotEmpty(uploaded.Upload.PreviewURL)

	w = s.client.Do(http.MethodPost, apiBase+"/sessions/"+sid+"/checkout", checkoutBody())
	testutil.RequireData[confirmationResponse](t, w, http.StatusCreated)
}

func (s *StorefrontSuite) TestSessionLifecycle() {
	t := s.T()
	sid := s.newSession()

	w := s.client.Do(http.MethodPost, apiBase+"/sessions/"+sid+"/theme/toggle", nil)
	toggled := testutil.RequireData[handler.SessionResponse](t, w, http.StatusOK)

	// the theme preference outlives the session for the same browser
	next := s.newSession()
	w = s.client.Do(http.MethodGet, apiBase+"/sessions/"+next, nil)
	reopened := testutil.RequireData[handler.SessionResponse](t, w, http.StatusOK)
	s.Equal(toggled.Theme, reopened.Theme)

	s.addItem(sid, "med001", 1)
	w = s.client.Do(http.MethodDelete, apiBase+"/sessions/"+sid, nil)
	s.Less(w.Code, 300, w.Body.String())

	testutil.RunHTTPTestCases(t, s.client, []testutil.HTTPTestCase{
		{Name: "closed session", Path: apiBase + "/sessions/" + sid + "/cart",
			ExpectedStatus: http.StatusNotFound, ExpectedCode: dto.ErrCodeNotFound},
		{Name: "unknown medicine", Path: apiBase + "/catalog/medicines/med999",
			ExpectedStatus: http.StatusNotFound, ExpectedCode: dto.ErrCodeNotFound},
		{Name: "catalog", Path: apiBase + "/catalog/medicines", ExpectedStatus: http.StatusOK},
		{Name: "pharmacies", Path: apiBase + "/pharmacies", ExpectedStatus: http.StatusOK},
	})
}

func (s *StorefrontSuite) TestAuthFlow() {
	t := s.T()
	login := s.register("jane@example.com")
	s.Equal("Bearer", login.Token.TokenType)
	s.Equal("jane@example.com", login.User.Email)

	w := s.client.Do(http.MethodPost, apiBase+"/auth/register", map[string]string{
		"full_name": "Jane Again", "email": "JANE@example.com", "password": "another-pass-1",
	})
	s.Equal(http.StatusConflict, w.Code, w.Body.String())

	w = s.client.Do(http.MethodPost, apiBase+"/auth/login", map[string]string{
		"email": "jane@example.com", "password": "wrong-password",
	})
	s.Equal(http.StatusUnauthorized, w.Code)

	authed := s.client.WithToken(login.Token.AccessToken)
	w = authed.Do(http.MethodGet, apiBase+"/auth/me", nil)
	me := testutil.RequireData[handler.AccountResponse](t, w, http.StatusOK)
	s.Equal(login.User.ID, me.ID)

	w = s.client.WithToken(login.Token.AccessToken+"x").Do(http.MethodGet, apiBase+"/auth/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = authed.Do(http.MethodPost, apiBase+"/auth/logout", map[string]string{"refresh_token": login.Token.RefreshToken})
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = authed.Do(http.MethodGet, apiBase+"/auth/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code, "revoked token must be refused")
}

func (s *StorefrontSuite) TestSecurityHeaders() {
	w := s.client.Do(http.MethodGet, "/health", nil)
	assert.Equal(s.T(), "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(s.T(), "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(s.T(), w.Header().Get(middleware.HeaderRequestID))
	assert.Equal(s.T(), testutil.TestClientID(s.T().Name()), w.Header().Get(middleware.HeaderClientID))
}
