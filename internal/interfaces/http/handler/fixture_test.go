package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	cartapp "github.com/emedico/backend/internal/application/cart"
	catalogapp "github.com/emedico/backend/internal/application/catalog"
	"github.com/emedico/backend/internal/application/checkout"
	pharmacyapp "github.com/emedico/backend/internal/application/pharmacy"
	prescriptionapp "github.com/emedico/backend/internal/application/prescription"
	sessionapp "github.com/emedico/backend/internal/application/session"
	"github.com/emedico/backend/internal/domain/pharmacy"
	"github.com/emedico/backend/internal/infrastructure/cache"
	"github.com/emedico/backend/internal/infrastructure/event"
	"github.com/emedico/backend/internal/infrastructure/ocr"
	"github.com/emedico/backend/internal/infrastructure/persistence/memory"
	"github.com/emedico/backend/internal/infrastructure/storage"
	"github.com/emedico/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// storefront wires every storefront handler over in-memory adapters
type storefront struct {
	engine        *gin.Engine
	sessions      *sessionapp.Service
	carts         *cartapp.Service
	prescriptions *prescriptionapp.Service
	checkout      *checkout.Service
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	logger := zap.NewNop()

	bus := event.NewLocalBus(logger)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })

	sessions := sessionapp.NewService(memory.NewStateRepository(), memory.NewPreferenceStore(), logger)
	carts := cartapp.NewService(memory.NewCartRepository(), memory.NewMedicineRepository(nil), logger)
	carts.SetEventPublisher(bus)
	prescriptions := prescriptionapp.NewService(memory.NewPrescriptionRepository(),
		storage.NewMemoryStore(), ocr.NewSimulatedExtractor(), 0, logger)
	orders := checkout.NewService(memory.NewOrderRepository(), carts, prescriptions, idempotency, checkout.Config{}, logger)
	orders.SetEventPublisher(bus)
	bus.Subscribe(event.NewIdempotentHandler("clear-cart", cartapp.NewOrderPlacedHandler(carts, logger), idempotency, logger))

	engine := gin.New()
	engine.Use(middleware.ClientID(middleware.ClientIDConfig{}))

	sf := &storefront{
		engine:        engine,
		sessions:      sessions,
		carts:         carts,
		prescriptions: prescriptions,
		checkout:      orders,
	}
	sf.routes(orders)
	return sf
}

func (sf *storefront) routes(orders *checkout.Service) {
	sessionH := NewSessionHandler(sf.sessions)
	catalogH := NewCatalogHandler(catalogapp.NewService(memory.NewMedicineRepository(nil)))
	pharmacyH := NewPharmacyHandler(pharmacyapp.NewService(pharmacy.Seed()))
	cartH := NewCartHandler(sf.carts)
	orderH := NewOrderHandler(orders)
	prescriptionH := NewPrescriptionHandler(sf.prescriptions)

	r := sf.engine
	r.GET("/catalog/medicines", catalogH.ListMedicines)
	r.GET("/catalog/medicines/:id", catalogH.GetMedicine)
	r.GET("/catalog/categories", catalogH.ListCategories)
	r.GET("/pharmacies", pharmacyH.List)

	r.POST("/sessions", sessionH.Create)
	r.GET("/sessions/:id", sessionH.Get)
	r.DELETE("/sessions/:id", sessionH.Delete)
	r.POST("/sessions/:id/navigate", sessionH.Navigate)
	r.POST("/sessions/:id/scroll", sessionH.Scroll)
	r.PUT("/sessions/:id/theme", sessionH.SetTheme)
	r.POST("/sessions/:id/theme/toggle", sessionH.ToggleTheme)

	r.GET("/sessions/:id/cart", cartH.Get)
	r.POST("/sessions/:id/cart/items", cartH.AddItem)
	r.PUT("/sessions/:id/cart/items/:medicine_id", cartH.UpdateItem)
	r.DELETE("/sessions/:id/cart/items/:medicine_id", cartH.RemoveItem)
	r.DELETE("/sessions/:id/cart", cartH.Clear)

	r.POST("/sessions/:id/prescription", prescriptionH.Upload)
	r.GET("/sessions/:id/prescription", prescriptionH.Get)
	r.DELETE("/sessions/:id/prescription", prescriptionH.Clear)

	r.POST("/sessions/:id/checkout", orderH.Checkout)
	r.GET("/sessions/:id/orders", orderH.ListSessionOrders)
	r.GET("/orders/:id", orderH.GetOrder)
	r.PATCH("/orders/:id/status", orderH.ChangeStatus)
	r.GET("/orders/:id/receipt.pdf", orderH.Receipt)
}

func (sf *storefront) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	sf.engine.ServeHTTP(w, req)
	return w
}

// dataAs re-decodes the data field of a success envelope into dst
func dataAs(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func (sf *storefront) newSession(t *testing.T) string {
	t.Helper()
	w := sf.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var s SessionResponse
	dataAs(t, w, &s)
	return s.SessionID
}
