package handler

import (
	"net/http"
	"testing"

	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartBody struct {
	Items []struct {
		MedicineID string `json:"medicine_id"`
		Quantity   int    `json:"quantity"`
	} `json:"items"`
	RequiresPrescription bool          `json:"requires_prescription"`
	Display              TotalsDisplay `json:"display"`
}

func TestCartHandler_AddMergesLines(t *testing.T) {
	sf := newStorefront(t)
	base := "/sessions/" + sf.newSession(t) + "/cart"

	w := sf.do(t, http.MethodPost, base+"/items", map[string]any{"medicine_id": "med001"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = sf.do(t, http.MethodPost, base+"/items", map[string]any{"medicine_id": "med001", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	var body cartBody
	dataAs(t, w, &body)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 2, body.Items[0].Quantity)
	assert.False(t, body.RequiresPrescription)
	assert.Equal(t, TotalsDisplay{
		Subtotal: "11.98",
		Tax:      "0.60",
		Shipping: "5.99",
		Total:    "18.57",
	}, body.Display)
}

func TestCartHandler_RequiresPrescriptionFlag(t *testing.T) {
	sf := newStorefront(t)
	base := "/sessions/" + sf.newSession(t) + "/cart"

	w := sf.do(t, http.MethodPost, base+"/items", map[string]any{"medicine_id": "med002", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	var body cartBody
	dataAs(t, w, &body)
	assert.True(t, body.RequiresPrescription)
}

func TestCartHandler_AddErrors(t *testing.T) {
	sf := newStorefront(t)
	base := "/sessions/" + sf.newSession(t) + "/cart"

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing medicine", map[string]any{"quantity": 1}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"unknown medicine", map[string]any{"medicine_id": "med999"}, http.StatusNotFound, dto.ErrCodeNotFound},
		{"out of stock", map[string]any{"medicine_id": "med004"}, http.StatusUnprocessableEntity, dto.ErrCodeItemUnavailable},
		{"zero quantity", map[string]any{"medicine_id": "med001", "quantity": 0}, http.StatusBadRequest, dto.ErrCodeInvalidQuantity},
		{"quantity over cap", map[string]any{"medicine_id": "med001", "quantity": 100}, http.StatusBadRequest, dto.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := sf.do(t, http.MethodPost, base+"/items", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestCartHandler_MergeBeyondCap(t *testing.T) {
	sf := newStorefront(t)
	base := "/sessions/" + sf.newSession(t) + "/cart"

	w := sf.do(t, http.MethodPost, base+"/items", map[string]any{"medicine_id": "med001", "quantity": 99})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = sf.do(t, http.MethodPost, base+"/items", map[string]any{"medicine_id": "med001", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidQuantity, resp.Error.Code)

	w = sf.do(t, http.MethodGet, base, nil)
	var body cartBody
	dataAs(t, w, &body)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 99, body.Items[0].Quantity)
}

func TestCartHandler_UpdateRemoveClear(t *testing.T) {
	sf := newStorefront(t)
	base := "/sessions/" + sf.newSession(t) + "/cart"

	require.Equal(t, http.StatusOK, sf.do(t, http.MethodPost, base+"/items", map[string]any{"medicine_id": "med001"}).Code)
	require.Equal(t, http.StatusOK, sf.do(t, http.MethodPost, base+"/items", map[string]any{"medicine_id": "med003"}).Code)

	w := sf.do(t, http.MethodPut, base+"/items/med001", map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body cartBody
	dataAs(t, w, &body)
	require.Len(t, body.Items, 2)
	assert.Equal(t, 5, body.Items[0].Quantity)

	w = sf.do(t, http.MethodPut, base+"/items/med001", map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = sf.do(t, http.MethodPut, base+"/items/med001", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = sf.do(t, http.MethodDelete, base+"/items/med003", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dataAs(t, w, &body)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "med001", body.Items[0].MedicineID)

	w = sf.do(t, http.MethodDelete, base+"/items/med003", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = sf.do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dataAs(t, w, &body)
	assert.Empty(t, body.Items)
	assert.Equal(t, "0.00", body.Display.Subtotal)
}
