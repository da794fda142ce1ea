package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressInput struct {
	FullName string `json:"full_name" binding:"required"`
	ZipCode  string `json:"zip_code" binding:"required,len=5"`
	Quantity int    `json:"quantity" binding:"gte=1"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req addressInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRequestID, "req-validate")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter()

	t.Run("field errors use json names", func(t *testing.T) {
		w := postJSON(router, `{"zip_code":"123","quantity":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		assert.Equal(t, "req-validate", resp.Error.RequestID)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", fields["full_name"])
		assert.Equal(t, "Must be exactly 5 characters", fields["zip_code"])
		assert.Equal(t, "Must be greater than or equal to 1", fields["quantity"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w := postJSON(router, `{"full_name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "body", resp.Error.Details[0].Field)
	})

	t.Run("wrong type", func(t *testing.T) {
		w := postJSON(router, `{"full_name":"Jane","zip_code":"12345","quantity":"two"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "quantity", resp.Error.Details[0].Field)
	})

	t.Run("valid input", func(t *testing.T) {
		w := postJSON(router, `{"full_name":"Jane Doe","zip_code":"12345","quantity":2}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFormatValidationErrors_Oneof(t *testing.T) {
	type payment struct {
		Method string `validate:"oneof=creditCard paypal cod"`
	}
	err := validator.New().Struct(payment{Method: "bitcoin"})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "")
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "Must be one of: creditCard paypal cod", resp.Error.Details[0].Message)
}

func TestFormatValidationErrors_Bounds(t *testing.T) {
	type register struct {
		Password string `validate:"min=8"`
		Quantity int    `validate:"max=10"`
		Note     string `validate:"alpha"`
	}
	err := validator.New().Struct(register{Password: "short", Quantity: 11, Note: "1"})
	require.Error(t, err)

	msgs := map[string]string{}
	for _, d := range FormatValidationErrors(err, "").Error.Details {
		msgs[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at least 8 characters", msgs["Password"])
	assert.Equal(t, "Must be at most 10", msgs["Quantity"])
	assert.Equal(t, "Invalid value", msgs["Note"])
}
