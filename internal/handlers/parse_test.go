package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase-tracking/internal/delivery"
	"purchase-tracking/internal/parser"
)

func newTestParseHandler(t *testing.T) *ParseHandler {
	t.Helper()
	deliveryExtractor, err := delivery.NewExtractor(delivery.DefaultShippingConfig())
	require.NoError(t, err)
	return NewParseHandler(parser.NewEmailParser(parser.NewPatternTable(), deliveryExtractor, nil))
}

func postParse(t *testing.T, handler *ParseHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler.Parse(w, req)
	return w
}

func TestParseHandler(t *testing.T) {
	handler := newTestParseHandler(t)

	w := postParse(t, handler, ParseRequest{
		Subject:  "Your order has been dispatched",
		From:     "orders@asos.com",
		BodyText: "Order #A1B2C3D4E5\nItems: Midi Floral Dress\nEstimated delivery date: 2099-01-28",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response ParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Result)
	assert.Equal(t, "ASOS", response.Result.RetailerName)
	assert.Equal(t, "A1B2C3D4E5", response.Result.OrderReference)
	assert.Equal(t, []string{"Midi Floral Dress"}, response.Result.ProductDescriptions)
	require.NotNil(t, response.Result.DeliveryInfo)
	assert.Len(t, response.ImageMatches, 1)
}

func TestParseHandlerRejectsEmptyRequest(t *testing.T) {
	handler := newTestParseHandler(t)

	w := postParse(t, handler, ParseRequest{From: "orders@asos.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseHandlerRejectsBadJSON(t *testing.T) {
	handler := newTestParseHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	handler.Parse(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseHandlerEmptyCollectionsEncodeAsArrays(t *testing.T) {
	handler := newTestParseHandler(t)

	w := postParse(t, handler, ParseRequest{Subject: "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `"tracking_urls":[]`)
	assert.Contains(t, body, `"product_urls":[]`)
	assert.NotContains(t, body, `null`)
}
