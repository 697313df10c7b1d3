package functions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediconnect/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreatePaymentIntent_SendsMinorUnits(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathPaymentIntent, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_1","client_secret":"cs_1","amount":3099,"currency":"eur"}`))
	}))
	defer srv.Close()

	client := NewClient(config.FunctionsConfig{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: time.Second})

	intent, err := client.CreatePaymentIntent(context.Background(), decimal.RequireFromString("30.99"), "eur", nil)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", intent.ClientSecret)
	assert.Equal(t, float64(3099), got["amount"])
	assert.Equal(t, "eur", got["currency"])
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "room quota exceeded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(config.FunctionsConfig{BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.CreateRoom(context.Background(), "room-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFunctionFailed)
	assert.Contains(t, err.Error(), "502")
}
