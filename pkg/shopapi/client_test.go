package shopapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bonneaffaire/pkg/apperrors"
)

func TestListProducts_Featured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("featured"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"p1","name":"Canapé","price":649,"oldPrice":999,"discountPercentage":35,"featured":true}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/", time.Second)
	products, err := client.ListProducts(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Canapé", products[0].Name)
	require.NotNil(t, products[0].OldPrice)
	assert.Equal(t, 999.0, *products[0].OldPrice)
}

func TestCreateOrder_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateOrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Marie", req.Customer.FirstName)
		assert.Len(t, req.Items, 1)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"message":"order created","data":{"id":"o1","orderNumber":"BA78-260115-001","status":"pending","totals":{"subtotal":649,"shipping":0,"total":649}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	order, err := client.CreateOrder(context.Background(), &CreateOrderRequest{
		Customer: CustomerPayload{FirstName: "Marie"},
		Items:    []ItemPayload{{Name: "Canapé", Quantity: 1, Price: 649}},
	})
	require.NoError(t, err)
	assert.Equal(t, "BA78-260115-001", order.OrderNumber)
	assert.Equal(t, 649.0, order.Totals.Total)
}

func TestCreateOrder_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"validation failed","errors":["customer.email must be a valid email"]}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).CreateOrder(context.Background(), &CreateOrderRequest{})

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusBadRequest, rejected.StatusCode)
	assert.Equal(t, []string{"customer.email must be a valid email"}, rejected.Errors)
	assert.False(t, errors.Is(err, apperrors.ErrUnavailable))
}

func TestCreateOrder_UnsuccessfulEnvelopeIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"out of stock"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).CreateOrder(context.Background(), &CreateOrderRequest{})

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "out of stock", rejected.Message)
}

func TestCreateOrder_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"success":false,"message":"database unavailable"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).CreateOrder(context.Background(), &CreateOrderRequest{})
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestListProducts_TransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second).ListProducts(context.Background(), false)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestRecordAddToCart(t *testing.T) {
	var called string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = r.Method + " " + r.URL.Path
		w.Write([]byte(`{"success":true,"message":"added to cart"}`))
	}))
	defer server.Close()

	require.NoError(t, NewClient(server.URL, time.Second).RecordAddToCart(context.Background(), "p1"))
	assert.Equal(t, "POST /products/p1/cart", called)
}
