package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/shelf/internal/authority/authoritytest"
	"github.com/artpar/shelf/internal/core"
)

var h authoritytest.Handlers

func newTestClient(t *testing.T, srv *authoritytest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Run("accepts http and https", func(t *testing.T) {
		c, err := NewClient("http://localhost:5000/")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5000", c.BaseURL())

		_, err = NewClient("https://shop.example.com")
		assert.NoError(t, err)
	})

	t.Run("rejects other schemes", func(t *testing.T) {
		_, err := NewClient("ftp://localhost")
		assert.Error(t, err)

		_, err = NewClient("localhost:5000")
		assert.Error(t, err)
	})
}

func TestClient_AddToCart(t *testing.T) {
	t.Run("sends product id and decodes result", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathAddToCart: h.Cart("success", 5, "Added"),
		})
		defer srv.Close()

		result, err := newTestClient(t, srv).AddToCart(context.Background(), "7")
		require.NoError(t, err)
		assert.True(t, result.OK())
		assert.Equal(t, 5, result.CartCount)
		assert.Equal(t, "Added", result.Message)

		req := srv.LastRequest()
		require.NotNil(t, req)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
		assert.NotEmpty(t, req.Headers.Get("X-Request-ID"))

		var body CartRequest
		require.NoError(t, req.Decode(&body))
		assert.Equal(t, core.ProductID("7"), body.ProductID)
	})

	t.Run("rejection is not an error", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathAddToCart: h.Cart("exists", 2, "Already in cart"),
		})
		defer srv.Close()

		result, err := newTestClient(t, srv).AddToCart(context.Background(), "7")
		require.NoError(t, err)
		assert.False(t, result.OK())
		assert.Equal(t, "Already in cart", result.Message)
	})

	t.Run("envelope on 4xx is decoded", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathAddToCart: h.JSON(http.StatusNotFound, map[string]any{"status": "error", "message": "Product not found"}),
		})
		defer srv.Close()

		result, err := newTestClient(t, srv).AddToCart(context.Background(), "99")
		require.NoError(t, err)
		assert.False(t, result.OK())
		assert.Equal(t, "Product not found", result.Message)
	})

	t.Run("body without status is a bad response", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathAddToCart: h.Text(http.StatusOK, "ok"),
		})
		defer srv.Close()

		_, err := newTestClient(t, srv).AddToCart(context.Background(), "7")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBadResponse)
	})

	t.Run("server error", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathAddToCart: h.Status(http.StatusInternalServerError),
		})
		defer srv.Close()

		_, err := newTestClient(t, srv).AddToCart(context.Background(), "7")
		require.Error(t, err)
		var re *Error
		require.True(t, errors.As(err, &re))
		assert.Equal(t, PathAddToCart, re.Endpoint)
		assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
	})
}

func TestClient_RemoveFromCart(t *testing.T) {
	srv := authoritytest.New(map[string]http.HandlerFunc{
		PathRemoveFromCart: h.Cart("success", 0, ""),
	})
	defer srv.Close()

	result, err := newTestClient(t, srv).RemoveFromCart(context.Background(), "3")
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 0, result.CartCount)
	assert.Equal(t, PathRemoveFromCart, srv.LastRequest().Path)
}

func TestClient_SendFeedback(t *testing.T) {
	t.Run("posts action", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathFeedback: h.JSON(http.StatusOK, map[string]string{"status": "success"}),
		})
		defer srv.Close()

		err := newTestClient(t, srv).SendFeedback(context.Background(), "4", core.FeedbackDislike)
		require.NoError(t, err)

		var body FeedbackRequest
		require.NoError(t, srv.LastRequest().Decode(&body))
		assert.Equal(t, core.ProductID("4"), body.ProductID)
		assert.Equal(t, core.FeedbackDislike, body.Action)
		assert.JSONEq(t, `{"product_id":4,"action":"dislike"}`, string(srv.LastRequest().Body))
	})

	t.Run("answer body is ignored", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathFeedback: h.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"}),
		})
		defer srv.Close()

		err := newTestClient(t, srv).SendFeedback(context.Background(), "4", core.FeedbackPurchase)
		assert.NoError(t, err)
	})
}

func TestClient_FetchReplacement(t *testing.T) {
	t.Run("sends exclude ids", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathReplacement: h.Replacement(authoritytest.Card("9", "Lamp", 10)),
		})
		defer srv.Close()

		result, err := newTestClient(t, srv).FetchReplacement(context.Background(), []core.ProductID{"1", "2", "3"})
		require.NoError(t, err)
		assert.True(t, result.OK())
		assert.Contains(t, result.HTML, `data-id="9"`)

		var body ReplacementRequest
		require.NoError(t, srv.LastRequest().Decode(&body))
		assert.Equal(t, []core.ProductID{"1", "2", "3"}, body.ExcludeIDs)
		assert.JSONEq(t, `{"exclude_ids":[1,2,3]}`, string(srv.LastRequest().Body))
	})

	t.Run("ids decoded from numbers go back out as numbers", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathReplacement: h.Replacement(authoritytest.Card("9", "Lamp", 10)),
		})
		defer srv.Close()

		var first core.ProductID
		require.NoError(t, json.Unmarshal([]byte(`1`), &first))

		_, err := newTestClient(t, srv).FetchReplacement(context.Background(), []core.ProductID{first, "2", "sku-3"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"exclude_ids":[1,2,"sku-3"]}`, string(srv.LastRequest().Body))
	})

	t.Run("nil exclude is sent as empty list", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathReplacement: h.Rejection("no_more", "No more items"),
		})
		defer srv.Close()

		result, err := newTestClient(t, srv).FetchReplacement(context.Background(), nil)
		require.NoError(t, err)
		assert.False(t, result.OK())
		assert.Equal(t, "No more items", result.Message)
		assert.JSONEq(t, `{"exclude_ids":[]}`, string(srv.LastRequest().Body))
	})
}

func TestClient_LoadPage(t *testing.T) {
	t.Run("returns document", func(t *testing.T) {
		srv := authoritytest.New(map[string]http.HandlerFunc{
			PathDashboard: h.HTML(http.StatusOK, "<html></html>"),
		})
		defer srv.Close()

		doc, err := newTestClient(t, srv).LoadPage(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "<html></html>", doc)
		assert.Equal(t, http.MethodGet, srv.LastRequest().Method)
	})

	t.Run("not found is an error", func(t *testing.T) {
		srv := authoritytest.New(nil)
		defer srv.Close()

		_, err := newTestClient(t, srv).LoadPage(context.Background())
		assert.ErrorIs(t, err, ErrBadResponse)
	})
}

func TestClient_Cart(t *testing.T) {
	srv := authoritytest.New(map[string]http.HandlerFunc{
		PathCart: h.JSON(http.StatusOK, map[string]any{
			"status":     "success",
			"items":      []map[string]any{{"id": 4, "title": "Mug", "price": 199.5}},
			"total":      199.5,
			"cart_count": 1,
		}),
	})
	defer srv.Close()

	contents, err := newTestClient(t, srv).Cart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, contents.CartCount)
	assert.InDelta(t, 199.5, contents.Total, 0.001)
	require.Len(t, contents.Items, 1)
	assert.Equal(t, core.ProductID("4"), contents.Items[0].ID)
	assert.Equal(t, http.MethodGet, srv.LastRequest().Method)
}

func TestClient_Timeout(t *testing.T) {
	srv := authoritytest.New(map[string]http.HandlerFunc{
		PathAddToCart: h.Delayed(time.Second, h.Cart("success", 1, "")),
	})
	defer srv.Close()

	_, err := newTestClient(t, srv, WithTimeout(50*time.Millisecond)).AddToCart(context.Background(), "1")
	require.Error(t, err)

	var re *Error
	assert.True(t, errors.As(err, &re))
}

func TestClient_Breaker(t *testing.T) {
	srv := authoritytest.New(map[string]http.HandlerFunc{
		PathAddToCart: h.Status(http.StatusBadGateway),
	})
	defer srv.Close()

	c := newTestClient(t, srv, WithBreaker(BreakerSettings{
		FailureRatio: 0.5,
		MinRequests:  2,
		OpenTimeout:  time.Minute,
	}))

	for i := 0; i < 2; i++ {
		_, err := c.AddToCart(context.Background(), "1")
		var re *Error
		require.True(t, errors.As(err, &re))
		assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
	}

	_, err := c.AddToCart(context.Background(), "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, srv.RequestCount())
}

func TestClient_BreakerIgnoresRejections(t *testing.T) {
	srv := authoritytest.New(map[string]http.HandlerFunc{
		PathAddToCart: h.Cart("exists", 1, "Already in cart"),
	})
	defer srv.Close()

	c := newTestClient(t, srv, WithBreaker(BreakerSettings{FailureRatio: 0.5, MinRequests: 1, OpenTimeout: time.Minute}))
	for i := 0; i < 5; i++ {
		_, err := c.AddToCart(context.Background(), "1")
		require.NoError(t, err)
	}
	assert.Equal(t, 5, srv.RequestCount())
}
