package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylemcp/internal/domain"
)

func newTestClient(t *testing.T, server *httptest.Server, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = server.URL
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Millisecond
	}
	client, err := New(Options{Config: cfg})
	require.NoError(t, err)
	return client
}

func boolPtr(v bool) *bool { return &v }

func TestClient_CompleteTheLook_Success(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"pdp_item": {"product_id": "P1", "name": "Shirt", "price": 7999},
			"looks": [{"look_id": "L1", "products": [{"product_id": "P2", "name": "Pants", "price": 6999}]}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{AppID: "demo-shop", Region: "us", Locale: "en-US"})

	resp, err := client.CompleteTheLook(context.Background(), CompleteTheLookParams{
		ProductID: "P1",
		InStock:   boolPtr(true),
		SessionID: "sess-1",
		Limit:     5,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/complete-the-look", gotPath)
	assert.Equal(t, []string{"P1"}, gotQuery["product_id"])
	assert.Equal(t, []string{"true"}, gotQuery["in_stock"])
	assert.Equal(t, []string{"5"}, gotQuery["limit"])
	assert.Equal(t, []string{"demo-shop"}, gotQuery["app_id"])
	assert.Equal(t, []string{"us"}, gotQuery["region"])
	assert.Equal(t, []string{"en-US"}, gotQuery["locale"])
	assert.Equal(t, []string{"sess-1"}, gotQuery["session_id"])

	require.NotNil(t, resp.PDPItem)
	assert.Equal(t, "P1", resp.PDPItem.ProductID)
	require.Len(t, resp.Looks, 1)
	assert.Equal(t, "L1", resp.Looks[0].ID)
	require.Len(t, resp.Looks[0].Products, 1)
	assert.Equal(t, "P2", resp.Looks[0].Products[0].ProductID)
}

func TestClient_OmitsAbsentParameters(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"looks": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	_, err := client.CompleteTheLook(context.Background(), CompleteTheLookParams{ProductID: "P1"})
	require.NoError(t, err)

	// Absent optionals must be missing entirely, not sent as empty or
	// false; upstream defaults differ from explicit values.
	for _, key := range []string{"color_id", "in_stock", "on_sale", "limit", "offset", "session_id", "app_id", "region", "locale"} {
		assert.NotContains(t, gotQuery, key)
	}
}

func TestClient_VersionOverride(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"products": [], "total": 0}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{APIVersion: "v1"})
	_, err := client.VisuallySimilar(context.Background(), VisuallySimilarParams{ProductID: "P1", APIVersion: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/visually-similar", gotPath)
}

func TestClient_RetryExhaustion(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error": {"message": "recommendation engine offline"}}`))
	}))
	defer server.Close()

	delay := 20 * time.Millisecond
	client := newTestClient(t, server, Config{RetryCount: 2, RetryDelay: delay})

	start := time.Now()
	_, err := client.CompleteTheLook(context.Background(), CompleteTheLookParams{ProductID: "P1"})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, int32(3), attempts.Load(), "retry count R must give R+1 total attempts")
	assert.GreaterOrEqual(t, elapsed, 2*delay, "configured delay must be observed between attempts")
	assert.Contains(t, err.Error(), "recommendation engine offline")

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeUpstream, code)
}

func TestClient_RetriesUndecodableBody(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			_, _ = w.Write([]byte(`{not json`))
			return
		}
		_, _ = w.Write([]byte(`{"looks": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{RetryCount: 1})
	_, err := client.CompleteTheLook(context.Background(), CompleteTheLookParams{ProductID: "P1"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClient_RetryDoesNotKeepPartialDecode(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			// Valid JSON that decodes pdp_item before failing on looks.
			_, _ = w.Write([]byte(`{"pdp_item": {"product_id": "STALE"}, "looks": "oops"}`))
			return
		}
		_, _ = w.Write([]byte(`{"looks": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{RetryCount: 1})
	resp, err := client.CompleteTheLook(context.Background(), CompleteTheLookParams{ProductID: "P1"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Nil(t, resp.PDPItem, "fields from a failed decode must not survive into the retried result")
	assert.Empty(t, resp.Looks)
}

func TestClient_ErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"nested message", `{"error": {"message": "bad product"}}`, "bad product"},
		{"flat error string", `{"error": "bad product"}`, "bad product"},
		{"top-level message", `{"message": "bad product"}`, "bad product"},
		{"unrecognized body", `<html>oops</html>`, "upstream returned status 500"},
		{"empty body", ``, "upstream returned status 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body), http.StatusInternalServerError))
		})
	}
}

func TestClient_TrackEvent_PostsBody(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte(`{"success": true, "event_id": "E1"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{AppID: "demo-shop"})
	resp, err := client.TrackEvent(context.Background(), TrackEventParams{
		EventType: "product_view",
		ProductID: "P1",
		SessionID: "sess-1",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "product_view", gotBody["event_type"])
	assert.Equal(t, "P1", gotBody["product_id"])
	assert.Equal(t, "sess-1", gotBody["session_id"])
	assert.Equal(t, "demo-shop", gotBody["app_id"])
	assert.True(t, resp.Success)
	assert.Equal(t, "E1", resp.EventID)
}

func TestClient_UpdateItems_OmitsAbsentFields(t *testing.T) {
	var gotBody struct {
		Items []map[string]any `json:"items"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte(`{"success": true, "updated_count": 1, "failed_count": 0}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{})
	price := int64(4999)
	resp, err := client.UpdateItems(context.Background(), UpdateItemsParams{
		Items: []ItemUpdate{{ProductID: "P1", Price: &price}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.UpdatedCount)

	require.Len(t, gotBody.Items, 1)
	item := gotBody.Items[0]
	assert.Equal(t, "P1", item["product_id"])
	assert.Equal(t, float64(4999), item["price"])
	assert.NotContains(t, item, "sale_price")
	assert.NotContains(t, item, "in_stock")
	assert.NotContains(t, item, "on_sale")
}

func TestClient_CanceledDuringRetryDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server, Config{RetryCount: 5, RetryDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.CompleteTheLook(ctx, CompleteTheLookParams{ProductID: "P1"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeCanceled, code)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}
