package kroger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// normalizeJSON converts a JSON string to its canonical form for comparison.
// It removes whitespace and key-order differences to enable semantic
// equivalence testing.
func normalizeJSON(t *testing.T, s string) string {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("Invalid JSON: %v\nJSON: %s", err, s)
	}
	normalized, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to normalize JSON: %v", err)
	}
	return string(normalized)
}

// newTestClient builds a Client against a test server that serves the token
// endpoint itself and delegates resource paths to the given handlers.
func newTestClient(t *testing.T, handlers map[string]http.HandlerFunc) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"T1","expires_in":3600}`)
	})
	for path, handler := range handlers {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer T1" {
				t.Errorf("Authorization = %q, want Bearer T1", got)
			}
			handler(w, r)
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(Credentials{ClientID: "id", ClientSecret: "secret"},
		WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNearestLocation(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		wantLocationID string
	}{
		{
			name:           "single location",
			response:       `{"data":[{"locationId":"01400943"}]}`,
			wantLocationID: "01400943",
		},
		{
			name: "multiple locations returns first in upstream order",
			response: `{"data":[
				{"locationId":"01400943","name":"Kroger Pemberton"},
				{"locationId":"01400999","name":"Kroger Downtown"}]}`,
			wantLocationID: "01400943",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, map[string]http.HandlerFunc{
				"/locations": func(w http.ResponseWriter, r *http.Request) {
					if got := r.URL.Query().Get("filter.zipCode.near"); got != "39180" {
						t.Errorf("filter.zipCode.near = %q, want 39180", got)
					}
					fmt.Fprint(w, tt.response)
				},
			})

			location, err := client.NearestLocation(context.Background(), "39180")
			if err != nil {
				t.Fatalf("NearestLocation: %v", err)
			}
			if location.LocationID != tt.wantLocationID {
				t.Errorf("LocationID = %q, want %q", location.LocationID, tt.wantLocationID)
			}
		})
	}
}

func TestNearestLocationPassesRecordVerbatim(t *testing.T) {
	// Fields this client has never heard of must survive the round trip.
	record := `{"locationId":"01400943","chain":"KROGER","address":{"zipCode":"39180"},"departments":[{"name":"bakery"}]}`

	client := newTestClient(t, map[string]http.HandlerFunc{
		"/locations": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"data":[%s]}`, record)
		},
	})

	location, err := client.NearestLocation(context.Background(), "39180")
	if err != nil {
		t.Fatalf("NearestLocation: %v", err)
	}

	got, err := json.Marshal(location)
	if err != nil {
		t.Fatalf("marshaling location: %v", err)
	}
	if normalizeJSON(t, string(got)) != normalizeJSON(t, record) {
		t.Errorf("location not verbatim:\ngot  %s\nwant %s", got, record)
	}
}

func TestNearestLocationNoResults(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/locations": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[]}`)
		},
	})

	_, err := client.NearestLocation(context.Background(), "99999")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("NearestLocation error = %v, want *NotFoundError", err)
	}
	if notFound.ZipCode != "99999" {
		t.Errorf("ZipCode = %q, want 99999", notFound.ZipCode)
	}
}

func TestNearestLocationUpstreamFailure(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/locations": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"errors":{"reason":"internal"}}`, http.StatusInternalServerError)
		},
	})

	_, err := client.NearestLocation(context.Background(), "39180")
	var upstreamErr *UpstreamRequestError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("NearestLocation error = %v, want *UpstreamRequestError", err)
	}
	if upstreamErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want %d", upstreamErr.StatusCode, http.StatusInternalServerError)
	}
	if upstreamErr.Body == "" {
		t.Error("Body is empty, want response body for diagnosis")
	}
}

func TestSearchProducts(t *testing.T) {
	record := `{"product_id":"1","description":"Milk 1gal","price":3.99}`

	client := newTestClient(t, map[string]http.HandlerFunc{
		"/products": func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			if got := query.Get("filter.term"); got != "milk" {
				t.Errorf("filter.term = %q, want milk", got)
			}
			if got := query.Get("filter.limit"); got != "5" {
				t.Errorf("filter.limit = %q, want 5", got)
			}
			if got := query.Get("filter.locationId"); got != "01400943" {
				t.Errorf("filter.locationId = %q, want 01400943", got)
			}
			fmt.Fprintf(w, `{"data":[%s]}`, record)
		},
	})

	products, err := client.SearchProducts(context.Background(), "01400943", "milk", 5)
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("len(products) = %d, want 1", len(products))
	}

	product := products[0]
	if product.ProductID != "1" {
		t.Errorf("ProductID = %q, want 1", product.ProductID)
	}
	if product.Description != "Milk 1gal" {
		t.Errorf("Description = %q, want Milk 1gal", product.Description)
	}
	if product.Price != 3.99 {
		t.Errorf("Price = %v, want 3.99", product.Price)
	}

	got, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("marshaling product: %v", err)
	}
	if normalizeJSON(t, string(got)) != normalizeJSON(t, record) {
		t.Errorf("product not verbatim:\ngot  %s\nwant %s", got, record)
	}
}

func TestSearchProductsPassesRecordVerbatim(t *testing.T) {
	// Fields this client has never heard of must survive the round trip.
	record := `{"product_id":"0001111041700","description":"Milk 1gal","brand":"Kroger",
		"items":[{"size":"1 gal","inventory":{"stockLevel":"HIGH"}}],
		"images":[{"perspective":"front","sizes":[{"size":"large","url":"https://example.invalid/milk.jpg"}]}]}`

	client := newTestClient(t, map[string]http.HandlerFunc{
		"/products": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"data":[%s]}`, record)
		},
	})

	products, err := client.SearchProducts(context.Background(), "01400943", "milk", 10)
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("len(products) = %d, want 1", len(products))
	}

	got, err := json.Marshal(products[0])
	if err != nil {
		t.Fatalf("marshaling product: %v", err)
	}
	if normalizeJSON(t, string(got)) != normalizeJSON(t, record) {
		t.Errorf("product not verbatim:\ngot  %s\nwant %s", got, record)
	}
}

func TestSearchProductsEmptyResultIsNotAnError(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/products": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[]}`)
		},
	})

	products, err := client.SearchProducts(context.Background(), "01400943", "unobtainium", 10)
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("len(products) = %d, want 0", len(products))
	}
}

func TestSearchProductsDefaultLimit(t *testing.T) {
	for _, limit := range []int{0, -3} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			client := newTestClient(t, map[string]http.HandlerFunc{
				"/products": func(w http.ResponseWriter, r *http.Request) {
					if got := r.URL.Query().Get("filter.limit"); got != "10" {
						t.Errorf("filter.limit = %q, want 10", got)
					}
					fmt.Fprint(w, `{"data":[]}`)
				},
			})

			if _, err := client.SearchProducts(context.Background(), "01400943", "milk", limit); err != nil {
				t.Fatalf("SearchProducts: %v", err)
			}
		})
	}
}

func TestSearchProductsUpstreamFailure(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/products": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		},
	})

	_, err := client.SearchProducts(context.Background(), "01400943", "milk", 10)
	var upstreamErr *UpstreamRequestError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("SearchProducts error = %v, want *UpstreamRequestError", err)
	}
	if upstreamErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want %d", upstreamErr.StatusCode, http.StatusTooManyRequests)
	}
}

func TestAuthenticationFailurePropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(Credentials{ClientID: "id", ClientSecret: "bad"},
		WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.NearestLocation(context.Background(), "39180")
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("NearestLocation error = %v, want *AuthenticationError", err)
	}
}

func TestNewClientMissingCredentials(t *testing.T) {
	_, err := NewClient(Credentials{ClientID: "id"})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("NewClient error = %v, want *ConfigurationError", err)
	}
}
