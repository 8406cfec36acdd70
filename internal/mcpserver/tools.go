package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"

	"localhost/kroger-mcp/internal/kroger"
)

// DefaultZipCode is used when a store lookup omits the zip code.
const DefaultZipCode = "80446"

// NearestStoreInput is the argument payload for get_nearest_store_information.
type NearestStoreInput struct {
	ZipCode string `json:"zip_code,omitempty"`
}

// NearestStoreOutput carries the upstream store record.
type NearestStoreOutput struct {
	Location kroger.Location `json:"location"`
}

// ProductSearchInput is the argument payload for search_products.
type ProductSearchInput struct {
	StoreID string `json:"store_id"`
	Query   string `json:"query"`
	Limit   int    `json:"limit,omitempty"`
}

// ProductSearchOutput carries the upstream product records.
type ProductSearchOutput struct {
	Products []kroger.Product `json:"products"`
}

// toolset binds the tool handlers to one shared retailer client.
// The client's token source carries its own mutual exclusion, so the host
// may dispatch tool calls concurrently.
type toolset struct {
	client *kroger.Client
}

func (t *toolset) nearestStore(ctx context.Context, input *NearestStoreInput) (*schema.CallToolResult, *jsonrpc.Error) {
	zipCode := input.ZipCode
	if zipCode == "" {
		zipCode = DefaultZipCode
	}

	invocationID := uuid.NewString()
	slog.InfoContext(ctx, "resolving nearest store", "invocation_id", invocationID, "zip_code", zipCode)

	location, err := t.client.NearestLocation(ctx, zipCode)
	if err != nil {
		slog.ErrorContext(ctx, "store lookup failed", "invocation_id", invocationID, "error", err)
		return failedCall(err)
	}

	return successfulCall(location, &NearestStoreOutput{Location: *location})
}

func (t *toolset) searchProducts(ctx context.Context, input *ProductSearchInput) (*schema.CallToolResult, *jsonrpc.Error) {
	invocationID := uuid.NewString()
	slog.InfoContext(ctx, "searching products",
		"invocation_id", invocationID, "store_id", input.StoreID, "query", input.Query, "limit", input.Limit)

	products, err := t.client.SearchProducts(ctx, input.StoreID, input.Query, input.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "product search failed", "invocation_id", invocationID, "error", err)
		return failedCall(err)
	}
	if products == nil {
		// An empty result set is a valid outcome; emit [] rather than null.
		products = []kroger.Product{}
	}

	return successfulCall(products, &ProductSearchOutput{Products: products})
}

// successfulCall stringifies the upstream payload into text content and
// mirrors the output wrapper as structured content. The wrapper must match
// the schema advertised for the tool, so hosts validating structuredContent
// against outputSchema accept the result.
func successfulCall(payload, output any) (*schema.CallToolResult, *jsonrpc.Error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	wrapped, err := json.Marshal(output)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	var structured map[string]interface{}
	if err := json.Unmarshal(wrapped, &structured); err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}

	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			{Type: "text", Text: string(data)},
		},
		StructuredContent: structured,
	}, nil
}

// failedCall maps domain errors onto the protocol. Zero results for a postal
// code is a data-level condition the model can react to, so it becomes an
// errored tool result; authentication, upstream, and transport failures
// become JSON-RPC errors.
func failedCall(err error) (*schema.CallToolResult, *jsonrpc.Error) {
	var notFound *kroger.NotFoundError
	if errors.As(err, &notFound) {
		isError := true
		return &schema.CallToolResult{
			IsError: &isError,
			Content: []schema.CallToolResultContentElem{
				{Type: "text", Text: notFound.Error()},
			},
		}, nil
	}
	return nil, jsonrpc.NewInternalError(err.Error(), nil)
}
