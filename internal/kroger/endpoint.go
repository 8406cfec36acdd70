package kroger

const (
	// DefaultBaseURL is the public Kroger API root.
	DefaultBaseURL = "https://api.kroger.com/v1"

	// ScopeProductCompact grants read access to product and location data.
	// The client-credentials grant is scoped to the application itself,
	// not a user.
	ScopeProductCompact = "product.compact"

	// tokenPath is the OAuth2 token endpoint relative to the API root.
	tokenPath = "/connect/oauth2/token"
)
