// Package kroger provides a thin client for the Kroger public REST API:
// client-credentials token management plus two read-only operations,
// nearest-store lookup by postal code and store-scoped product search.
//
// # Token lifecycle
//
// TokenSource owns the single cached access token and implements
// oauth2.TokenSource, so the Client attaches bearer credentials through a
// standard oauth2.Transport:
//
//	client, err := kroger.NewClient(kroger.Credentials{ClientID: id, ClientSecret: secret})
//
// # Errors
//
// Failures are typed, never swallowed or retried: ConfigurationError
// (missing credential at construction), AuthenticationError (token endpoint
// rejected the exchange), UpstreamRequestError (resource endpoint returned a
// non-success status), NotFoundError (no store near the postal code).
// A product search with zero matches is a normal empty result, not an error;
// a postal code with no nearby store is exceptional. The asymmetry is
// deliberate.
package kroger
