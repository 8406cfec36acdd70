// Package secretstore holds the Kroger client secret.
//
// Three backends are available: an environment variable (read-only, for
// deployments where an orchestrator injects the secret), a file with 0600
// permissions, and the OS keyring. The server reads the secret once at
// startup; only the login command writes it.
package secretstore
