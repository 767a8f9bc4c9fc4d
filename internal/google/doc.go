// Package google provides OAuth2 authentication and token management for
// the Google APIs used by inboxtasks.
//
// Tokens are stored per account in the user cache directory. The pipeline
// only consumes the resulting HTTP client; the authorization flow itself is
// a thin bootstrap around golang.org/x/oauth2.
package google
