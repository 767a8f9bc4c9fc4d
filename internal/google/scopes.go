package google

// DefaultOAuthScopes are the Google OAuth scopes inboxtasks requires.
//
// The scopes provide access to:
//   - Gmail: read-only (unread message listing and retrieval)
//   - Google Tasks: full access (persistent task store backend)
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail scope
	"https://www.googleapis.com/auth/gmail.readonly",

	// Google Tasks scope
	"https://www.googleapis.com/auth/tasks",
}
