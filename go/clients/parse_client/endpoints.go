package parse_client

const (
	// Base URL
	BaseURL = "https://parseapi.back4app.com"

	// API Endpoints
	UsersEndpoint   = "/users"
	LoginEndpoint   = "/login"
	LogoutEndpoint  = "/logout"
	ClassesEndpoint = "/classes"

	// Headers
	ApplicationIDHeader    = "X-Parse-Application-Id"
	RESTAPIKeyHeader       = "X-Parse-REST-API-Key"
	SessionTokenHeader     = "X-Parse-Session-Token"
	RevocableSessionHeader = "X-Parse-Revocable-Session"

	// Error codes
	CodeObjectNotFound      = 101
	CodeUsernameTaken       = 202
	CodeInvalidSessionToken = 209
)
