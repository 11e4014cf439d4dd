package marvel_client

const (
	// Base URL
	BaseURL = "https://gateway.marvel.com/v1/public"

	// API Endpoints
	CharactersEndpoint = "/characters"

	// Query parameters
	TimestampParam      = "ts"
	APIKeyParam         = "apikey"
	HashParam           = "hash"
	LimitParam          = "limit"
	OffsetParam         = "offset"
	NameStartsWithParam = "nameStartsWith"

	// Paging
	DefaultPageSize = 20
	MaxPageSize     = 100
)
