package marvel_client

import (
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dreamteams/go/clients"
)

type MarvelClient struct {
	*clients.BaseClient
	signer *Signer
}

// NewMarvelClient builds a catalog client. An empty baseURL selects the public gateway.
func NewMarvelClient(baseURL, publicKey, privateKey string, clock clockwork.Clock) *MarvelClient {
	if baseURL == "" {
		baseURL = BaseURL
	}

	client := &MarvelClient{
		BaseClient: clients.NewBaseClient(baseURL),
		signer:     NewSigner(publicKey, privateKey, clock),
	}

	client.SetHeader("Accept", "application/json")

	return client
}
