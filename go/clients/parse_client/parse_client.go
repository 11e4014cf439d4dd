package parse_client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/dreamteams/go/clients"
)

type ParseClient struct {
	*clients.BaseClient
}

// NewParseClient builds a client for a Parse Server. An empty serverURL selects back4app.
func NewParseClient(serverURL, applicationID, restAPIKey string) *ParseClient {
	if serverURL == "" {
		serverURL = BaseURL
	}

	client := &ParseClient{
		BaseClient: clients.NewBaseClient(serverURL),
	}

	client.SetHeader(ApplicationIDHeader, applicationID)
	if restAPIKey != "" {
		client.SetHeader(RESTAPIKeyHeader, restAPIKey)
	}

	return client
}

// Error is the error payload returned by Parse Server.
type Error struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"error"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsObjectNotFound reports whether err is Parse's "object not found" answer.
func IsObjectNotFound(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Code == CodeObjectNotFound
}

// translateError converts a non-2xx response into *Error when the body carries one.
func translateError(err error) error {
	var statusErr *clients.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	var perr Error
	if jsonErr := json.Unmarshal(statusErr.Body, &perr); jsonErr != nil || perr.Message == "" {
		return err
	}
	perr.StatusCode = statusErr.StatusCode
	return &perr
}

func sessionHeaders(sessionToken string) map[string]string {
	if sessionToken == "" {
		return nil
	}
	return map[string]string{SessionTokenHeader: sessionToken}
}

func wrap(op string, err error) error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
