package parse_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mcdev12/dreamteams/go/clients"
)

// QueryOptions narrows a class query. Where is encoded as Parse's JSON constraint object.
type QueryOptions struct {
	Where map[string]any
	Order string
	Limit int
}

type CreatedObject struct {
	ObjectID  string `json:"objectId"`
	CreatedAt string `json:"createdAt"`
}

type UpdatedObject struct {
	UpdatedAt string `json:"updatedAt"`
}

func classEndpoint(className string) string {
	return fmt.Sprintf("%s/%s", ClassesEndpoint, className)
}

func objectEndpoint(className, objectID string) string {
	return fmt.Sprintf("%s/%s/%s", ClassesEndpoint, className, url.PathEscape(objectID))
}

// Query runs a class query and decodes the results array into out, which must be a pointer to a slice.
func (c *ParseClient) Query(ctx context.Context, className string, opts QueryOptions, sessionToken string, out any) error {
	q := url.Values{}
	if len(opts.Where) > 0 {
		where, err := json.Marshal(opts.Where)
		if err != nil {
			return fmt.Errorf("failed to marshal where clause: %w", err)
		}
		q.Set("where", string(where))
	}
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	resp, err := c.Get(ctx, classEndpoint(className), q, sessionHeaders(sessionToken))
	if err != nil {
		return wrap("query "+className, translateError(err))
	}

	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := clients.DecodeJSON(resp, &envelope); err != nil {
		return err
	}
	if len(envelope.Results) == 0 {
		return nil
	}
	return clients.DecodeJSON(envelope.Results, out)
}

// GetObject fetches one object by id into out.
func (c *ParseClient) GetObject(ctx context.Context, className, objectID, sessionToken string, out any) error {
	resp, err := c.Get(ctx, objectEndpoint(className, objectID), nil, sessionHeaders(sessionToken))
	if err != nil {
		return wrap("get "+className, translateError(err))
	}
	return clients.DecodeJSON(resp, out)
}

// CreateObject saves a new object and returns its assigned id.
func (c *ParseClient) CreateObject(ctx context.Context, className string, fields any, sessionToken string) (*CreatedObject, error) {
	body, err := clients.EncodeJSON(fields)
	if err != nil {
		return nil, err
	}

	resp, err := c.Post(ctx, classEndpoint(className), body, sessionHeaders(sessionToken))
	if err != nil {
		return nil, wrap("create "+className, translateError(err))
	}

	var created CreatedObject
	if err := clients.DecodeJSON(resp, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateObject writes the given fields onto an existing object.
func (c *ParseClient) UpdateObject(ctx context.Context, className, objectID string, fields any, sessionToken string) (*UpdatedObject, error) {
	body, err := clients.EncodeJSON(fields)
	if err != nil {
		return nil, err
	}

	resp, err := c.Put(ctx, objectEndpoint(className, objectID), body, sessionHeaders(sessionToken))
	if err != nil {
		return nil, wrap("update "+className, translateError(err))
	}

	var updated UpdatedObject
	if err := clients.DecodeJSON(resp, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteObject removes an object.
func (c *ParseClient) DeleteObject(ctx context.Context, className, objectID, sessionToken string) error {
	if _, err := c.Delete(ctx, objectEndpoint(className, objectID), sessionHeaders(sessionToken)); err != nil {
		return wrap("delete "+className, translateError(err))
	}
	return nil
}
