package marvel_client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mcdev12/dreamteams/go/clients"
)

// ErrNotFound is returned when the catalog has no character for an id.
var ErrNotFound = errors.New("character not found")

type Image struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
}

// URL joins path and extension and forces the https scheme.
func (i Image) URL() string {
	if i.Path == "" {
		return ""
	}
	path := i.Path
	if strings.HasPrefix(path, "http://") {
		path = "https://" + strings.TrimPrefix(path, "http://")
	}
	if i.Extension == "" {
		return path
	}
	return path + "." + i.Extension
}

type Character struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   Image  `json:"thumbnail"`
}

type CharacterDataContainer struct {
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
	Total   int         `json:"total"`
	Count   int         `json:"count"`
	Results []Character `json:"results"`
}

type CharacterDataWrapper struct {
	Code   int                    `json:"code"`
	Status string                 `json:"status"`
	Data   CharacterDataContainer `json:"data"`
}

// ListCharactersParams selects one page of the catalog.
type ListCharactersParams struct {
	Offset         int
	Limit          int
	NameStartsWith string
}

func (c *MarvelClient) authQuery() url.Values {
	ts, apiKey, hash := c.signer.AuthParams()
	q := url.Values{}
	q.Set(TimestampParam, ts)
	q.Set(APIKeyParam, apiKey)
	q.Set(HashParam, hash)
	return q
}

// ListCharacters fetches one page of characters.
func (c *MarvelClient) ListCharacters(ctx context.Context, params ListCharactersParams) (*CharacterDataContainer, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	q := c.authQuery()
	q.Set(LimitParam, strconv.Itoa(limit))
	q.Set(OffsetParam, strconv.Itoa(params.Offset))
	if params.NameStartsWith != "" {
		q.Set(NameStartsWithParam, params.NameStartsWith)
	}

	body, err := c.Get(ctx, CharactersEndpoint, q, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	var response CharacterDataWrapper
	if err := clients.DecodeJSON(body, &response); err != nil {
		return nil, err
	}

	return &response.Data, nil
}

// GetCharacter fetches a single character by id.
func (c *MarvelClient) GetCharacter(ctx context.Context, id int) (*Character, error) {
	endpoint := fmt.Sprintf("%s/%d", CharactersEndpoint, id)
	body, err := c.Get(ctx, endpoint, c.authQuery(), nil)
	if err != nil {
		var statusErr *clients.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get character %d: %w", id, err)
	}

	var response CharacterDataWrapper
	if err := clients.DecodeJSON(body, &response); err != nil {
		return nil, err
	}

	if len(response.Data.Results) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	return &response.Data.Results[0], nil
}
