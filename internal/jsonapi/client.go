// Package jsonapi reads content back from the Drupal JSON:API to verify what
// a migration created, and checks that the media assets host is up.
package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhu-idc/idce2e/internal/constants"
	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
)

const (
	mediaType     = "application/vnd.api+json"
	maxBodyBytes  = 32 << 20
	jsonapiPrefix = "jsonapi"
)

// Client queries the JSON:API of one site.
type Client struct {
	base     *url.URL
	http     *http.Client
	username string
	password string
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTransport sets the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

// WithBasicAuth authenticates requests, which exposes unpublished content.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for the site at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, e2eerrors.Wrapf(e2eerrors.ErrConfigInvalidSite, "jsonapi base url %q", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: constants.DefaultJSONAPITimeout},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "jsonapi").Logger()
	return c, nil
}

// URL builds /jsonapi/<entity>/<bundle>, with ?filter[<field>]=<value> when
// field is set.
func (c *Client) URL(entity, bundle, field, value string) (string, error) {
	if entity == "" || bundle == "" {
		return "", e2eerrors.Wrap(e2eerrors.ErrEmptyValue, "jsonapi entity and bundle")
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.Join([]string{jsonapiPrefix, entity, bundle}, "/")
	if field != "" {
		q := url.Values{}
		q.Set("filter["+field+"]", value)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Get returns the resources of entity/bundle whose field equals value. An
// empty field lists the collection.
func (c *Client) Get(ctx context.Context, entity, bundle, field, value string) ([]Resource, error) {
	target, err := c.URL(entity, bundle, field, value)
	if err != nil {
		return nil, err
	}
	doc, err := c.fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

// GetSingle is Get for a filter that must match exactly one resource.
// Any other count is a *errors.CardinalityError.
func (c *Client) GetSingle(ctx context.Context, entity, bundle, field, value string) (*Resource, error) {
	resources, err := c.Get(ctx, entity, bundle, field, value)
	if err != nil {
		return nil, err
	}
	if len(resources) != 1 {
		return nil, &e2eerrors.CardinalityError{
			Selector: "jsonapi/" + entity + "/" + bundle,
			Text:     field + "=" + value,
			Count:    len(resources),
		}
	}
	return &resources[0], nil
}

// Resolve fetches the resource an identifier points at.
func (c *Client) Resolve(ctx context.Context, id Identifier) (*Resource, error) {
	entity, bundle, err := id.Type.Split()
	if err != nil {
		return nil, err
	}
	return c.GetSingle(ctx, entity, bundle, "id", id.ID)
}

// CheckAssets reports whether the media assets host answers 200 to a GET.
func (c *Client) CheckAssets(ctx context.Context, assetsURL string) error {
	if strings.TrimSpace(assetsURL) == "" {
		return e2eerrors.Wrapf(e2eerrors.ErrEmptyValue, "%s is not set", constants.EnvAssetsBaseURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetsURL, nil)
	if err != nil {
		return e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "assets url %q: %v", assetsURL, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: assets host %s is not up: %w", e2eerrors.ErrProbeTransport, assetsURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return e2eerrors.Wrapf(e2eerrors.ErrUnexpectedStatus, "assets host %s answered %d", assetsURL, resp.StatusCode)
	}
	return nil
}

// fetch GETs target and decodes the document.
func (c *Client) fetch(ctx context.Context, target string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, e2eerrors.Wrapf(e2eerrors.ErrInvalidArgument, "build request for %s: %v", target, err)
	}
	req.Header.Set("Accept", mediaType)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.logger.Debug().Str("url", target).Msg("retrieving")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", e2eerrors.ErrJSONAPI, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", e2eerrors.ErrJSONAPI, target, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: status %d: %w", e2eerrors.ErrJSONAPI, target, resp.StatusCode, e2eerrors.ErrUnexpectedStatus)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", e2eerrors.ErrJSONAPI, target, err)
	}
	return &doc, nil
}
