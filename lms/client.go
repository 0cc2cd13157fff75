package lms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/s0up4200/lmsctl/cache"
	"github.com/s0up4200/lmsctl/dispatch"
	"github.com/s0up4200/lmsctl/oauth"
	"github.com/s0up4200/lmsctl/xmlwire"
)

// maxListResults caps connectivity probes and other bounded listings.
const maxListResults = 5000

// Client represents a training registry API client. Lookups of nodes,
// qualifications, requirements, attribute values and thumbnails are memoized
// for the lifetime of the client.
type Client struct {
	dispatcher *dispatch.Dispatcher
	logger     zerolog.Logger
	opts       options

	nodes          *cache.Store[NodeKey, *NodeInfo]
	qualifications *cache.Store[QualificationKey, *QualificationInfo]
	requirements   *cache.Store[RequirementKey, *RequirementInfo]
	attributes     *cache.Store[AttributeKey, []AttributeValue]
	thumbnails     *cache.Store[ThumbnailKey, *ThumbnailInfo]
}

// CacheStats reports hits and misses per cache.
type CacheStats struct {
	Nodes          cache.Stats
	Qualifications cache.Stats
	Requirements   cache.Stats
	Attributes     cache.Stats
	Thumbnails     cache.Stats
}

// NewClient creates a new training registry client
func NewClient(baseURL string, creds oauth.Credentials, logger zerolog.Logger, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d, err := dispatch.New(baseURL, creds, logger, o.dispatchOpts...)
	if err != nil {
		return nil, err
	}

	client := &Client{
		dispatcher:     d,
		logger:         logger,
		opts:           o,
		nodes:          cache.New[NodeKey, *NodeInfo]("nodes", logger),
		qualifications: cache.New[QualificationKey, *QualificationInfo]("qualifications", logger),
		requirements:   cache.New[RequirementKey, *RequirementInfo]("requirements", logger),
		attributes:     cache.New[AttributeKey, []AttributeValue]("attributes", logger),
		thumbnails:     cache.New[ThumbnailKey, *ThumbnailInfo]("thumbnails", logger),
	}

	if o.pingUploader {
		if err := d.PingUploader(context.Background()); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// TestConnection checks that the service accepts our credentials.
func (c *Client) TestConnection(ctx context.Context) error {
	spec := SimpleQuerySpec{MaxResults: 1, NodeState: NodeStateActive}
	if _, err := queryList[Node](ctx, c, "TestConnection", "/nodes", spec); err != nil {
		return err
	}
	c.logger.Debug().Str("url", c.dispatcher.BaseURL()).Msg("Successfully connected to LMS")
	return nil
}

// PingUploader checks that the content uploader next to the service answers.
func (c *Client) PingUploader(ctx context.Context) error {
	return c.dispatcher.PingUploader(ctx)
}

// ResetCache drops every memoized lookup.
func (c *Client) ResetCache() {
	c.nodes.Reset()
	c.qualifications.Reset()
	c.requirements.Reset()
	c.attributes.Reset()
	c.thumbnails.Reset()
}

// CacheStats returns hit and miss counts for each cache.
func (c *Client) CacheStats() CacheStats {
	return CacheStats{
		Nodes:          c.nodes.Stats(),
		Qualifications: c.qualifications.Stats(),
		Requirements:   c.requirements.Stats(),
		Attributes:     c.attributes.Stats(),
		Thumbnails:     c.thumbnails.Stats(),
	}
}

// resolve goes through store unless caching is off.
func resolve[K cache.Key[V], V any](ctx context.Context, c *Client, store *cache.Store[K, V], key K, fetch cache.FetchFunc[V]) (V, error) {
	if !c.opts.caching {
		if err := cache.Validate(key); err != nil {
			var zero V
			return zero, err
		}
		return fetch(ctx)
	}
	return store.Resolve(ctx, key, fetch)
}

// forget drops entries matching key from store when the client was built
// WithInvalidateOnWrite.
func forget[K cache.Key[V], V any](c *Client, store *cache.Store[K, V], key K) {
	if c.opts.caching && c.opts.invalidate {
		store.Invalidate(key)
	}
}

// remember adds a listing result to store.
func remember[K cache.Key[V], V any](c *Client, store *cache.Store[K, V], key K, v V) {
	if !c.opts.caching {
		return
	}
	if err := store.Add(key, v); err != nil {
		c.logger.Warn().Err(err).Msg("Skipping cache entry")
	}
}

func queryList[T any](ctx context.Context, c *Client, op, endpoint string, spec SimpleQuerySpec) ([]T, error) {
	body, err := c.dispatcher.Send(ctx, op, http.MethodPost, endpoint, nil, spec)
	if err != nil {
		return nil, err
	}
	return dispatch.DecodeList[T](c.dispatcher, op, body)
}

func getList[T any](ctx context.Context, c *Client, op, endpoint string, query url.Values) ([]T, error) {
	body, err := c.dispatcher.Get(ctx, op, endpoint, query)
	if err != nil {
		return nil, err
	}
	return dispatch.DecodeList[T](c.dispatcher, op, body)
}

// getOne fetches a single object. An empty body is ErrNotFound.
func getOne[T any](ctx context.Context, c *Client, op, endpoint string, query url.Values) (*T, error) {
	body, err := c.dispatcher.Get(ctx, op, endpoint, query)
	if err != nil {
		return nil, err
	}
	if xmlwire.IsEmpty(body) {
		return nil, fmt.Errorf("%s %s: %w", op, endpoint, ErrNotFound)
	}
	v := new(T)
	if err := c.dispatcher.Decode(op, body, v); err != nil {
		return nil, err
	}
	return v, nil
}

// submit sends payload and decodes the ServiceResult envelope. Empty bodies
// and unsuccessful results are application errors.
func submit[T any](ctx context.Context, c *Client, op, method, endpoint string, query url.Values, payload any) (*ServiceResult[T], error) {
	body, err := c.dispatcher.Send(ctx, op, method, endpoint, query, payload)
	if err != nil {
		return nil, err
	}
	if xmlwire.IsEmpty(body) {
		return nil, c.rejected(op, "empty response", body)
	}

	result := new(ServiceResult[T])
	if err := c.dispatcher.Decode(op, body, result); err != nil {
		return nil, err
	}
	if !result.IsSuccess() {
		return nil, c.rejected(op, result.Message, body)
	}
	return result, nil
}

// single picks the only element of items, or reports ErrNotFound or
// ErrAmbiguousMatch.
func single[T any](c *Client, op string, items []T, match func(T) bool, what string) (T, error) {
	var (
		found T
		count int
	)
	for _, item := range items {
		if match(item) {
			if count == 0 {
				found = item
			}
			count++
		}
	}

	switch count {
	case 0:
		var zero T
		return zero, fmt.Errorf("%s: %w", what, ErrNotFound)
	case 1:
		return found, nil
	default:
		var zero T
		err := fmt.Errorf("%w: %d results for %s", ErrAmbiguousMatch, count, what)
		return zero, c.dispatcher.Report(op, &dispatch.ProtocolError{Op: op, Err: err})
	}
}

func (c *Client) rejected(op, message string, body []byte) error {
	return c.dispatcher.Report(op, &dispatch.ApplicationError{Op: op, Message: message, Body: string(body)})
}

func (c *Client) precondition(op string, err error) error {
	return c.dispatcher.Report(op, &dispatch.PreconditionError{Op: op, Err: err})
}

// requireNode resolves a parent node an operation cannot proceed without.
// Any failure other than cancellation becomes a PreconditionError wrapping
// sentinel.
func (c *Client) requireNode(ctx context.Context, op string, sentinel error, parentID int, name string, typ NodeType, sub NodeSubType) (*NodeInfo, error) {
	node, err := c.GetNode(ctx, parentID, name, typ, sub)
	if err == nil {
		return node, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	cause := fmt.Errorf("%w under %d named %q", sentinel, parentID, name)
	if IsNotFound(err) {
		return nil, c.precondition(op, cause)
	}

	// the lookup failure was reported where it happened
	wrapped := &dispatch.PreconditionError{Op: op, Err: fmt.Errorf("%w: %w", cause, err)}
	if dispatch.Classify(err) == dispatch.KindUnknown {
		return nil, c.dispatcher.Report(op, wrapped)
	}
	c.logger.Debug().Err(wrapped).Str("op", op).Msg("Precondition failed")
	return nil, wrapped
}

func optionalID(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}
