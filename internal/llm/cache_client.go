package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/martiendejong/Hazina-sub003/internal/logging"
)

// cacheClient memoizes completions keyed on the full message list. Identical
// concurrent requests are collapsed into one upstream call via singleflight.
type cacheClient struct {
	underlying Client
	cache      *lru.Cache[string, *Response]
	group      singleflight.Group
	logger     logging.Logger
}

var _ Client = (*cacheClient)(nil)

// NewCachingClient wraps a client with an LRU response cache of the given
// size. A size <= 0 disables caching and returns the client unchanged.
func NewCachingClient(client Client, size int) (Client, error) {
	if size <= 0 {
		return client, nil
	}
	cache, err := lru.New[string, *Response](size)
	if err != nil {
		return nil, fmt.Errorf("create llm cache: %w", err)
	}
	return &cacheClient{
		underlying: client,
		cache:      cache,
		logger:     logging.NewComponentLogger("llm-cache"),
	}, nil
}

func (c *cacheClient) Complete(ctx context.Context, req Request) (*Response, error) {
	key := cacheKey(c.underlying.Model(), req)

	if resp, ok := c.cache.Get(key); ok {
		c.logger.Debug("cache hit key=%s", key[:12])
		return cloneResponse(resp), nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		if resp, ok := c.cache.Get(key); ok {
			return resp, nil
		}
		resp, err := c.underlying.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneResponse(result.(*Response)), nil
}

func (c *cacheClient) Model() string {
	return c.underlying.Model()
}

// TotalCost proxies to the underlying client when it reports cost. Cache hits
// add nothing, which is the point.
func (c *cacheClient) TotalCost() float64 {
	if reporter, ok := c.underlying.(CostReporter); ok {
		return reporter.TotalCost()
	}
	return 0
}

func cacheKey(model string, req Request) string {
	h := sha256.New()
	h.Write([]byte(model))
	enc := json.NewEncoder(h)
	_ = enc.Encode(req.Messages)
	_ = enc.Encode(req.Temperature)
	_ = enc.Encode(req.MaxTokens)
	return hex.EncodeToString(h.Sum(nil))
}

func cloneResponse(resp *Response) *Response {
	if resp == nil {
		return nil
	}
	clone := *resp
	return &clone
}
