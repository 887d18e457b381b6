package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"storefront/commerce/internal/config"
	"storefront/commerce/internal/domain"
	"storefront/commerce/internal/proxy"
)

const (
	FormatGraphQL = "graphql"
	FormatHTML    = "html"

	defaultCircuitBreakerDelay = 30 * time.Minute
)

// CatalogClient fetches the full category list from the storefront catalog API
type CatalogClient interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

type catalogClient struct {
	rl            ratelimit.Limiter
	config        config.CatalogConfig
	url           string
	httpClient    *resty.Client
	proxySupplier proxy.ProxySupplier
	clock         clock.Clock

	// Circuit breaker for quota exceeded
	circuitBreakerMutex sync.RWMutex
	quotaExceededUntil  time.Time
	circuitBreakerDelay time.Duration
}

type Option func(*catalogClient)

func WithClock(c clock.Clock) Option {
	return func(client *catalogClient) { client.clock = c }
}

func WithCircuitBreakerDelay(d time.Duration) Option {
	return func(client *catalogClient) { client.circuitBreakerDelay = d }
}

func NewCatalogClient(cfg config.CatalogConfig, proxySupplier proxy.ProxySupplier, opts ...Option) CatalogClient {
	httpClient := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json, text/html;q=0.9").
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			httpClient.SetProxy(proxyURL)
			log.Infof("🔗 Using initial catalog proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	c := &catalogClient{
		rl:                  rl,
		config:              cfg,
		url:                 strings.TrimRight(cfg.BaseURL, "/") + cfg.CategoriesPath,
		httpClient:          httpClient,
		proxySupplier:       proxySupplier,
		clock:               clock.New(),
		circuitBreakerDelay: defaultCircuitBreakerDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *catalogClient) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var (
		categories []domain.Category
		err        error
	)

	switch c.config.Format {
	case FormatHTML:
		categories, err = c.fetchHTMLCategories(ctx)
	case FormatGraphQL, "":
		categories, err = c.fetchGraphQLCategories(ctx)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", c.config.Format)
	}
	if err != nil {
		return nil, err
	}

	log.Debugf("Fetched %d categories from %s", len(categories), c.url)
	return categories, nil
}

func (c *catalogClient) fetchGraphQLCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetHeader("Content-Type", "application/json").
			SetBody(graphQLRequest{Query: categoriesQuery}).
			Post(c.url)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	categories, err := decodeGraphQLCategories([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (c *catalogClient) fetchHTMLCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.Get(c.url)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category page: %w", err)
	}

	categories, err := parseCategoryPage(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category page: %w", err)
	}
	return categories, nil
}

func (c *catalogClient) isCircuitBreakerOpen() bool {
	c.circuitBreakerMutex.RLock()
	now := c.clock.Now()
	wasOpen := now.Before(c.quotaExceededUntil)
	wasTriggered := !c.quotaExceededUntil.IsZero()
	c.circuitBreakerMutex.RUnlock()

	if !wasOpen && wasTriggered {
		c.circuitBreakerMutex.Lock()
		if !c.quotaExceededUntil.IsZero() && !now.Before(c.quotaExceededUntil) {
			c.quotaExceededUntil = time.Time{}
			log.Infof("✅ Catalog circuit breaker closed - requests are allowed again")
		}
		c.circuitBreakerMutex.Unlock()
	}

	return wasOpen
}

func (c *catalogClient) triggerCircuitBreaker() {
	c.circuitBreakerMutex.Lock()
	defer c.circuitBreakerMutex.Unlock()

	c.quotaExceededUntil = c.clock.Now().Add(c.circuitBreakerDelay)
	log.Warnf("🚫 Catalog circuit breaker opened until %v", c.quotaExceededUntil.Format("15:04:05"))
}

func (c *catalogClient) remainingCircuitBreakerTime() time.Duration {
	c.circuitBreakerMutex.RLock()
	defer c.circuitBreakerMutex.RUnlock()

	remaining := c.quotaExceededUntil.Sub(c.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func isQuotaExceeded(resp *resty.Response) bool {
	return resp.StatusCode() == 429 || strings.Contains(resp.String(), "Quota Exceeded")
}

// do sends one throttled request. On a quota response it switches proxy and retries
// once; if that also fails the circuit breaker opens.
func (c *catalogClient) do(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) (string, error) {
	if c.isCircuitBreakerOpen() {
		remaining := c.remainingCircuitBreakerTime()
		return "", fmt.Errorf("circuit breaker is open - requests disabled for %v more", remaining.Round(time.Second))
	}

	c.rl.Take()

	resp, err := send(c.httpClient.R().SetContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if isQuotaExceeded(resp) {
		log.Warnf("🚫 Catalog quota exceeded for %s", c.url)

		if c.proxySupplier != nil && c.proxySupplier.Len() > 1 {
			newProxy := c.proxySupplier.Get()
			log.Infof("🔄 Switching to catalog proxy: %s", newProxy)
			c.httpClient.SetProxy(newProxy)

			retryResp, retryErr := send(c.httpClient.R().SetContext(ctx))
			if retryErr == nil && !retryResp.IsError() && !isQuotaExceeded(retryResp) {
				log.Infof("✅ Retry successful with new proxy")
				return retryResp.String(), nil
			}
		}

		c.triggerCircuitBreaker()
		return "", fmt.Errorf("quota exceeded - circuit breaker activated for %v", c.circuitBreakerDelay)
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return resp.String(), nil
}
