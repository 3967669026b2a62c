package catalogservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const cachePrefix = "catalog:"

// Client клиент каталога бизнесов и услуг
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient создает новый экземпляр клиента каталога
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// UseRedisCache включает кэширование ответов каталога в Redis
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// GetBusiness получает бизнес по ID
func (c *Client) GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	cacheKey := fmt.Sprintf("%sbusiness:%d", cachePrefix, businessID)

	var business Business
	if c.readCache(ctx, cacheKey, &business) {
		return business.ToDomain(), nil
	}

	url := fmt.Sprintf("%s/internal/businesses/%d", c.baseURL, businessID)
	if err := c.doGet(ctx, url, &business, ErrBusinessNotFound); err != nil {
		return nil, err
	}

	c.writeCache(ctx, cacheKey, business)
	return business.ToDomain(), nil
}

// GetService получает услугу бизнеса
func (c *Client) GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error) {
	cacheKey := fmt.Sprintf("%sservice:%d:%d", cachePrefix, businessID, serviceID)

	var service Service
	if c.readCache(ctx, cacheKey, &service) {
		return service.ToDomain(), nil
	}

	url := fmt.Sprintf("%s/internal/businesses/%d/services/%d", c.baseURL, businessID, serviceID)
	if err := c.doGet(ctx, url, &service, ErrServiceNotFound); err != nil {
		return nil, err
	}

	if service.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: service %d has non-positive duration %d", ErrInvalidResponse, serviceID, service.DurationMinutes)
	}

	c.writeCache(ctx, cacheKey, service)
	return service.ToDomain(), nil
}

func (c *Client) doGet(ctx context.Context, url string, out interface{}, notFound error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out interface{}) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}

	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("catalog cache read failed for key=%s: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(val, out); err != nil {
		c.log.Warn("catalog cache entry key=%s is corrupted: %v", key, err)
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val interface{}) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(val)
	if err != nil {
		return
	}

	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.log.Warn("catalog cache write failed for key=%s: %v", key, err)
	}
}
