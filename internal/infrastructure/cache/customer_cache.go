package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"customer-engine/internal/domain/customer"
	"customer-engine/internal/infrastructure/monitoring"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "customer:"

// Client is the subset of *redis.Client the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ Client = (*redis.Client)(nil)

// cachedCustomer is the stored form. It keeps the password, which the
// customer JSON encoding omits, so a hit returns the complete record.
type cachedCustomer struct {
	CustomerID  int64     `json:"customerId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Age         int       `json:"age"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	IsProMember bool      `json:"isProMember"`
}

// fill tracks the lookups of one id that are reading the store to populate
// the cache. A write bumps gen, and a fill that started under an older gen
// must not write its record back.
type fill struct {
	gen     uint64
	readers int
}

// CachedCustomerRepository is a read-through cache for lookups by id. Every
// other read goes straight to the wrapped store; writes invalidate the key.
// Cache failures are logged and never surface to callers.
//
// Fills are only ordered against writes made through the same instance. Writes
// from another process can leave a stale entry until ttl expires.
type CachedCustomerRepository struct {
	next   customer.CustomerRepository
	client Client
	ttl    time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	fills map[int64]*fill
}

var _ customer.CustomerRepository = (*CachedCustomerRepository)(nil)

func NewCachedCustomerRepository(next customer.CustomerRepository, client Client, ttl time.Duration, logger *slog.Logger) *CachedCustomerRepository {
	if next == nil {
		panic("customer repository cannot be nil for CachedCustomerRepository")
	}
	if client == nil {
		panic("redis client cannot be nil for CachedCustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCachedCustomerRepository, using default stderr handler")
	}
	return &CachedCustomerRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "CachedCustomerRepository"),
		fills:  make(map[int64]*fill),
	}
}

func Key(customerID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, customerID)
}

func (r *CachedCustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	return r.next.FindAll(ctx)
}

func (r *CachedCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.next.FindByEmail(ctx, email)
}

// FindByID serves from the cache when it can. A context marked with
// customer.WithConsistentRead reads the store directly and leaves the cache alone.
func (r *CachedCustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	if customer.ConsistentReadRequested(ctx) {
		return r.next.FindByID(ctx, customerID)
	}
	key := Key(customerID)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedCustomer
		jsonErr := json.Unmarshal(data, &cached)
		if jsonErr == nil {
			monitoring.RecordCacheLookup("hit")
			return cached.toCustomer(), nil
		}
		r.logger.WarnContext(ctx, "Discarding undecodable cache entry", slog.String("key", key), slog.Any("error", jsonErr))
		monitoring.RecordCacheLookup("error")
	case errors.Is(err, redis.Nil):
		monitoring.RecordCacheLookup("miss")
	default:
		r.logger.WarnContext(ctx, "Cache read failed, falling back to store", slog.String("key", key), slog.Any("error", err))
		monitoring.RecordCacheLookup("error")
	}

	gen := r.beginFill(customerID)
	cust, err := r.next.FindByID(ctx, customerID)
	if err != nil {
		r.endFill(ctx, customerID, gen, nil)
		return nil, err
	}
	r.endFill(ctx, customerID, gen, cust)
	return cust, nil
}

func (r *CachedCustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if err := r.next.Save(ctx, cust); err != nil {
		return err
	}
	r.invalidate(ctx, cust.CustomerID)
	return nil
}

func (r *CachedCustomerRepository) DeleteByID(ctx context.Context, customerID int64) error {
	err := r.next.DeleteByID(ctx, customerID)
	r.invalidate(ctx, customerID)
	return err
}

func (r *CachedCustomerRepository) beginFill(customerID int64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fills[customerID]
	if !ok {
		f = &fill{}
		r.fills[customerID] = f
	}
	f.readers++
	return f.gen
}

// endFill caches cust unless a write to customerID landed after beginFill.
// The cache write happens under mu so a concurrent invalidate deletes it
// afterwards instead of racing it.
func (r *CachedCustomerRepository) endFill(ctx context.Context, customerID int64, gen uint64, cust *customer.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.fills[customerID]
	if cust != nil {
		if f.gen == gen {
			r.store(ctx, Key(customerID), cust)
		} else {
			r.logger.DebugContext(ctx, "Skipping cache fill superseded by a write", slog.Int64("customerID", customerID))
		}
	}
	f.readers--
	if f.readers == 0 {
		delete(r.fills, customerID)
	}
}

func (r *CachedCustomerRepository) store(ctx context.Context, key string, cust *customer.Customer) {
	data, err := json.Marshal(fromCustomer(cust))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to encode customer for cache", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "Cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (r *CachedCustomerRepository) invalidate(ctx context.Context, customerID int64) {
	r.mu.Lock()
	if f, ok := r.fills[customerID]; ok {
		f.gen++
	}
	r.mu.Unlock()

	if err := r.client.Del(ctx, Key(customerID)).Err(); err != nil {
		r.logger.WarnContext(ctx, "Cache invalidation failed", slog.Int64("customerID", customerID), slog.Any("error", err))
	}
}

func fromCustomer(c *customer.Customer) cachedCustomer {
	return cachedCustomer{
		CustomerID:  c.CustomerID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Age:         c.Age,
		DateOfBirth: c.DateOfBirth,
		Email:       c.Email,
		Password:    c.Password,
		IsProMember: c.IsProMember,
	}
}

func (c cachedCustomer) toCustomer() *customer.Customer {
	return &customer.Customer{
		CustomerID:  c.CustomerID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Age:         c.Age,
		DateOfBirth: customer.NormalizeDate(c.DateOfBirth),
		Email:       c.Email,
		Password:    c.Password,
		IsProMember: c.IsProMember,
	}
}
