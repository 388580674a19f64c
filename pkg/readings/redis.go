package readings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/agroops/pkg/models"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix prefixes the hash holding one field's reading:
// HSET agroops:field:<id> name ... temp ... moisture ... ph ... observed_at ...
const KeyPrefix = "agroops:field:"

const (
	hashName       = "name"
	hashTemp       = "temp"
	hashMoisture   = "moisture"
	hashPh         = "ph"
	hashObservedAt = "observed_at"
)

// Redis reads field readings that an external collector keeps in Redis hashes.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis connects to a redis:// URL and pings it.
func NewRedis(ctx context.Context, logger *slog.Logger, url string) (*Redis, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) Get(ctx context.Context, fieldID string) (models.FieldReading, error) {
	values, err := r.client.HGetAll(ctx, KeyPrefix+fieldID).Result()
	if err != nil {
		return models.FieldReading{}, fmt.Errorf("failed to read field %s: %w", fieldID, err)
	}

	// HGETALL on a missing key returns an empty map.
	if len(values) == 0 {
		return models.FieldReading{}, fmt.Errorf("%w: %s", ErrReadingNotFound, fieldID)
	}

	return r.decode(ctx, fieldID, values), nil
}

// List scans every field hash and returns readings sorted by field id.
func (r *Redis) List(ctx context.Context) ([]models.FieldReading, error) {
	var (
		keys   []string
		cursor uint64
	)

	for {
		batch, next, err := r.client.Scan(ctx, cursor, KeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan field readings: %w", err)
		}

		keys = append(keys, batch...)

		cursor = next
		if cursor == 0 {
			break
		}
	}

	slices.Sort(keys)
	keys = slices.Compact(keys)

	all := make([]models.FieldReading, 0, len(keys))

	for _, key := range keys {
		reading, err := r.Get(ctx, strings.TrimPrefix(key, KeyPrefix))
		if errors.Is(err, ErrReadingNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		all = append(all, reading)
	}

	return all, nil
}

// Put writes a reading hash, used to seed fields.
func (r *Redis) Put(ctx context.Context, reading models.FieldReading) error {
	values := map[string]any{hashName: reading.Name}

	for key, value := range map[string]float64{hashTemp: reading.CurrentTemp, hashMoisture: reading.CurrentMoisture, hashPh: reading.CurrentPh} {
		if !math.IsNaN(value) {
			values[key] = strconv.FormatFloat(value, 'f', -1, 64)
		}
	}

	if !reading.ObservedAt.IsZero() {
		values[hashObservedAt] = reading.ObservedAt.UTC().Format(time.RFC3339)
	}

	err := r.client.HSet(ctx, KeyPrefix+reading.FieldID, values).Err()
	if err != nil {
		return fmt.Errorf("failed to write field %s: %w", reading.FieldID, err)
	}

	return nil
}

func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// decode maps a hash to a reading. Absent or malformed numbers become NaN so
// the classifier reports them as unavailable.
func (r *Redis) decode(ctx context.Context, fieldID string, values map[string]string) models.FieldReading {
	reading := models.FieldReading{
		FieldID:         fieldID,
		Name:            values[hashName],
		CurrentTemp:     r.number(ctx, fieldID, hashTemp, values),
		CurrentMoisture: r.number(ctx, fieldID, hashMoisture, values),
		CurrentPh:       r.number(ctx, fieldID, hashPh, values),
	}

	if raw, ok := values[hashObservedAt]; ok {
		observedAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			r.logger.WarnContext(ctx, "Ignoring malformed observation time", "field_id", fieldID, "value", raw)
		} else {
			reading.ObservedAt = observedAt
		}
	}

	return reading
}

func (r *Redis) number(ctx context.Context, fieldID, key string, values map[string]string) float64 {
	raw, ok := values[key]
	if !ok {
		return math.NaN()
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		r.logger.WarnContext(ctx, "Ignoring malformed sensor value", "field_id", fieldID, "key", key, "value", raw)

		return math.NaN()
	}

	return value
}
