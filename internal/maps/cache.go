// README: Optional Redis-backed geocode cache, enabled with TAXIPRED_GEOCODE_CACHE=true.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taxipred/internal/types"
)

const geocodeKeyPrefix = "taxipred:geocode:"

// CachedGeocoder serves repeated addresses from Redis. Cache failures are
// logged and fall through to the wrapped geocoder; misses are never cached.
type CachedGeocoder struct {
	next Geocoder
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedGeocoder(next Geocoder, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedGeocoder {
	return &CachedGeocoder{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (types.Coordinate, error) {
	key := geocodeCacheKey(address)

	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		coord, perr := decodeCoordinate(val)
		if perr == nil {
			c.log.Debug("geocode cache hit", zap.String("key", key))
			return coord, nil
		}
		c.log.Warn("geocode cache entry unreadable", zap.String("key", key), zap.Error(perr))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("geocode cache get failed", zap.String("key", key), zap.Error(err))
	}

	coord, err := c.next.Geocode(ctx, address)
	if err != nil {
		return types.Coordinate{}, err
	}
	if err := c.rdb.Set(ctx, key, encodeCoordinate(coord), c.ttl).Err(); err != nil {
		c.log.Warn("geocode cache set failed", zap.String("key", key), zap.Error(err))
	}
	return coord, nil
}

func geocodeCacheKey(address string) string {
	return geocodeKeyPrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func encodeCoordinate(c types.Coordinate) string {
	return formatDegrees(c.Lat) + "," + formatDegrees(c.Lon)
}

func decodeCoordinate(s string) (types.Coordinate, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return types.Coordinate{}, fmt.Errorf("malformed coordinate %q", s)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return types.Coordinate{}, err
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return types.Coordinate{}, err
	}
	return types.Coordinate{Lat: lat, Lon: lon}, nil
}
