package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs for the viabus application.
// Pattern: viabus:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	// Route stop sequences and price tables are read-mostly; they only
	// change through admin updates, which invalidate explicitly.
	TTL_ROUTE_DETAIL = 5 * time.Minute

	// Route listings change whenever a route is created or toggled.
	TTL_ROUTE_LIST = 2 * time.Minute
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "viabus"

	CACHE_KEY_ROUTE_DETAIL = CACHE_PREFIX + ":routes:detail:uuid:" // + route-id
	CACHE_KEY_ROUTE_LIST   = CACHE_PREFIX + ":routes:list"         // + :page:X:limit:Y
)

// RouteDetailKey builds the cache key for a single route with its stations,
// prices and bus preloaded.
func RouteDetailKey(routeID string) string {
	return CACHE_KEY_ROUTE_DETAIL + routeID
}

// RouteListKey builds the cache key for a paginated route listing.
func RouteListKey(page, limit int, activeOnly bool) string {
	return fmt.Sprintf("%s:page:%d:limit:%d:active:%t", CACHE_KEY_ROUTE_LIST, page, limit, activeOnly)
}

// RouteInvalidationPattern matches every cached entry derived from route data.
func RouteInvalidationPattern() string {
	return CACHE_PREFIX + ":routes:*"
}
