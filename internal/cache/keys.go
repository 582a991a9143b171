package cache

import (
	"strconv"
	"strings"
)

const (
	GlobalKeyPrefix = "learnpersona"
)

// GenerateCacheKey builds "learnpersona:<service>:<objectType>:<identifier>".
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// RecommendationKey is where a user's recommended courses and strategies are cached.
func RecommendationKey(userID string) string {
	return GenerateCacheKey("recommendation", "user", userID)
}

// DashboardSummaryKey caches the organization-wide dashboard summary.
func DashboardSummaryKey(activityLimit, trendDays int) string {
	return GenerateCacheKey("dashboard", "summary", "org", strconv.Itoa(activityLimit), strconv.Itoa(trendDays))
}
