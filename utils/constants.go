// File: utils/constants.go
package utils

import "time"

// CatalogCachePrefix is the prefix used for Redis catalog cache keys.
const CatalogCachePrefix = "catalog:"

// WebhookSeenPrefix is the prefix for processed gateway reference keys.
const WebhookSeenPrefix = "webhook:seen:"

// WebhookSeenTTL is how long a processed gateway reference is remembered.
const WebhookSeenTTL = 24 * time.Hour
