package redis

import "fmt"

const (
	KeyPrefix = "assistante"

	KeyModulePages     = "pages"
	KeyModuleEditor    = "editor"
	KeyModuleAdmin     = "admin"
	KeyModulePublicAPI = "public-api"
	KeyModuleRateLimit = "ratelimit"

	KeyActionCache   = "cache"
	KeyActionState   = "state"
	KeyActionSession = "session"
)

func BuildPageCacheKey(pageID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefix, KeyModulePages, KeyActionCache, pageID)
}

func BuildEditorStateKey(adminID, pageID string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", KeyPrefix, KeyModuleEditor, KeyActionState, adminID, pageID)
}

func BuildAdminSessionKey(userID, sessionToken string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", KeyPrefix, KeyModuleAdmin, KeyActionSession, userID, sessionToken)
}

func BuildAdminSessionPrefix(userID string) string {
	return fmt.Sprintf("%s:%s:%s:%s:", KeyPrefix, KeyModuleAdmin, KeyActionSession, userID)
}

func BuildRateLimitKey(scope, subject string) string {
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefix, KeyModuleRateLimit, scope, subject)
}

// BuildPublicCacheNamespace is the namespace given to CacheKeyBuilder for one
// family of public responses, for example "blog".
func BuildPublicCacheNamespace(family string) string {
	return fmt.Sprintf("%s:%s:%s:%s", KeyPrefix, KeyModulePublicAPI, KeyActionCache, family)
}
