package tenant

import (
	"fmt"
	"strings"
	"time"
)

// Cache backends selectable through Config.Cache.
const (
	CacheMemory    = "memory"
	CacheRistretto = "ristretto"
	CacheRedis     = "redis"
	CacheNone      = "none"
)

// Config is the environment-driven tenancy configuration.
type Config struct {
	Mode          string        `env:"TENANCY_MODE" envDefault:"subdomain"`
	Header        string        `env:"TENANT_HEADER" envDefault:"X-TENANT-ID"`
	BaseDomain    string        `env:"TENANT_BASE_DOMAIN"`
	SkipPaths     []string      `env:"TENANT_SKIP_PATHS" envDefault:"/api/health,/login,/register,/onboarding" envSeparator:","`
	OnboardingURL string        `env:"TENANT_ONBOARDING_URL" envDefault:"/onboarding/choose-tenant"`
	Cache         string        `env:"TENANT_CACHE" envDefault:"memory"`
	CacheTTL      time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	CacheSize     int           `env:"TENANT_CACHE_SIZE" envDefault:"1000"`
	StrictScope   bool          `env:"TENANT_STRICT_SCOPE" envDefault:"true"`
}

// Identifier builds the identifier for the configured mode.
func (c Config) Identifier() (Identifier, error) {
	mode, err := ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	return NewIdentifier(mode, c.Header, c.BaseDomain)
}

// LocalCache builds the in-process cache backends. Redis needs a client and
// is wired by the caller; it reports ok=false.
func (c Config) LocalCache() (Cache, bool, error) {
	switch strings.ToLower(c.Cache) {
	case CacheMemory, "":
		return NewMemoryCache(c.CacheSize), true, nil
	case CacheRistretto:
		rc, err := NewRistrettoCache(int64(c.CacheSize))
		if err != nil {
			return nil, false, err
		}
		return rc, true, nil
	case CacheNone:
		return NewNoOpCache(), true, nil
	case CacheRedis:
		return nil, false, nil
	}
	return nil, false, fmt.Errorf("tenant: unknown cache backend %q", c.Cache)
}

// ResolverOptions turns the config into resolver options.
func (c Config) ResolverOptions() []ResolverOption {
	return []ResolverOption{
		WithCacheTTL(c.CacheTTL),
		WithSkipPaths(c.SkipPaths...),
	}
}
