// AngelaMos | 2026
// validate.go

package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// validate reports every problem at once so a broken deployment is fixed
// in one pass.
func (c *Config) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Database.URL != "", "DATABASE_URL is required")
	check(c.Redis.URL != "", "REDIS_URL is required")
	check(c.JWT.PrivateKeyPath != "" && c.JWT.PublicKeyPath != "",
		"JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH are required")
	check(c.JWT.AccessTokenExpire > 0 && c.JWT.AccessTokenExpire < c.JWT.RefreshTokenExpire,
		"jwt.access_token_expire must be positive and shorter than jwt.refresh_token_expire")

	check(!c.CORS.AllowCredentials || !slices.Contains(c.CORS.AllowedOrigins, "*"),
		"cors: wildcard origin cannot be combined with credentials")

	if c.IsProduction() {
		check(!c.Otel.Enabled || !c.Otel.Insecure, "OTEL insecure transport is not allowed in production")
		check(!c.CorpPass.MockMode, "CORPPASS_MOCK_MODE must be false in production")
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("app.timezone %q: %w", c.App.Timezone, err))
	}

	check(c.Server.ReadTimeout > 0 && c.Server.WriteTimeout > 0, "server timeouts must be positive")
	check(c.RateLimit.Requests > 0 && c.RateLimit.LoginRequests > 0, "rate_limit request counts must be positive")
	check(c.Upload.MaxBytes > 0, "upload.max_bytes must be positive")
	check(c.Business.OrphanPolicy == OrphanPolicyOrphan || c.Business.OrphanPolicy == OrphanPolicyCascade,
		"business.orphan_policy must be %q or %q", OrphanPolicyOrphan, OrphanPolicyCascade)
	check(c.Consumer.RecentSearchLimit > 0, "consumer.recent_search_limit must be positive")
	check(c.CorpPass.StateTTL > 0, "corppass.state_ttl must be positive")

	return errors.Join(errs...)
}
