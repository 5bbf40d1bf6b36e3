// AngelaMos | 2026
// defaults.go

package config

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "Hawker Backend",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.timezone":    "Asia/Singapore",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 2,

		"jwt.private_key_path":     "keys/private.pem",
		"jwt.public_key_path":      "keys/public.pem",
		"jwt.access_token_expire":  "15m",
		"jwt.refresh_token_expire": "168h",
		"jwt.issuer":               "hawker-backend",
		"jwt.audience":             "hawker-api",

		"rate_limit.requests":       100,
		"rate_limit.window":         "1m",
		"rate_limit.burst":          20,
		"rate_limit.login_requests": 10,
		"rate_limit.login_burst":    5,

		"cors.allowed_origins":   []string{"http://localhost:3000"},
		"cors.allowed_methods":   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		"cors.allowed_headers":   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "hawker-backend",

		// Stall photos arrive as phone camera shots.
		"upload.dir":         "uploads",
		"upload.max_bytes":   20 << 20,
		"upload.public_path": "/uploads",

		"seed.enabled":       true,
		"seed.manifest_path": "data/sfa/manifest.json",
		"seed.halt_on_error": false,

		"business.orphan_policy":       OrphanPolicyOrphan,
		"consumer.recent_search_limit": 10,

		"corppass.mock_mode":    true,
		"corppass.issuer":       "https://stg-id.corppass.gov.sg",
		"corppass.redirect_uri": "http://localhost:8080/v1/auth/corppass/callback",
		"corppass.frontend_url": "http://localhost:3000",
		"corppass.scopes":       []string{"openid", "uinfin", "name", "entityinfo"},
		"corppass.state_ttl":    "10m",
	}
}

// envAliases are the variable names the deployment manifests already use.
var envAliases = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"APP_TIMEZONE":                "app.timezone",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"UPLOAD_DIR":                  "upload.dir",
	"SEED_MANIFEST_PATH":          "seed.manifest_path",
	"BUSINESS_ORPHAN_POLICY":      "business.orphan_policy",
	"CORPPASS_MOCK_MODE":          "corppass.mock_mode",
	"CORPPASS_CLIENT_ID":          "corppass.client_id",
	"FRONTEND_URL":                "corppass.frontend_url",
}
