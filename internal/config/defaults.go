package config

import (
	"time"

	"github.com/spf13/viper"
)

// Quota and retention defaults. These mirror the product's free-tier
// policy: five requests per rolling 12-hour window.
const (
	DefaultMaxFreeRequests = 5
	DefaultSessionDuration = 12 * time.Hour
	DefaultHistoryItems    = 25
	DefaultHistoryTTL      = 30 * 24 * time.Hour
	DefaultAuditEntries    = 100
	DefaultAuditTTL        = 7 * 24 * time.Hour
)

// SetDefaults installs defaults so the app can run with a minimal config.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "caption-gatekeeper")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.profile_dir", ".nexla-profile")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)

	v.SetDefault("quota.max_free_requests", DefaultMaxFreeRequests)
	v.SetDefault("quota.session_duration", DefaultSessionDuration)

	v.SetDefault("detector.interval", 30*time.Second)
	v.SetDefault("detector.focus_debounce", time.Second)
	v.SetDefault("detector.database_timeout", time.Second)
	v.SetDefault("detector.peer_timeout", 2*time.Second)

	v.SetDefault("history.max_items", DefaultHistoryItems)
	v.SetDefault("history.ttl", DefaultHistoryTTL)

	v.SetDefault("audit.max_entries", DefaultAuditEntries)
	v.SetDefault("audit.ttl", DefaultAuditTTL)

	v.SetDefault("caption.webhook_url", "https://n8n.nexladesenvolvimento.com.br/webhook/frase")
	v.SetDefault("caption.timeout", 30*time.Second)
	v.SetDefault("caption.requests_per_second", 1.0)

	v.SetDefault("browser.driver", "static")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.persona.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("browser.persona.platform", "Linux x86_64")
	v.SetDefault("browser.persona.language", "pt-BR")
	v.SetDefault("browser.persona.languages", []string{"pt-BR", "pt", "en-US", "en"})
	v.SetDefault("browser.persona.screen_width", 1920)
	v.SetDefault("browser.persona.screen_height", 1080)
	v.SetDefault("browser.persona.timezone_offset", 180)
	v.SetDefault("browser.persona.hardware_concurrency", 8)
	v.SetDefault("browser.persona.cookies_enabled", true)

	v.SetDefault("server.listen_addr", "127.0.0.1:8787")
}
