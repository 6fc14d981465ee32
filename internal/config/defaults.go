package config

var defaults = map[string]any{
	"secret":         "",
	"badge_ttl":      43200, // 12 hours, a badge should survive a full visit
	"badge_ttl_skew": 300,
	"log_level":      "info",

	"nonce_store": "memory",

	"allowed_networks": "",

	"hosts_file":  "./instance/hosts.yaml",
	"support_url": DEFAULT_SUPPORT_URL,
	"base_url":    "/",

	"email.host":     "host.docker.internal",
	"email.port":     25,
	"email.username": "",
	"email.password": "",
	"email.from":     "noreply@example.com",

	"storage.type":        "sqlite",
	"storage.sqlite.path": "./data/visitors.db",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
