package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL tags the DSN with application_name so sessions are
// attributable in pg_stat_activity. Both URL and key=value forms are
// accepted; an explicit value is kept.
func normalizeDBURL(raw, applicationName string) string {
	applicationName = strings.TrimSpace(applicationName)
	trimmed := strings.TrimSpace(raw)
	if applicationName == "" || trimmed == "" {
		return raw
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil || parsed.Scheme == "" {
		if !strings.Contains(trimmed, "=") || hasDSNKey(trimmed, "application_name") {
			return raw
		}
		return trimmed + " application_name=" + quoteDSNValue(applicationName)
	}

	query := parsed.Query()
	if query.Get("application_name") == "" {
		query.Set("application_name", applicationName)
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}

func hasDSNKey(dsn, key string) bool {
	for _, token := range strings.Fields(dsn) {
		if strings.HasPrefix(token, key+"=") {
			return true
		}
	}
	return false
}

// quoteDSNValue follows libpq quoting for values containing spaces or quotes.
func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
