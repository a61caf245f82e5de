// Package config loads and watches the agent configuration file (config.yaml).
//
// Top-level types:
//   - Config{Agent}: full config tree parsed from YAML
//   - AgentConfig: http_port, refresh_interval, broadcast_interval,
//     viewport_width, auth, alerts, datasources [], panels []
//   - Datasource: id, type (graphite|prometheus|exposition), endpoint, auth, tls
//   - AuthConfig: mode (mtls|apikey|bearer|basic|none); Key(), Token() and
//     Password() resolve secrets from environment variables
//   - AlertsConfig: min_level, cooldown, webhooks (teams|slack|http)
//   - Panel: id, type (health|numeric), datasource, expression, range, span,
//     height, null_point_mode, threshold settings, colors, decimal_points
//
// Load(path) reads the YAML file, applies defaults (30s refresh, 5s broadcast,
// port 8080, 1280px viewport, 1h range, span 12, 250px height), then validates
// required fields, enums and datasource references.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create pattern
// used by atomic-save editors by watching the parent directory.
package config
