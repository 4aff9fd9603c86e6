package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trading Coach Configuration

[server]
# Listen address for "trading-coach serve"
addr = ":3000"
# Gin mode: debug, release, test
mode = "release"
# Rate limit: at most rate_limit_max requests per client per window
rate_limit_window = "15m"
rate_limit_max = 100

[storage]
# SQLite database file (defaults to coach.db in this directory)
# db_path = ""

[logging]
# Level: debug, info, warn, error
level = "info"
console = true
file = true
max_size = 50
max_backups = 5
max_age = 30

[coach]
# Any OpenAI-compatible endpoint; Groq by default
base_url = "https://api.groq.com/openai/v1"
model = "llama-3.3-70b-versatile"
# Use canned responses instead of calling the model
use_mock = false
temperature = 0.3
max_tokens = 500
timeout = "30s"
max_retries = 2

[analysis]
# IANA zone used for hour-of-day and weekday buckets
timezone = "UTC"
# Trades echoed back in a full report
recent_trades = 10

[analysis.bias]
min_trades = 5
window = 20
pair_window = 5
quick_reentry = "5m"
realtime_reentry = "15m"
# Count only trades with both stop loss and take profit as anchoring candidates
require_bracket_orders = false

[ui]
color_enabled = true
date_format = "2006-01-02 15:04"
`

const credentialsTemplate = `# Trading Coach Credentials
# WARNING: Keep this file secure! Do not commit to version control.
# GROQ_API_KEY or COACH_API_KEY in the environment take precedence.

[coach]
api_key = ""
`

// createTemplate writes a template file if none exists. Defaults still apply
// to the current run.
func createTemplate(configDir, name, template string, perm os.FileMode) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(template), perm); err != nil {
		return fmt.Errorf("writing %s template: %w", name, err)
	}
	return nil
}

// ConfigPath returns the path of the main config file in dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, "config.toml")
}
