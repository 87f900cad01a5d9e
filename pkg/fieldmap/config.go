package fieldmap

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config maps logical field names to ordered alias lists, per source kind.
// Deployments with renamed upstream columns override individual groups in
// a YAML file; anything not overridden falls back to the defaults.
type Config struct {
	Leads    map[string][]string `yaml:"leads"`
	Bookings map[string][]string `yaml:"bookings"`
}

func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Default(), err
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Default(), err
	}

	defaults := Default()
	if cfg.Leads == nil {
		cfg.Leads = defaults.Leads
	} else {
		for field, aliases := range defaults.Leads {
			if _, ok := cfg.Leads[field]; !ok {
				cfg.Leads[field] = aliases
			}
		}
	}
	if cfg.Bookings == nil {
		cfg.Bookings = defaults.Bookings
	} else {
		for field, aliases := range defaults.Bookings {
			if _, ok := cfg.Bookings[field]; !ok {
				cfg.Bookings[field] = aliases
			}
		}
	}

	return cfg, nil
}

func Default() Config {
	return Config{
		Leads: map[string][]string{
			"email":        {"email", "e-mail", "guest email", "customer email"},
			"created_at":   {"created_at", "created date", "date", "date added", "submission date", "submitted at", "added at"},
			"mql":          {"mql_yes", "mql", "is_mql", "marketing qualified lead"},
			"sql":          {"sql_yes", "sql", "is_sql", "sales qualified lead"},
			"not_mql":      {"false_mql", "mql_false", "not_mql"},
			"utm_source":   {"utm_source", "utm source", "source"},
			"utm_medium":   {"utm_medium", "utm medium", "medium"},
			"utm_campaign": {"utm_campaign", "utm campaign", "campaign"},
		},
		Bookings: map[string][]string{
			"booking_id":     {"booking_id"},
			"booking_date":   {"booking_date", "date", "created_at"},
			"arrival_date":   {"arrival_date", "arrival"},
			"departure_date": {"departure_date", "departure"},
			"guests":         {"guests"},
			"amount":         {"amount"},
			"email":          {"email"},
		},
	}
}

// Lead returns the alias group for a logical lead field.
func (c Config) Lead(field string) []string {
	return c.Leads[field]
}

// Booking returns the alias group for a logical booking field.
func (c Config) Booking(field string) []string {
	return c.Bookings[field]
}
