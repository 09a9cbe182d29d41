// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/npblake/sponavi-crawler/internal/warehouse"
)

// Output modes for scraped tables.
const (
	OutputUpload = "upload"
	OutputFile   = "file"
)

// Storage backends for file output and HTML archives.
const (
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendGCS    = "gcs"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Site     SiteConfig                       `mapstructure:"site"`
	Crawler  CrawlerConfig                    `mapstructure:"crawler"`
	Run      RunConfig                        `mapstructure:"run"`
	Storage  StorageConfig                    `mapstructure:"storage"`
	DB       DBConfig                         `mapstructure:"db"`
	PubSub   PubSubConfig                     `mapstructure:"pubsub"`
	Server   ServerConfig                     `mapstructure:"server"`
	Logging  LoggingConfig                    `mapstructure:"logging"`
	Teams    map[string][]Team                `mapstructure:"teams"`
	Schedule map[string]Season                `mapstructure:"schedule"`
	Tables   map[string]warehouse.TableSchema `mapstructure:"tables"`
}

// SiteConfig locates the sports portal.
type SiteConfig struct {
	Domain     string `mapstructure:"domain"`
	League     string `mapstructure:"league"`
	StartIndex string `mapstructure:"start_index"`
}

// CrawlerConfig governs fetch politeness and the game worker pool.
type CrawlerConfig struct {
	UserAgent       string `mapstructure:"user_agent"`
	IntervalMillis  int    `mapstructure:"interval_ms"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	Concurrency     int    `mapstructure:"concurrency"`
	MaxPagesPerGame int    `mapstructure:"max_pages_per_game"`
}

// RunConfig selects what a run scrapes and where the output goes.
type RunConfig struct {
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`
	Games     bool   `mapstructure:"games"`
	Players   bool   `mapstructure:"players"`
	Output    string `mapstructure:"output"`
}

// StorageConfig sets the blob backend used for file output and archives.
type StorageConfig struct {
	Backend     string `mapstructure:"backend"`
	GCSBucket   string `mapstructure:"gcs_bucket"`
	BaseDir     string `mapstructure:"base_dir"`
	Prefix      string `mapstructure:"prefix"`
	ArchiveHTML bool   `mapstructure:"archive_html"`
}

// DBConfig controls access to the warehouse database.
type DBConfig struct {
	DSN                    string `mapstructure:"dsn"`
	MaxConns               int32  `mapstructure:"max_conns"`
	MinConns               int32  `mapstructure:"min_conns"`
	MaxConnLifetimeMinutes int    `mapstructure:"max_conn_lifetime_minutes"`
}

// PubSubConfig holds metadata for run notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ServerConfig controls the HTTP trigger server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Team maps a club to its warehouse id, the name printed on score tables and
// the id the portal uses in team URLs.
type Team struct {
	TeamID     string `mapstructure:"team_id"`
	TeamName   string `mapstructure:"team_name"`
	SiteTeamID string `mapstructure:"site_team_id"`
}

// Season holds the date windows of each series in one year.
type Season struct {
	PreSeason    Window `mapstructure:"pre_season"`
	Pennant      Window `mapstructure:"pennant"`
	Climax       Window `mapstructure:"climax"`
	Championship Window `mapstructure:"championship"`
}

// Window is an inclusive date range in ISO form.
type Window struct {
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SPONAVI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg = cfg.withBuiltins()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.domain", "https://baseball.yahoo.co.jp")
	v.SetDefault("site.league", "npb")
	v.SetDefault("site.start_index", "0110100")
	v.SetDefault("crawler.user_agent", "sponavi-crawler/0.1")
	v.SetDefault("crawler.interval_ms", 1000)
	v.SetDefault("crawler.timeout_seconds", 15)
	v.SetDefault("crawler.concurrency", 2)
	v.SetDefault("crawler.max_pages_per_game", 600)
	v.SetDefault("run.start_date", "")
	v.SetDefault("run.end_date", "")
	v.SetDefault("run.games", true)
	v.SetDefault("run.players", false)
	v.SetDefault("run.output", OutputUpload)
	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.base_dir", "output")
	v.SetDefault("storage.prefix", "sponavi")
	v.SetDefault("storage.archive_html", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.max_conn_lifetime_minutes", 30)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// withBuiltins fills the team registry, season calendar and table layouts
// when the config file does not provide them, and names each table schema
// after its logical key.
func (c Config) withBuiltins() Config {
	if len(c.Teams) == 0 {
		c.Teams = DefaultTeams()
	}
	if len(c.Schedule) == 0 {
		c.Schedule = DefaultSchedule()
	}
	tables := warehouse.DefaultSchemas()
	for name, schema := range c.Tables {
		tables[name] = schema
	}
	for name, schema := range tables {
		schema.Name = name
		if schema.Table == "" {
			schema.Table = name
		}
		tables[name] = schema
	}
	c.Tables = tables
	return c
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Site.Domain == "" {
		return fmt.Errorf("site.domain is required")
	}
	if c.Site.League == "" {
		return fmt.Errorf("site.league is required")
	}
	if c.Site.StartIndex == "" {
		return fmt.Errorf("site.start_index is required")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.IntervalMillis < 0 {
		return fmt.Errorf("crawler.interval_ms must be >= 0")
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	if c.Crawler.MaxPagesPerGame <= 0 {
		return fmt.Errorf("crawler.max_pages_per_game must be > 0")
	}
	switch c.Run.Output {
	case OutputUpload, OutputFile:
	default:
		return fmt.Errorf("run.output must be %q or %q", OutputUpload, OutputFile)
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendLocal:
	case BackendGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when storage.backend is gcs")
		}
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if (c.Run.StartDate == "") != (c.Run.EndDate == "") {
		return fmt.Errorf("run.start_date and run.end_date must be set together")
	}
	if c.Run.StartDate != "" {
		if _, _, err := ParseDateRange(c.Run.StartDate, c.Run.EndDate); err != nil {
			return err
		}
	}
	for name, season := range c.Schedule {
		if err := season.validate(); err != nil {
			return fmt.Errorf("schedule.%s: %w", name, err)
		}
	}
	for _, name := range []string{warehouse.TableGame, warehouse.TableScore, warehouse.TablePitch, warehouse.TablePlayer} {
		schema, ok := c.Tables[name]
		if !ok {
			return fmt.Errorf("tables.%s is required", name)
		}
		if err := schema.Validate(); err != nil {
			return fmt.Errorf("tables.%s: %w", name, err)
		}
	}
	return nil
}

// Interval is the minimum gap between any two requests to the portal.
func (c Config) Interval() time.Duration {
	return time.Duration(c.Crawler.IntervalMillis) * time.Millisecond
}

// RequestTimeout bounds a single fetch.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Crawler.TimeoutSeconds) * time.Second
}

// LeagueTeams returns the registry for the configured league.
func (c Config) LeagueTeams() []Team {
	return c.Teams[c.Site.League]
}

// ParseDateRange parses an inclusive ISO date range.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	from, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	to, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end date %q: %w", end, err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return from, to, nil
}

func (s Season) validate() error {
	for name, w := range map[string]Window{
		"pre_season":   s.PreSeason,
		"pennant":      s.Pennant,
		"climax":       s.Climax,
		"championship": s.Championship,
	} {
		if w.StartDate == "" && w.EndDate == "" {
			continue
		}
		if _, _, err := ParseDateRange(w.StartDate, w.EndDate); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
