package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModeLive   = "LIVE"
	ModeDryRun = "DRY_RUN"

	PublisherTwitter  = "TWITTER"
	PublisherTelegram = "TELEGRAM"

	dateLayout = "2006-01-02"
)

var ErrMissingCredentials = errors.New("missing publisher credentials")

type Config struct {
	Mode      string `yaml:"mode"`
	Publisher string `yaml:"publisher"`
	Timezone  string `yaml:"timezone"`
	Date      string `yaml:"date"`

	Progress struct {
		IncludeToday bool `yaml:"include_today"`
	} `yaml:"progress"`

	Content struct {
		UseRemote          bool    `yaml:"use_remote"`
		QuoteMaxLength     int     `yaml:"quote_max_length"`
		JokeMaxLength      int     `yaml:"joke_max_length"`
		HTTPTimeoutSeconds float64 `yaml:"http_timeout_seconds"`
		MaxPostLength      int     `yaml:"max_post_length"`
		QuoteURL           string  `yaml:"quote_url"`
		QuoteTextPath      string  `yaml:"quote_text_path"`
		QuoteAuthorPath    string  `yaml:"quote_author_path"`
		JokeURL            string  `yaml:"joke_url"`
		JokeTextPath       string  `yaml:"joke_text_path"`
	} `yaml:"content"`

	Chart struct {
		Width     int    `yaml:"width"`
		Height    int    `yaml:"height"`
		Watermark string `yaml:"watermark"`
	} `yaml:"chart"`

	Output struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"output"`

	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`

	Twitter struct {
		APIBaseURL        string `yaml:"api_base_url"`
		UploadBaseURL     string `yaml:"upload_base_url"`
		APIKey            string `yaml:"-"`
		APISecret         string `yaml:"-"`
		AccessToken       string `yaml:"-"`
		AccessTokenSecret string `yaml:"-"`
	} `yaml:"twitter"`

	Telegram struct {
		Channel     string `yaml:"channel"`
		SessionFile string `yaml:"session_file"`
		AppID       int    `yaml:"-"`
		AppHash     string `yaml:"-"`
		BotToken    string `yaml:"-"`
	} `yaml:"telegram"`
}

// Default returns the configuration used when neither file nor environment say otherwise.
func Default() Config {
	var c Config
	c.Mode = ModeLive
	c.Publisher = PublisherTwitter
	c.Timezone = "Local"

	c.Content.UseRemote = true
	c.Content.QuoteMaxLength = 120
	c.Content.JokeMaxLength = 120
	c.Content.HTTPTimeoutSeconds = 5
	c.Content.MaxPostLength = 280
	c.Content.QuoteURL = "https://zenquotes.io/api/random"
	c.Content.QuoteTextPath = "0.q"
	c.Content.QuoteAuthorPath = "0.a"
	c.Content.JokeURL = "https://v2.jokeapi.dev/joke/Programming,Misc,Pun?safe-mode&type=single"
	c.Content.JokeTextPath = "joke"

	c.Chart.Width = 1200
	c.Chart.Height = 675
	c.Chart.Watermark = "ProgressPulse"

	c.Output.Dir = "out"

	c.Twitter.APIBaseURL = "https://api.twitter.com"
	c.Twitter.UploadBaseURL = "https://upload.twitter.com"
	return c
}

// HTTPTimeout is the bound on a single remote snippet fetch.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Content.HTTPTimeoutSeconds * float64(time.Second))
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.Timezone)
	}
}

// Today returns the date override when set, otherwise now in the configured zone.
func (c *Config) Today(now time.Time) (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	if c.Date != "" {
		return time.ParseInLocation(dateLayout, c.Date, loc)
	}
	return now.In(loc), nil
}

func (c *Config) Validate() error {
	if c.Mode != ModeDryRun && c.Mode != ModeLive {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Publisher != PublisherTwitter && c.Publisher != PublisherTelegram {
		return fmt.Errorf("invalid publisher '%s': must be 'TWITTER' or 'TELEGRAM'", c.Publisher)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	if c.Date != "" {
		if _, err := time.Parse(dateLayout, c.Date); err != nil {
			return fmt.Errorf("invalid date '%s': must be YYYY-MM-DD", c.Date)
		}
	}
	if c.Content.QuoteMaxLength <= 0 || c.Content.JokeMaxLength <= 0 {
		return fmt.Errorf("content.quote_max_length and content.joke_max_length must be positive")
	}
	if c.Content.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("content.http_timeout_seconds must be positive, got %.2f", c.Content.HTTPTimeoutSeconds)
	}
	if c.Content.MaxPostLength < 10 {
		return fmt.Errorf("content.max_post_length must be at least 10, got %d", c.Content.MaxPostLength)
	}
	if c.Output.RetentionDays < 0 {
		return fmt.Errorf("output.retention_days cannot be negative")
	}
	if c.Mode == ModeLive {
		if missing := c.missingCredentials(); len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
		}
	}
	return nil
}

func (c *Config) missingCredentials() []string {
	var missing []string
	check := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	switch c.Publisher {
	case PublisherTwitter:
		check("TWITTER_API_KEY", c.Twitter.APIKey)
		check("TWITTER_API_SECRET", c.Twitter.APISecret)
		check("TWITTER_ACCESS_TOKEN", c.Twitter.AccessToken)
		check("TWITTER_ACCESS_TOKEN_SECRET", c.Twitter.AccessTokenSecret)
	case PublisherTelegram:
		if c.Telegram.AppID == 0 {
			missing = append(missing, "TELEGRAM_APP_ID")
		}
		check("TELEGRAM_APP_HASH", c.Telegram.AppHash)
		check("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
		check("TELEGRAM_CHANNEL", c.Telegram.Channel)
	}
	return missing
}

// LoadConfig reads the optional YAML file at path onto the defaults, applies environment
// overrides, then the given overrides, and validates the result. A missing file is not an error.
func LoadConfig(path string, overrides ...func(*Config)) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	for _, o := range overrides {
		o(&c)
	}

	c.Mode = strings.ToUpper(c.Mode)
	c.Publisher = strings.ToUpper(c.Publisher)
	c.Telegram.Channel = strings.TrimPrefix(c.Telegram.Channel, "@")

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	e.str("PULSE_MODE", &c.Mode)
	e.str("PULSE_PUBLISHER", &c.Publisher)
	e.str("PULSE_TIMEZONE", &c.Timezone)
	e.str("PULSE_DATE", &c.Date)

	e.boolean("INCLUDE_TODAY", &c.Progress.IncludeToday)
	e.boolean("USE_REMOTE_CONTENT", &c.Content.UseRemote)
	e.integer("QUOTE_MAX_LENGTH", &c.Content.QuoteMaxLength)
	e.integer("JOKE_MAX_LENGTH", &c.Content.JokeMaxLength)
	e.float("HTTP_TIMEOUT_SECONDS", &c.Content.HTTPTimeoutSeconds)
	e.integer("MAX_POST_LENGTH", &c.Content.MaxPostLength)
	e.str("QUOTE_URL", &c.Content.QuoteURL)
	e.str("JOKE_URL", &c.Content.JokeURL)

	e.str("PULSE_OUTPUT_DIR", &c.Output.Dir)
	e.integer("PULSE_OUTBOX_RETENTION_DAYS", &c.Output.RetentionDays)
	e.str("PULSE_METRICS_TEXTFILE", &c.Metrics.Textfile)

	e.str("TWITTER_API_KEY", &c.Twitter.APIKey)
	e.str("TWITTER_API_SECRET", &c.Twitter.APISecret)
	e.str("TWITTER_ACCESS_TOKEN", &c.Twitter.AccessToken)
	e.str("TWITTER_ACCESS_TOKEN_SECRET", &c.Twitter.AccessTokenSecret)

	e.integer("TELEGRAM_APP_ID", &c.Telegram.AppID)
	e.str("TELEGRAM_APP_HASH", &c.Telegram.AppHash)
	e.str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	e.str("TELEGRAM_CHANNEL", &c.Telegram.Channel)
	e.str("TELEGRAM_SESSION_FILE", &c.Telegram.SessionFile)

	return errors.Join(e.errs...)
}

// envReader overwrites fields from set, non-empty variables and collects parse errors.
type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		e.errs = append(e.errs, fmt.Errorf("invalid %s '%s': must be a boolean", key, v))
	}
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s '%s': must be an integer", key, v))
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s '%s': must be a number", key, v))
		return
	}
	*dst = f
}
