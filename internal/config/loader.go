package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Option configures a load.
type Option func(*loadOptions)

type loadOptions struct {
	path string
}

// WithFile layers a TOML file under the environment. Keys are
// "section.key", e.g. [storage] bucket = "reports". An empty path is ignored.
func WithFile(path string) Option {
	return func(o *loadOptions) { o.path = path }
}

// Load reads the backend configuration. Precedence is environment, then the
// TOML file, then defaults. Missing required values are reported together
// as ErrConfigMissing; other problems fail validation.
func Load(opts ...Option) (*Config, error) {
	cfg := &Config{}
	if err := load(cfg, opts); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.Logging.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadClient reads the table view configuration with the same precedence as Load.
func LoadClient(opts ...Option) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := load(cfg, opts); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.Logging.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// loader fills one config struct and remembers what was missing.
type loader struct {
	file    map[string]string
	missing []string
}

func load(dst any, opts []Option) error {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	l := &loader{}
	if o.path != "" {
		fv, err := readFile(o.path)
		if err != nil {
			return err
		}
		l.file = fv
	}

	if err := l.loadStruct(reflect.ValueOf(dst).Elem(), ""); err != nil {
		return err
	}
	if len(l.missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigMissing, strings.Join(l.missing, ", "))
	}
	return nil
}

// loadStruct recursively populates struct fields. prefix is the TOML path of
// the enclosing section.
func (l *loader) loadStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		key := field.Tag.Get("toml")
		if prefix != "" && key != "" {
			key = prefix + "." + key
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := l.loadStruct(fieldVal, key); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value, source := l.lookup(envName, field.Tag.Get("envAlt"), key)
		if value == "" {
			if field.Tag.Get("required") == "true" {
				l.missing = append(l.missing, envName)
				continue
			}
			value, source = field.Tag.Get("default"), "default"
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q (from %s): %w", envName, value, source, err)
		}
	}

	return nil
}

// lookup resolves a value from the primary env var, the alternate env var,
// then the file. Empty values count as unset.
func (l *loader) lookup(envName, envAlt, key string) (string, string) {
	if v := os.Getenv(envName); v != "" {
		return v, envName
	}
	if envAlt != "" {
		if v := os.Getenv(envAlt); v != "" {
			return v, envAlt
		}
	}
	if key != "" {
		if v := l.file[key]; v != "" {
			return v, key
		}
	}
	return "", ""
}

// readFile parses a TOML file into flat "section.key" string values.
func readFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(b, &doc); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, fmt.Errorf("parse %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, m map[string]any, out map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// validate reports field errors under their environment variable names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// fieldErrors runs the struct tag rules and returns one line per failure.
func fieldErrors(s any) ([]string, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, err
	}

	errs := make([]string, 0, len(ve))
	for _, fe := range ve {
		errs = append(errs, describe(fe))
	}
	sort.Strings(errs)
	return errs, nil
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s (%v) must be >= %s", name, fe.Value(), fe.Param())
	case "max":
		return fmt.Sprintf("%s (%v) must be <= %s", name, fe.Value(), fe.Param())
	case "gt":
		if fe.Param() == "0" {
			return name + " must be positive"
		}
		return fmt.Sprintf("%s (%v) must be > %s", name, fe.Value(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s (%q) must be one of: %s", name, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s (%q) must be a URL", name, fe.Value())
	case "cidr", "cidr|ip":
		return fmt.Sprintf("%s (%q) must be a CIDR or IP", name, fe.Value())
	default:
		return fmt.Sprintf("%s failed %q", name, fe.Tag())
	}
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	errs, err := fieldErrors(c)
	if err != nil {
		return err
	}

	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	return joinErrors(errs)
}

// Validate checks that the client configuration is valid.
func (c *ClientConfig) Validate() error {
	errs, err := fieldErrors(c)
	if err != nil {
		return err
	}
	return joinErrors(errs)
}

func (c *LoggingConfig) normalize() {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
}

const masked = "[MASKED]"

func mask(s string) string {
	if s == "" {
		return ""
	}
	return masked
}

// String returns a safe string representation of the config for logging.
// Credentials, the database URL and API keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q, RequestTimeout: %s}, ", c.Server.Addr(), c.Server.RequestTimeout)
	fmt.Fprintf(&b, "Storage: {Region: %q, Bucket: %q, Key: %q, Endpoint: %q, AccessKeyID: %s, SecretAccessKey: %s}, ",
		c.Storage.Region, c.Storage.Bucket, c.Storage.Key, c.Storage.Endpoint,
		mask(c.Storage.AccessKeyID), mask(c.Storage.SecretAccessKey))
	fmt.Fprintf(&b, "Data: {MaxConcurrent: %d, MaxWaitTime: %s}, ", c.Data.MaxConcurrent, c.Data.MaxWaitTime)
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d, MinConns: %d}, ",
		mask(c.Database.URL), c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d}, ", c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

// String returns a safe string representation of the client config.
func (c *ClientConfig) String() string {
	return fmt.Sprintf("ClientConfig{API: {BaseURL: %q, Key: %s, Timeout: %s}, UI: {Addr: %q}, Logging: {Level: %q, Format: %q}}",
		c.API.BaseURL, mask(c.API.Key), c.API.Timeout, c.UI.Addr(), c.Logging.Level, c.Logging.Format)
}
