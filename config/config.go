// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the runtime settings of the eventify server.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/eventify/eventify/geocode"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrConfigInvalid is returned when the settings fail validation.
var ErrConfigInvalid = errors.New("invalid configuration")

// Environment variables that override the file.
const (
	EnvListen          = "EVENTIFY_LISTEN"
	EnvGeocoderURL     = "EVENTIFY_GEOCODER_URL"
	EnvUserAgent       = "EVENTIFY_USER_AGENT"
	EnvGeocoderTimeout = "EVENTIFY_GEOCODER_TIMEOUT"
	EnvPublicURL       = "NEXT_PUBLIC_SERVER_URL"
)

// DefaultListen is the address used when nothing else is configured.
const DefaultListen = "localhost:3000"

type Geocoder struct {
	SearchURL string        `yaml:"search_url" validate:"required,url"`
	UserAgent string        `yaml:"user_agent" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
}

type Config struct {
	Listen string `yaml:"listen" validate:"required,hostname_port"`
	// PublicURL is where browsers and the map renderer reach this server.
	// Empty means derived from Listen.
	PublicURL string   `yaml:"public_url" validate:"omitempty,url"`
	EnvFiles  []string `yaml:"env_files"`
	Geocoder  Geocoder `yaml:"geocoder"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Listen:   DefaultListen,
		EnvFiles: []string{".env.local"},
		Geocoder: Geocoder{
			SearchURL: geocode.DefaultSearchURL,
			UserAgent: geocode.DefaultUserAgent,
			Timeout:   geocode.DefaultTimeout,
		},
	}
}

// Load builds the settings from the defaults, the YAML file at path (if
// any) and the environment as seen through lookup. A nil lookup reads the
// process environment.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)

		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvListen); ok && v != "" {
		c.Listen = v
	}

	if v, ok := lookup(EnvGeocoderURL); ok && v != "" {
		c.Geocoder.SearchURL = v
	}

	if v, ok := lookup(EnvUserAgent); ok && v != "" {
		c.Geocoder.UserAgent = v
	}

	if v, ok := lookup(EnvGeocoderTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfigInvalid, EnvGeocoderTimeout, err)
		}

		c.Geocoder.Timeout = d
	}

	if v, ok := lookup(EnvPublicURL); ok && strings.TrimSpace(v) != "" {
		c.PublicURL = strings.TrimSpace(v)
	}

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	return v
}

// Validate checks every field and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		if e.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s: failed %s=%s", field, e.Tag(), e.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s: failed %s", field, e.Tag()))
		}
	}

	return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(problems, "; "))
}

// BaseURL is the URL the server can be reached at.
func (c *Config) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimRight(c.PublicURL, "/")
	}

	host := c.Listen
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}

	return "http://" + host
}

// ClientOptions translates the geocoder settings for geocode.NewNominatimClient.
func (c *Config) ClientOptions() *geocode.ClientOptions {
	return &geocode.ClientOptions{
		SearchURL: c.Geocoder.SearchURL,
		UserAgent: c.Geocoder.UserAgent,
		Timeout:   c.Geocoder.Timeout,
	}
}
