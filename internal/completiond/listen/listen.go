// Package listen normalizes the daemon's bind address.
package listen

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = "18731"
)

// Config is a normalized bind target.
type Config struct {
	Host string
	Port string
}

// Default is the loopback address used when nothing is configured.
func Default() Config {
	return Config{Host: defaultHost, Port: defaultPort}
}

// Parse interprets a listen value. Blank input yields Default; a bare host
// keeps the default port; "port", ":port", "host:port" and "[v6]:port" are
// accepted.
func Parse(raw string) (Config, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Default(), nil
	}

	var cfg Config
	switch {
	case isDigits(value):
		cfg.Port = value
	case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
		cfg.Host = value[1 : len(value)-1]
	case strings.Count(value, ":") > 1 && !strings.HasPrefix(value, "["):
		// bare IPv6 host
		cfg.Host = value
	case strings.Contains(value, ":"):
		host, port, err := net.SplitHostPort(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid listen address %q: %w", value, err)
		}
		cfg.Host, cfg.Port = strings.TrimSpace(host), strings.TrimSpace(port)
	default:
		cfg.Host = value
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if n, err := strconv.Atoi(cfg.Port); err != nil || n <= 0 || n > 65535 {
		return Config{}, fmt.Errorf("invalid listen port %q", cfg.Port)
	}
	return cfg, nil
}

// Address returns the bind string for net.Listen.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// DisplayURL renders a browsable base URL.
func (c Config) DisplayURL() string {
	host := c.Host
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, c.Port) + "/"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
