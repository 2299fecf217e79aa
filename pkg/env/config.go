// Package env provides the configuration of serialcmd tools.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"

	"github.com/robotalks/serialcmd/pkg/session"
	"github.com/robotalks/serialcmd/pkg/transport"
)

// Config provides options to open a device and run sessions.
type Config struct {
	// Port is the serial device, its name, or a ws://, tcp:// bridge.
	// Empty selects the first discovered serial port.
	Port string `toml:"port"`
	Baud int    `toml:"baud"`

	MaxRequests      int           `toml:"max_requests"`
	RequestInterval  time.Duration `toml:"request_interval"`
	StatusInterval   time.Duration `toml:"status_interval"`
	HandshakeTimeout time.Duration `toml:"handshake_timeout"`

	// MQTTURL publishes session events when set.
	// e.g. mqtt://host:port/topic-prefix
	MQTTURL string `toml:"mqtt"`
}

var (
	defaultConfig = builtinConfig()
	configFile    string
)

func builtinConfig() Config {
	sc := session.DefaultConfig()
	conf := Config{
		Baud:             transport.DefaultBaud,
		MaxRequests:      sc.MaxRequests,
		RequestInterval:  sc.RequestInterval,
		StatusInterval:   sc.StatusInterval,
		HandshakeTimeout: sc.HandshakeTimeout,
	}
	if err := applyEnv(&conf); err != nil {
		glog.Warningf("%v, using %d", err, conf.MaxRequests)
	}
	return conf
}

func applyEnv(conf *Config) error {
	if val := os.Getenv("SERIALCMD_PORT"); val != "" {
		conf.Port = val
	}
	if val := os.Getenv("SERIALCMD_MQTT_URL"); val != "" {
		conf.MQTTURL = val
	}
	if val := os.Getenv("SERIALCMD_MAX_REQUESTS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid SERIALCMD_MAX_REQUESTS %q", val)
		}
		conf.MaxRequests = n
	}
	return nil
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "TOML config file.")
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port (device or name), or ws:// tcp:// bridge.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
	flag.IntVar(&defaultConfig.MaxRequests, "delay", defaultConfig.MaxRequests, "Handshake requests sent before waiting silently.")
	flag.DurationVar(&defaultConfig.RequestInterval, "request-interval", defaultConfig.RequestInterval, "Pause after each handshake request.")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Pause between status reads.")
	flag.DurationVar(&defaultConfig.HandshakeTimeout, "handshake-timeout", defaultConfig.HandshakeTimeout, "Give up if the device never responds, 0 waits forever.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL to publish session events.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load creates a Config from defaults, the config file given by -config,
// and flags. Flags set explicitly take precedence over the file.
// A malformed environment override is an error.
func Load() (*Config, error) {
	if err := applyEnv(&Config{}); err != nil {
		return nil, err
	}
	if configFile == "" {
		conf := NewConfig()
		return conf, conf.Validate()
	}
	conf := builtinConfig()
	if err := conf.LoadFile(configFile); err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		conf.overrideFrom(&defaultConfig, f.Name)
	})
	return &conf, conf.Validate()
}

// LoadFile overlays settings from a TOML file.
func (c *Config) LoadFile(fn string) error {
	if _, err := toml.DecodeFile(fn, c); err != nil {
		return fmt.Errorf("config %s: %w", fn, err)
	}
	return nil
}

func (c *Config) overrideFrom(src *Config, flagName string) {
	switch flagName {
	case "port":
		c.Port = src.Port
	case "baud":
		c.Baud = src.Baud
	case "delay":
		c.MaxRequests = src.MaxRequests
	case "request-interval":
		c.RequestInterval = src.RequestInterval
	case "status-interval":
		c.StatusInterval = src.StatusInterval
	case "handshake-timeout":
		c.HandshakeTimeout = src.HandshakeTimeout
	case "mqtt":
		c.MQTTURL = src.MQTTURL
	}
}

// Validate checks the values.
func (c *Config) Validate() error {
	if c.MaxRequests <= 0 {
		return fmt.Errorf("max requests must be positive: %d", c.MaxRequests)
	}
	if c.Baud <= 0 {
		return fmt.Errorf("baud must be positive: %d", c.Baud)
	}
	if c.RequestInterval < 0 || c.StatusInterval < 0 || c.HandshakeTimeout < 0 {
		return fmt.Errorf("intervals must not be negative")
	}
	return nil
}

// SessionConfig extracts the session policy.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		MaxRequests:      c.MaxRequests,
		RequestInterval:  c.RequestInterval,
		StatusInterval:   c.StatusInterval,
		HandshakeTimeout: c.HandshakeTimeout,
	}
}
