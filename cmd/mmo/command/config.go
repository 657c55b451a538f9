package command

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string         `json:"tick_interval"`
	Listener     ListenerConfig `json:"listener"`
	Admin        AdminConfig    `json:"admin"`
	Nats         NatsConfig     `json:"nats"`
	Storage      StorageConfig  `json:"storage"`
	World        WorldConfig    `json:"world"`
}

// LoadConfig reads and validates a JSON config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < time.Millisecond || d > time.Second {
			el.Add(fmt.Errorf("tick_interval must be between 1ms and 1s"))
		}
	}

	el.Add(c.Listener.Validate())
	el.Add(c.Admin.Validate())
	el.Add(c.Nats.Validate())
	el.Add(c.Storage.Validate())
	el.Add(c.World.Validate())

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	return parseDuration(c.TickInterval)
}

// parseDuration parses a duration that Validate already checked. Empty is
// zero.
func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// checkDuration validates an optional, non-negative duration string.
func checkDuration(name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	return nil
}
