package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-mmo/internal/messaging"
)

// NatsConfig is the embedded message bus. The default binds a random local
// port.
type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (c *NatsConfig) Validate() error {
	el := errors.NewErrorList()

	if err := checkDuration("start_timeout", c.StartTimeout); err != nil {
		el.Add(fmt.Errorf("nats: %w", err))
	}
	if c.Port < 0 || c.Port > 65535 {
		el.Add(fmt.Errorf("nats: port %d out of range", c.Port))
	}

	return el.Err()
}

func (c *NatsConfig) BuildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		opts = append(opts, messaging.WithStartTimeout(parseDuration(c.StartTimeout)))
	}
	if c.Host != "" {
		opts = append(opts, messaging.WithHost(c.Host))
	}
	port := messaging.RandomPort
	if c.Port != 0 {
		port = c.Port
	}
	opts = append(opts, messaging.WithPort(port))

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	return s, nil
}
