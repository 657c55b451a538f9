package command

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service"

	"github.com/pixil98/go-mmo/internal/listener"
	"github.com/pixil98/go-mmo/internal/socket"
)

// ListenerConfig is the game client listener.
type ListenerConfig struct {
	IP           string `json:"ip"`
	Port         uint16 `json:"port"`
	MaxClients   int    `json:"max_clients"`
	RejectLinger string `json:"reject_linger"`
	WriteTimeout string `json:"write_timeout"`
}

func (c *ListenerConfig) Validate() error {
	el := errors.NewErrorList()

	if c.MaxClients < 0 {
		el.Add(fmt.Errorf("listener: max_clients must not be negative"))
	}
	if err := checkDuration("reject_linger", c.RejectLinger); err != nil {
		el.Add(fmt.Errorf("listener: %w", err))
	}
	if err := checkDuration("write_timeout", c.WriteTimeout); err != nil {
		el.Add(fmt.Errorf("listener: %w", err))
	}

	return el.Err()
}

// BuildRegistry builds the socket registry. The hooks log when the server
// goes from idle to busy and back.
func (c *ListenerConfig) BuildRegistry() *socket.Registry {
	opts := []socket.RegistryOpt{
		socket.WithInit(func() { slog.Info("first client connected") }),
		socket.WithTeardown(func() { slog.Info("last client socket closed") }),
	}
	if c.WriteTimeout != "" {
		opts = append(opts, socket.WithWriteTimeout(parseDuration(c.WriteTimeout)))
	}
	return socket.NewRegistry(opts...)
}

func (c *ListenerConfig) BuildListener(reg *socket.Registry, sessions listener.SessionRunner) *listener.GameListener {
	var opts []listener.GameListenerOpt
	if c.MaxClients > 0 {
		opts = append(opts, listener.WithMaxClients(c.MaxClients))
	}
	if c.RejectLinger != "" {
		opts = append(opts, listener.WithRejectLinger(parseDuration(c.RejectLinger)))
	}
	return listener.NewGameListener(c.IP, c.Port, reg, sessions, opts...)
}

type AdminProtocol int

const (
	AdminTelnet AdminProtocol = iota
	AdminSSH
)

func (p *AdminProtocol) UnmarshalText(text []byte) error {
	switch string(text) {
	case "telnet":
		*p = AdminTelnet
	case "ssh":
		*p = AdminSSH
	default:
		return fmt.Errorf("unknown admin protocol: %s", text)
	}
	return nil
}

// AdminConfig lists the operator console listeners. None is fine.
type AdminConfig struct {
	Listeners []AdminListenerConfig `json:"listeners"`
}

func (c *AdminConfig) Validate() error {
	el := errors.NewErrorList()
	for i, l := range c.Listeners {
		if err := l.Validate(); err != nil {
			el.Add(fmt.Errorf("admin listener %d: %w", i, err))
		}
	}
	return el.Err()
}

type AdminListenerConfig struct {
	Protocol           AdminProtocol `json:"protocol"`
	Host               string        `json:"host"`
	Port               uint16        `json:"port"`
	HostKeyPath        string        `json:"host_key_path,omitempty"`
	AuthorizedKeysPath string        `json:"authorized_keys_path,omitempty"`
}

func (c *AdminListenerConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}
	if c.Protocol == AdminSSH {
		if c.HostKeyPath == "" {
			el.Add(fmt.Errorf("host_key_path is required for ssh"))
		}
		if c.AuthorizedKeysPath == "" {
			el.Add(fmt.Errorf("authorized_keys_path is required for ssh"))
		}
	}

	return el.Err()
}

func (c *AdminListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	switch c.Protocol {
	case AdminTelnet:
		return listener.NewTelnetListener(c.Host, c.Port, cm), nil
	case AdminSSH:
		hostKey, err := listener.LoadHostKey(c.HostKeyPath)
		if err != nil {
			return nil, fmt.Errorf("setting up ssh host key: %w", err)
		}
		keys, err := listener.LoadAuthorizedKeys(c.AuthorizedKeysPath)
		if err != nil {
			return nil, err
		}
		return listener.NewSshListener(c.Host, c.Port, cm, hostKey, keys), nil
	default:
		return nil, fmt.Errorf("unknown admin protocol: %v", c.Protocol)
	}
}
