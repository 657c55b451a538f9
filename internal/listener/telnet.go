package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/iammegalith/telnet"
	"github.com/sirupsen/logrus"
)

// TelnetListener serves the admin console over telnet.
type TelnetListener struct {
	addr   string
	cm     *ConnectionManager
	logger logrus.FieldLogger
}

type TelnetListenerOpt func(*TelnetListener)

// WithLogger sets the logger used for connection diagnostics.
func WithLogger(logger logrus.FieldLogger) TelnetListenerOpt {
	return func(l *TelnetListener) {
		l.logger = logger
	}
}

func NewTelnetListener(host string, port uint16, cm *ConnectionManager, opts ...TelnetListenerOpt) *TelnetListener {
	l := &TelnetListener{
		addr:   net.JoinHostPort(host, fmt.Sprint(port)),
		cm:     cm,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *TelnetListener) Start(ctx context.Context) error {
	// Create a cancelable context for all connections
	connCtx, cancelConns := context.WithCancel(context.Background())

	handler := &telnetHandler{
		cFunc:       l.cm.AcceptConnection,
		logger:      l.logger.WithField("listener", "telnet"),
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	svr := telnet.NewServer(l.addr, handler)

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			handler.Stop()
		case <-done:
		}
	}()

	handler.logger.Infof("listening for admin connections on %s", l.addr)
	err := svr.ListenAndServe()
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("address %s is already in use (another server running?)", l.addr)
		}
		return fmt.Errorf("serving telnet on %s: %w", l.addr, err)
	}

	return nil
}

type telnetHandler struct {
	wg          sync.WaitGroup
	cFunc       func(context.Context, io.ReadWriter)
	logger      logrus.FieldLogger
	connCtx     context.Context
	cancelConns context.CancelFunc
	count       atomic.Uint64
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()

	logger := h.logger.WithField("conn", h.count.Add(1))
	logger.Info("admin connected")
	defer func() {
		err := conn.Close()
		if err != nil {
			logger.Errorf("closing telnet connection: %s", err)
		}
		logger.Info("admin disconnected")
	}()

	h.cFunc(h.connCtx, conn)
}

func (h *telnetHandler) Stop() {
	h.cancelConns()
	h.wg.Wait()
}
