package listener

import (
	"context"
	"io"
	"log/slog"
)

// Console serves one operator connection.
type Console interface {
	Serve(ctx context.Context, rw io.ReadWriter) error
}

// ConnectionManager hands admin connections to the console.
type ConnectionManager struct {
	console Console
}

func NewConnectionManager(console Console) *ConnectionManager {
	return &ConnectionManager{
		console: console,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	if err := m.console.Serve(ctx, newCRLFReadWriter(conn)); err != nil {
		slog.WarnContext(ctx, "admin session", "error", err)
	}
}
