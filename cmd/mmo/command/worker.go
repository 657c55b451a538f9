package command

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-service"

	"github.com/pixil98/go-mmo/internal/console"
	"github.com/pixil98/go-mmo/internal/driver"
	"github.com/pixil98/go-mmo/internal/listener"
	"github.com/pixil98/go-mmo/internal/messaging"
	"github.com/pixil98/go-mmo/internal/player"
	"github.com/pixil98/go-mmo/internal/server"
	"github.com/pixil98/go-mmo/internal/worker"
)

// App is everything BuildWorkers put together.
type App struct {
	Workers service.WorkerList
	// LogView is set when the local console was asked for.
	LogView *console.LogView
}

// BuildWorkers wires the server described by cfg. quit is called when the
// local console asks to shut down.
func BuildWorkers(cfg *Config, withConsole bool, quit func()) (*App, error) {
	bus, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, err
	}

	reg, err := cfg.Storage.BuildRegistry()
	if err != nil {
		return nil, err
	}
	store, err := cfg.Storage.BuildAccountStore()
	if err != nil {
		return nil, err
	}
	accounts := player.NewAccounts(store, cfg.World.accountOpts()...)

	world := cfg.World.BuildWorld(reg, messaging.NewSessionPublisher(bus))
	world.Populate()
	slog.Info("world populated", "map", cfg.Storage.Map, "entities", len(world.Entities()))

	queue := worker.NewQueue()
	mgr := server.NewManager(world, bus, accounts, queue, cfg.World.managerOpts()...)
	sessions := player.NewSessionManager(accounts, mgr, bus, cfg.World.sessionOpts()...)
	games := cfg.Listener.BuildListener(cfg.Listener.BuildRegistry(), sessions)

	var drvOpts []driver.TickDriverOpt
	if cfg.TickInterval != "" {
		drvOpts = append(drvOpts, driver.WithTickLength(cfg.tickInterval()))
	}
	drv := driver.NewTickDriver([]driver.Manager{mgr}, drvOpts...)

	workers := service.WorkerList{
		"nats":     bus,
		"saves":    queue,
		"server":   mgr,
		"sessions": sessions,
		"listener": games,
		"driver":   drv,
	}

	con := console.New(mgr)
	cm := listener.NewConnectionManager(con)
	for i, l := range cfg.Admin.Listeners {
		w, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating admin listener %d: %w", i, err)
		}
		workers[fmt.Sprintf("admin-%d", i)] = w
	}

	app := &App{Workers: workers}
	if withConsole {
		app.LogView = console.NewLogView(con, console.WithQuit(quit))
		workers["console"] = app.LogView
	}
	return app, nil
}
