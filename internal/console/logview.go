package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// LogView is a full screen operator terminal: a live log pane above a
// command line that runs console commands.
type LogView struct {
	app     *tview.Application
	logs    *tview.TextView
	input   *tview.InputField
	console *Console
	onQuit  func()
	running atomic.Bool
}

type LogViewOpt func(*LogView)

// WithScreen draws on screen instead of the controlling terminal.
func WithScreen(screen tcell.Screen) LogViewOpt {
	return func(v *LogView) {
		v.app.SetScreen(screen)
	}
}

// WithQuit sets what happens when the operator quits or presses Ctrl-C.
func WithQuit(f func()) LogViewOpt {
	return func(v *LogView) {
		v.onQuit = f
	}
}

func NewLogView(console *Console, opts ...LogViewOpt) *LogView {
	v := &LogView{
		app:     tview.NewApplication(),
		console: console,
		onQuit:  func() {},
	}

	v.logs = tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true).
		SetMaxLines(5000)
	v.logs.SetBorder(true).SetTitle(" log ").SetBorderColor(tcell.ColorDarkCyan)

	v.input = tview.NewInputField().
		SetLabel("> ").
		SetFieldBackgroundColor(tcell.ColorBlack)
	v.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		v.submit(v.input.GetText())
		v.input.SetText("")
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.logs, 0, 1, false).
		AddItem(v.input, 1, 0, true)

	v.app.SetRoot(layout, true).SetFocus(v.input)
	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			v.onQuit()
			return nil
		}
		return event
	})

	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Writer is where log output for the pane goes. It is safe for concurrent
// use.
func (v *LogView) Writer() io.Writer {
	return logWriter{v}
}

type logWriter struct {
	v *LogView
}

func (w logWriter) Write(p []byte) (int, error) {
	n, err := w.v.logs.Write(p)
	if w.v.running.Load() {
		w.v.app.Draw()
	}
	return n, err
}

// Text is the current content of the log pane.
func (v *LogView) Text() string {
	return v.logs.GetText(false)
}

// submit runs a console command and prints the result to the pane.
func (v *LogView) submit(line string) {
	if line == "" {
		return
	}
	fmt.Fprintf(v.logs, "> %s\n", line)

	out, err := v.console.Exec(line)
	var userErr *UserError
	switch {
	case errors.Is(err, errQuit):
		v.onQuit()
		return
	case errors.As(err, &userErr):
		out = userErr.Message
	case err != nil:
		out = fmt.Sprintf("error: %s", err)
	}
	if out != "" {
		fmt.Fprintln(v.logs, out)
	}
}

// Start runs the terminal until ctx is cancelled.
func (v *LogView) Start(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		v.running.Store(false)
		v.app.Stop()
	})
	defer stop()

	v.running.Store(true)
	defer v.running.Store(false)
	if err := v.app.Run(); err != nil {
		return fmt.Errorf("running log view: %w", err)
	}
	return nil
}
