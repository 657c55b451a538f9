package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pixil98/go-mmo/internal/display"
	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/unlocks"
)

// ServerName is who console announcements appear to come from.
const ServerName = "Server"

var (
	whoTmpl = display.MustTemplate("who", `{{len .}} {{if eq (len .) 1}}player{{else}}players{{end}} online
{{- range .}}
  {{printf "%-20s" .Name}} at {{printf "%.0f" .X}},{{printf "%.0f" .Y}}  health {{.Health}}{{if .Dead}} (dead){{end}}
{{- end}}`)

	entitiesTmpl = display.MustTemplate("entities", `{{.Total}} entities
{{- range .Types}}
  {{printf "%-20s" .ID}} {{.Kind | lower}} x{{.Count}}
{{- end}}`)

	unlocksTmpl = display.MustTemplate("unlocks", `{{if not .Edges}}Nothing unlocks from {{.Kind}} {{.ID}}.{{else}}{{.Kind.String | title}} {{.ID}} unlocks:
{{- range .Edges}}
  {{.Effect.Kind}} {{printf "%-20s" .Effect.ID}} {{printf "%.0f%%" (mulf .Chance 100)}} ({{.Tier}})
{{- end}}{{end}}`)
)

func builtinCommands() map[string]command {
	return map[string]command{
		"who": {
			usage: "who",
			help:  "List players in the world.",
			run:   runWho,
		},
		"entities": {
			usage: "entities",
			help:  "Count live entities by type.",
			run:   runEntities,
		},
		"unlocks": {
			usage: "unlocks <craft|acquire|gather|construct> <id>",
			help:  "Show what an action can unlock.",
			run:   runUnlocks,
		},
		"say": {
			usage: "say <text>",
			help:  "Speak to every player.",
			run:   runSay,
		},
		"help": {
			usage: "help",
			help:  "Show this list.",
			run:   runHelp,
		},
		"quit": {
			usage: "quit",
			help:  "Leave the console.",
			run: func(*Console, string) (string, error) {
				return "", errQuit
			},
		},
	}
}

type whoLine struct {
	Name   string
	X, Y   float64
	Health uint32
	Dead   bool
}

func runWho(c *Console, _ string) (string, error) {
	var lines []whoLine
	c.world.Do(func(w *game.World) {
		for _, e := range w.Users() {
			loc := e.Location()
			lines = append(lines, whoLine{Name: e.Name(), X: loc.X(), Y: loc.Y(), Health: e.Health(), Dead: e.IsDead()})
		}
	})
	return display.Render(whoTmpl, lines)
}

type typeCount struct {
	ID    string
	Kind  string
	Count int
}

func runEntities(c *Console, _ string) (string, error) {
	counts := map[string]*typeCount{}
	var total int
	c.world.Do(func(w *game.World) {
		for _, e := range w.Entities() {
			total++
			t := e.Type()
			if counts[t.ID] == nil {
				counts[t.ID] = &typeCount{ID: t.ID, Kind: t.Kind.String()}
			}
			counts[t.ID].Count++
		}
	})

	types := make([]typeCount, 0, len(counts))
	for _, tc := range counts {
		types = append(types, *tc)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })

	return display.Render(entitiesTmpl, struct {
		Total int
		Types []typeCount
	}{total, types})
}

type unlockLine struct {
	Effect unlocks.Effect
	Chance float64
	Tier   unlocks.Tier
}

func runUnlocks(c *Console, args string) (string, error) {
	kindStr, id, _ := strings.Cut(args, " ")
	id = strings.TrimSpace(id)
	if kindStr == "" || id == "" {
		return "", NewUserError("Usage: unlocks <craft|acquire|gather|construct> <id>")
	}
	var kind unlocks.TriggerKind
	if err := kind.UnmarshalText([]byte(strings.ToLower(kindStr))); err != nil {
		return "", NewUserError("%s", display.Capitalize(err.Error()))
	}

	var edges []unlockLine
	c.world.Do(func(w *game.World) {
		for _, e := range w.Registry().Unlocks.Edges(unlocks.Trigger{Kind: kind, ID: id}) {
			edges = append(edges, unlockLine{Effect: e.Effect, Chance: e.Chance, Tier: unlocks.TierFor(e.Chance)})
		}
	})

	return display.Render(unlocksTmpl, struct {
		Kind  unlocks.TriggerKind
		ID    string
		Edges []unlockLine
	}{kind, id, edges})
}

func runSay(c *Console, text string) (string, error) {
	if text == "" {
		return "", NewUserError("Say what?")
	}
	c.world.Do(func(w *game.World) {
		w.BroadcastAll(protocol.New(protocol.SVSay, ServerName, text))
	})
	return fmt.Sprintf("You announce: %s", text), nil
}

func runHelp(c *Console, _ string) (string, error) {
	lines := []string{"Commands:"}
	for _, name := range c.names() {
		cmd := c.commands[name]
		lines = append(lines, fmt.Sprintf("  %-48s %s", cmd.usage, cmd.help))
	}
	return strings.Join(lines, "\n"), nil
}
