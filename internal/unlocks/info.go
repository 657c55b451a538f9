package unlocks

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-mmo/internal/display"
)

// Tier is the coarse likelihood shown to players instead of a number.
type Tier int

const (
	TierNone Tier = iota
	TierSmall
	TierModerate
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierSmall:
		return "small"
	case TierModerate:
		return "moderate"
	case TierHigh:
		return "high"
	default:
		return ""
	}
}

// TierFor buckets a chance.
func TierFor(chance float64) Tier {
	switch {
	case chance <= 0:
		return TierNone
	case chance <= 0.05:
		return TierSmall
	case chance <= 0.4:
		return TierModerate
	default:
		return TierHigh
	}
}

// EffectInfo summarises what a trigger could still unlock for a player.
type EffectInfo struct {
	HasEffect bool
	Chance    float64
	Tier      Tier
	Message   string
}

var hintTemplate = display.MustTemplate("unlock-hint",
	`{{ .Action }} has a {{ .Tier }} chance to unlock something.`)

// EffectInfo reports the best chance among effects of t that are not known
// yet. The effects themselves are not disclosed.
func (g *Graph) EffectInfo(t Trigger, known Known) EffectInfo {
	var info EffectInfo
	for e, chance := range g.edges[t] {
		if known.Has(e) {
			continue
		}
		info.HasEffect = true
		info.Chance = max(info.Chance, chance)
	}
	if !info.HasEffect {
		return info
	}

	info.Tier = TierFor(info.Chance)
	action := actionPhrase[t.Kind]
	msg, err := display.Render(hintTemplate, struct {
		Action string
		Tier   string
	}{
		Action: action,
		Tier:   info.Tier.String(),
	})
	if err != nil {
		slog.Warn("rendering unlock hint", "trigger", t.ID, "error", err)
		msg = fmt.Sprintf("%s has a %s chance to unlock something.", action, info.Tier)
	}
	info.Message = msg
	return info
}
