package game

import (
	"github.com/pixil98/go-mmo/internal/protocol"
	"github.com/pixil98/go-mmo/internal/stats"
)

// TalentPoints is how many talents one player may hold at once.
const TalentPoints = 3

// Talent is a permanent stat modifier a player chooses to learn.
type Talent struct {
	ID    string
	Name  string
	Stats stats.Mod
}

func (u *User) HasTalent(id string) bool {
	_, ok := u.talents[id]
	return ok
}

// Talents lists the ids of the learned talents in order.
func (u *User) Talents() []string {
	return sortedKeys(u.talents)
}

// TakeTalent learns the talent with the given id.
func (u *User) TakeTalent(id string) error {
	t, ok := u.entity.world.reg.Talents[id]
	if !ok || u.HasTalent(id) {
		return userError(protocol.SVInvalidTalent)
	}
	if len(u.talents) >= TalentPoints {
		return userError(protocol.SVNoTalentPoints)
	}
	u.talents[id] = t
	u.send(protocol.New(protocol.SVTalent, id))
	u.entity.UpdateStats()
	return nil
}

// UnlearnTalents forgets every talent, returning the points.
func (u *User) UnlearnTalents() {
	if len(u.talents) == 0 {
		return
	}
	clear(u.talents)
	u.send(protocol.New(protocol.SVNoTalents))
	u.entity.UpdateStats()
}

// talentMods is the talent layer of the player's stats, in id order.
func (u *User) talentMods() []stats.Mod {
	if len(u.talents) == 0 {
		return nil
	}
	out := make([]stats.Mod, 0, len(u.talents))
	for _, id := range u.Talents() {
		out = append(out, u.talents[id].Stats)
	}
	return out
}
