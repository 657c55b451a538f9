package server

import (
	"fmt"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/protocol"
)

// handler applies one client message to the world on behalf of u.
type handler func(w *game.World, u *game.User, msg protocol.Message) error

var handlers = map[protocol.Code]handler{
	protocol.CLPing:                handlePing,
	protocol.CLLocation:            handleLocation,
	protocol.CLCancelAction:        handleCancelAction,
	protocol.CLCraft:               handleCraft,
	protocol.CLConstruct:           handleConstruct,
	protocol.CLGather:              handleGather,
	protocol.CLDrop:                handleDrop,
	protocol.CLSwapItems:           handleSwapItems,
	protocol.CLTakeItem:            handleTakeItem,
	protocol.CLStartWatching:       handleStartWatching,
	protocol.CLStopWatching:        handleStopWatching,
	protocol.CLTargetEntity:        handleTargetEntity,
	protocol.CLTargetPlayer:        handleTargetPlayer,
	protocol.CLPerformObjectAction: handlePerformObjectAction,
	protocol.CLTakeTalent:          handleTakeTalent,
	protocol.CLUnlearnTalents:      handleUnlearnTalents,
	protocol.CLSay:                 handleSay,
	protocol.CLWhisper:             handleWhisper,
}

func handlePing(w *game.World, u *game.User, msg protocol.Message) error {
	w.Send(u.Entity(), msg.Echo(protocol.SVPingReply))
	return nil
}

// CL_LOCATION x y
func handleLocation(_ *game.World, u *game.User, msg protocol.Message) error {
	p, err := point(msg, 0)
	if err != nil {
		return err
	}
	u.Entity().UpdateLocation(p)
	return nil
}

func handleCancelAction(_ *game.World, u *game.User, _ protocol.Message) error {
	u.CancelAction()
	return nil
}

// CL_CRAFT recipe
func handleCraft(_ *game.World, u *game.User, msg protocol.Message) error {
	id, err := msg.Str(0)
	if err != nil {
		return err
	}
	return u.BeginCraft(id)
}

// CL_CONSTRUCT type x y
func handleConstruct(_ *game.World, u *game.User, msg protocol.Message) error {
	id, err := msg.Str(0)
	if err != nil {
		return err
	}
	p, err := point(msg, 1)
	if err != nil {
		return err
	}
	return u.BeginConstruct(id, p)
}

// CL_GATHER serial
func handleGather(_ *game.World, u *game.User, msg protocol.Message) error {
	s, err := serial(msg, 0)
	if err != nil {
		return err
	}
	return u.BeginGather(s)
}

// CL_DROP slot
func handleDrop(_ *game.World, u *game.User, msg protocol.Message) error {
	slot, err := msg.Int(0)
	if err != nil {
		return err
	}
	return u.Drop(slot)
}

// CL_SWAP_ITEMS from_container from_slot to_container to_slot
func handleSwapItems(_ *game.World, u *game.User, msg protocol.Message) error {
	fromC, err := msg.Str(0)
	if err != nil {
		return err
	}
	from, err := msg.Int(1)
	if err != nil {
		return err
	}
	toC, err := msg.Str(2)
	if err != nil {
		return err
	}
	to, err := msg.Int(3)
	if err != nil {
		return err
	}
	return u.SwapSlots(fromC, from, toC, to)
}

// CL_TAKE_ITEM serial slot
func handleTakeItem(_ *game.World, u *game.User, msg protocol.Message) error {
	s, err := serial(msg, 0)
	if err != nil {
		return err
	}
	slot, err := msg.Int(1)
	if err != nil {
		return err
	}
	return u.TakeItem(s, slot)
}

func handleStartWatching(_ *game.World, u *game.User, msg protocol.Message) error {
	s, err := serial(msg, 0)
	if err != nil {
		return err
	}
	return u.StartWatching(s)
}

func handleStopWatching(_ *game.World, u *game.User, msg protocol.Message) error {
	s, err := serial(msg, 0)
	if err != nil {
		return err
	}
	u.StopWatching(s)
	return nil
}

func handleTargetEntity(_ *game.World, u *game.User, msg protocol.Message) error {
	s, err := serial(msg, 0)
	if err != nil {
		return err
	}
	return u.TargetEntity(s)
}

func handleTargetPlayer(_ *game.World, u *game.User, msg protocol.Message) error {
	name, err := msg.Str(0)
	if err != nil {
		return err
	}
	return u.TargetUser(name)
}

// CL_PERFORM_OBJECT_ACTION serial [arg]
func handlePerformObjectAction(_ *game.World, u *game.User, msg protocol.Message) error {
	s, err := serial(msg, 0)
	if err != nil {
		return err
	}
	arg, _ := msg.Str(1)
	return u.PerformObjectAction(s, arg)
}

func handleTakeTalent(_ *game.World, u *game.User, msg protocol.Message) error {
	id, err := msg.Str(0)
	if err != nil {
		return err
	}
	return u.TakeTalent(id)
}

func handleUnlearnTalents(_ *game.World, u *game.User, _ protocol.Message) error {
	u.UnlearnTalents()
	return nil
}

func handleSay(_ *game.World, u *game.User, msg protocol.Message) error {
	text, err := msg.Str(0)
	if err != nil {
		return err
	}
	u.Say(text)
	return nil
}

// CL_WHISPER user text
func handleWhisper(_ *game.World, u *game.User, msg protocol.Message) error {
	to, err := msg.Str(0)
	if err != nil {
		return err
	}
	text, err := msg.Str(1)
	if err != nil {
		return err
	}
	return u.Whisper(to, text)
}

func point(msg protocol.Message, i int) (game.Point, error) {
	x, err := msg.Float(i)
	if err != nil {
		return game.Point{}, err
	}
	y, err := msg.Float(i + 1)
	if err != nil {
		return game.Point{}, err
	}
	p := game.Point{x, y}
	if !game.IsFinite(p) {
		return game.Point{}, fmt.Errorf("%w: location %v", protocol.ErrMalformed, p)
	}
	return p, nil
}

func serial(msg protocol.Message, i int) (game.Serial, error) {
	n, err := msg.Uint(i)
	if err != nil {
		return 0, err
	}
	return game.Serial(n), nil
}
