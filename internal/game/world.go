package game

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/text/cases"

	"github.com/pixil98/go-mmo/internal/protocol"
)

const (
	// ActionDistance is how close a player must be to interact with something.
	ActionDistance = 30.0
	// DefaultCullDistance is how far away state changes are still sent.
	DefaultCullDistance = 450.0
	// RegenInterval is how often health and energy regenerate.
	RegenInterval = time.Second
)

// Publisher delivers compiled frames to a session.
type Publisher interface {
	Publish(session string, data []byte) error
}

// World is the authoritative simulation. It is not safe for concurrent use;
// one goroutine owns it and drives Tick.
type World struct {
	reg   *Registry
	pub   Publisher
	rng   RNG
	clock func() time.Time

	scripts      ActionRunner
	onLeave      func(*User)
	spawnPoint   Point
	spawnRadius  float64
	cullDistance float64

	lastSerial Serial
	entities   map[Serial]*Entity
	order      []*Entity
	users      map[string]*Entity
	removals   []*Entity
	spawners   []*Spawner

	outbox map[string][]protocol.Message
}

type WorldOpt func(*World)

// WithRNG replaces the default seeded generator.
func WithRNG(rng RNG) WorldOpt {
	return func(w *World) {
		w.rng = rng
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) WorldOpt {
	return func(w *World) {
		w.clock = clock
	}
}

// WithSpawnPoint sets where new and respawning players appear.
func WithSpawnPoint(p Point, radius float64) WorldOpt {
	return func(w *World) {
		w.spawnPoint = p
		w.spawnRadius = radius
	}
}

// WithScripts sets the runner for object action scripts.
func WithScripts(r ActionRunner) WorldOpt {
	return func(w *World) {
		w.scripts = r
	}
}

// WithCullDistance overrides DefaultCullDistance.
func WithCullDistance(d float64) WorldOpt {
	return func(w *World) {
		w.cullDistance = d
	}
}

func NewWorld(reg *Registry, pub Publisher, opts ...WorldOpt) *World {
	w := &World{
		reg:          reg,
		pub:          pub,
		rng:          NewRNG(1),
		clock:        time.Now,
		cullDistance: DefaultCullDistance,
		entities:     map[Serial]*Entity{},
		users:        map[string]*Entity{},
		outbox:       map[string][]protocol.Message{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.spawners = reg.Spawners
	return w
}

// OnLeave sets a function called with each player as they leave, before
// they are removed.
func (w *World) OnLeave(f func(*User)) {
	w.onLeave = f
}

func (w *World) Registry() *Registry {
	return w.reg
}

func (w *World) Now() time.Time {
	return w.clock()
}

func (w *World) RNG() RNG {
	return w.rng
}

func (w *World) nextSerial() Serial {
	w.lastSerial++
	return w.lastSerial
}

// Populate fills every spawner up to its quantity.
func (w *World) Populate() {
	for _, s := range w.spawners {
		for range s.Quantity {
			if w.spawnFrom(s) == nil {
				s.scheduleSpawn()
			}
		}
	}
}

func (w *World) addEntity(e *Entity) {
	w.entities[e.serial] = e
	w.order = append(w.order, e)

	switch e.typ.Kind {
	case KindUser:
		w.broadcastExcept(e.loc, protocol.New(protocol.SVLocation, e.user.name, e.loc.X(), e.loc.Y()), e)
	case KindObject, KindNPC:
		w.Broadcast(e.loc, objectMessage(e))
	default:
		panic(unknownKind(e.typ.Kind))
	}
}

func objectMessage(e *Entity) protocol.Message {
	return protocol.New(protocol.SVObject, e.serial, e.loc.X(), e.loc.Y(), e.typ.ID)
}

// AddObject places a new object of type t.
func (w *World) AddObject(t *EntityType, loc Point, owner string) *Entity {
	e := w.newEntity(t, loc)
	e.object.owner = owner
	w.addEntity(e)
	return e
}

// AddNPC places a new NPC of type t.
func (w *World) AddNPC(t *EntityType, loc Point) *Entity {
	e := w.newEntity(t, loc)
	w.addEntity(e)
	return e
}

func (w *World) spawn(t *EntityType, loc Point) *Entity {
	switch t.Kind {
	case KindObject:
		return w.AddObject(t, loc, "")
	case KindNPC:
		return w.AddNPC(t, loc)
	case KindUser:
		return nil
	default:
		panic(unknownKind(t.Kind))
	}
}

func foldName(name string) string {
	return cases.Fold().String(name)
}

// AddUser brings a player into the world, restoring rec when given.
func (w *World) AddUser(name, session string, rec *UserRecord) (*Entity, error) {
	key := foldName(name)
	if _, ok := w.users[key]; ok {
		return nil, ErrUserExists
	}

	loc := w.spawnLocation()
	if rec != nil && rec.Location != nil && w.IsLocationValid(w.reg.UserType, *rec.Location, nil) {
		loc = *rec.Location
	}

	e := w.newEntity(w.reg.UserType, loc)
	u := e.user
	u.name = name
	u.session = session
	u.lastContact = w.Now()
	u.known = w.reg.DefaultKnown()
	if rec != nil {
		w.restoreUser(e, rec)
	}

	w.users[key] = e
	w.addEntity(e)
	w.introduceUser(e)
	return e, nil
}

// RemoveUser takes a player out of the world at the end of this tick.
func (w *World) RemoveUser(name string) error {
	key := foldName(name)
	e, ok := w.users[key]
	if !ok {
		return ErrUserNotFound
	}
	delete(w.users, key)
	if w.onLeave != nil {
		w.onLeave(e.user)
	}
	e.MarkForRemoval()
	w.broadcastExcept(e.loc, protocol.New(protocol.SVUserDisconnected, e.user.name), e)
	return nil
}

func (w *World) User(name string) (*Entity, bool) {
	e, ok := w.users[foldName(name)]
	return e, ok
}

// Users lists players ordered by name.
func (w *World) Users() []*Entity {
	out := make([]*Entity, 0, len(w.users))
	for _, key := range sortedKeys(w.users) {
		out = append(out, w.users[key])
	}
	return out
}

func (w *World) Entity(serial Serial) (*Entity, bool) {
	e, ok := w.entities[serial]
	if !ok || e.removalPending {
		return nil, false
	}
	return e, true
}

// Entities lists live entities in update order.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.order))
	for _, e := range w.order {
		if !e.removalPending {
			out = append(out, e)
		}
	}
	return out
}

// Tick advances the simulation. Every entity is updated once, in the order
// it was added, then spawners run and removals take effect.
func (w *World) Tick(elapsed time.Duration) {
	for _, e := range w.order {
		if e.removalPending {
			continue
		}
		e.Update(elapsed)
	}
	for _, s := range w.spawners {
		s.update(w, elapsed)
	}
	w.purge()
}

func (w *World) markForRemoval(e *Entity) {
	w.removals = append(w.removals, e)
}

func (w *World) purge() {
	if len(w.removals) == 0 {
		return
	}

	gone := make(map[*Entity]struct{}, len(w.removals))
	for _, e := range w.removals {
		gone[e] = struct{}{}
		e.removed = true
		delete(w.entities, e.serial)

		switch e.typ.Kind {
		case KindUser:
			if w.users[foldName(e.user.name)] == e {
				delete(w.users, foldName(e.user.name))
			}
		case KindObject, KindNPC:
			w.Broadcast(e.loc, protocol.New(protocol.SVRemoveObject, e.serial))
		default:
			panic(unknownKind(e.typ.Kind))
		}

		if e.spawner != nil {
			e.spawner.scheduleSpawn()
		}
	}
	w.removals = nil

	kept := w.order[:0]
	for _, e := range w.order {
		if _, ok := gone[e]; !ok {
			kept = append(kept, e)
		}
	}
	clear(w.order[len(kept):])
	w.order = kept

	for _, e := range w.order {
		if _, ok := gone[e.target]; ok {
			e.target = nil
		}
		if e.npc != nil {
			for g := range gone {
				e.npc.threat.Forget(g)
			}
		}
	}
}

// forgetThreat removes e from every NPC's threat table.
func (w *World) forgetThreat(e *Entity) {
	for _, o := range w.order {
		if o.npc != nil {
			o.npc.threat.Forget(e)
		}
		if o.target == e {
			o.target = nil
		}
	}
}

// Send queues msg for a player. Queued messages go out on Flush.
func (w *World) Send(e *Entity, msg protocol.Message) {
	if e == nil || e.user == nil || e.user.session == "" {
		return
	}
	w.outbox[e.user.session] = append(w.outbox[e.user.session], msg)
}

// Broadcast queues msg for every player within the cull distance of p.
func (w *World) Broadcast(p Point, msg protocol.Message) {
	w.broadcastExcept(p, msg, nil)
}

func (w *World) broadcastExcept(p Point, msg protocol.Message, except *Entity) {
	for _, u := range w.users {
		if u == except || Distance(u.loc, p) > w.cullDistance {
			continue
		}
		w.Send(u, msg)
	}
}

// BroadcastAll queues msg for every player.
func (w *World) BroadcastAll(msg protocol.Message) {
	for _, u := range w.users {
		w.Send(u, msg)
	}
}

// Flush publishes queued messages, session by session in a stable order.
// Delivery failures are logged and dropped.
func (w *World) Flush(ctx context.Context) {
	for _, session := range sortedKeys(w.outbox) {
		for _, m := range w.outbox[session] {
			err := w.pub.Publish(session, m.Compile())
			if err != nil {
				slog.WarnContext(ctx, "publishing message", "session", session, "code", m.Code, "error", err)
			}
		}
	}
	clear(w.outbox)
}

// Pending is the number of messages queued for a session.
func (w *World) Pending(session string) int {
	return len(w.outbox[session])
}

// IsLocationValid reports whether an entity of type t could stand at loc:
// inside the map, on allowed terrain, and clear of colliding entities.
func (w *World) IsLocationValid(t *EntityType, loc Point, ignore *Entity) bool {
	if !IsFinite(loc) {
		return false
	}
	r := t.CollisionAt(loc)
	if w.reg.Map != nil && !w.reg.Map.Allows(r, t.Terrain) {
		return false
	}
	if !t.Collides {
		return true
	}
	for _, o := range w.order {
		if o == ignore || o.removalPending || !o.typ.Collides {
			continue
		}
		if r.Intersects(o.CollisionRect()) {
			return false
		}
	}
	return true
}

const spawnAttempts = 20

func randomPointNear(center Point, radius float64, rng RNG) Point {
	angle := rng.Float64() * 2 * math.Pi
	dist := radius * math.Sqrt(rng.Float64())
	return Point{center.X() + dist*math.Cos(angle), center.Y() + dist*math.Sin(angle)}
}

func (w *World) spawnLocation() Point {
	for range spawnAttempts {
		p := randomPointNear(w.spawnPoint, w.spawnRadius, w.rng)
		if w.IsLocationValid(w.reg.UserType, p, nil) {
			return p
		}
	}
	return w.spawnPoint
}

// introduceUser sends a joining player their own state and everything
// around them.
func (w *World) introduceUser(e *Entity) {
	u := e.user
	w.Send(e, protocol.New(protocol.SVWelcome))
	w.Send(e, protocol.New(protocol.SVLocationInstant, u.name, e.loc.X(), e.loc.Y()))
	u.sendStats()
	w.Send(e, protocol.New(protocol.SVPlayerHealth, u.name, e.health))
	w.Send(e, protocol.New(protocol.SVPlayerEnergy, u.name, e.energy))
	for i, s := range u.inventory {
		if !s.IsEmpty() {
			u.sendSlot(containerInventory, i)
		}
	}
	for i, s := range u.gear {
		if !s.IsEmpty() {
			u.sendSlot(containerGear, i)
		}
	}
	w.Send(e, protocol.New(protocol.SVRecipes, stringArgs(sortedKeys(u.known.Recipes))...))
	w.Send(e, protocol.New(protocol.SVConstructions, stringArgs(sortedKeys(u.known.Constructions))...))
	for _, id := range u.Talents() {
		w.Send(e, protocol.New(protocol.SVTalent, id))
	}

	for _, o := range w.order {
		if o == e || o.removalPending || Distance(o.loc, e.loc) > w.cullDistance {
			continue
		}
		w.describeTo(e, o)
	}
}

// describeTo sends viewer what it needs to know about o.
func (w *World) describeTo(viewer, o *Entity) {
	switch o.typ.Kind {
	case KindUser:
		w.Send(viewer, protocol.New(protocol.SVLocation, o.user.name, o.loc.X(), o.loc.Y()))
		w.Send(viewer, protocol.New(protocol.SVPlayerHealth, o.user.name, o.health))
	case KindObject, KindNPC:
		w.Send(viewer, objectMessage(o))
		if o.health < o.stats.MaxHealth {
			w.Send(viewer, protocol.New(protocol.SVEntityHealth, o.serial, o.health))
		}
		if o.loot != nil && !o.loot.IsEmpty() {
			w.Send(viewer, protocol.New(protocol.SVLootable, o.serial))
		}
		if o.object != nil && o.object.transformation.Active() {
			w.Send(viewer, protocol.New(protocol.SVTransformTime, o.serial, o.object.transformation.Remaining().Milliseconds()))
		}
	default:
		panic(unknownKind(o.typ.Kind))
	}
}

func stringArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Sessions lists the sessions of every player, ordered by player name.
func (w *World) Sessions() []string {
	users := w.Users()
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.user.session)
	}
	sort.Strings(out)
	return out
}
