package tumbler

import (
	"maps"
	"slices"

	"github.com/akmonengine/tumbler/constraint"
	"github.com/akmonengine/tumbler/spin"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
	KICK
	SPIN_REVERSED
	CONTAINMENT
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case COLLISION_ENTER:
		return "collision_enter"
	case COLLISION_STAY:
		return "collision_stay"
	case COLLISION_EXIT:
		return "collision_exit"
	case KICK:
		return "kick"
	case SPIN_REVERSED:
		return "spin_reversed"
	case CONTAINMENT:
		return "containment"
	default:
		return "unknown"
	}
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Collision events, one per wall in contact with the ball
type CollisionEnterEvent struct {
	Wall     int
	WallName string
	Tick     uint64
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	Wall     int
	WallName string
	Tick     uint64
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	Wall     int
	WallName string
	Tick     uint64
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// KickEvent is sent for every bounce that added a random kick
type KickEvent struct {
	Collision CollisionEvent
}

func (e KickEvent) Type() EventType { return KICK }

type SpinReversedEvent struct {
	Reversal spin.Reversal
	Tick     uint64
}

func (e SpinReversedEvent) Type() EventType { return SPIN_REVERSED }

// ContainmentEvent is sent when the guard had to move the ball
type ContainmentEvent struct {
	Report constraint.GuardReport
	Tick   uint64
}

func (e ContainmentEvent) Type() EventType { return CONTAINMENT }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Wall contact tracking for Enter/Stay/Exit detection, by wall index
	previousActiveWalls map[int]string
	currentActiveWalls  map[int]string
}

func NewEvents() *Events {
	return &Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 16),
		previousActiveWalls: make(map[int]string),
		currentActiveWalls:  make(map[int]string),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContact marks a wall as touched during the current tick
func (e *Events) recordContact(wall int, name string) {
	e.currentActiveWalls[wall] = name
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// processCollisionEvents compares current and previous contacts to detect Enter/Stay/Exit.
// Walls are visited in index order so listeners see a reproducible sequence.
func (e *Events) processCollisionEvents(tick uint64) {
	for _, wall := range slices.Sorted(maps.Keys(e.currentActiveWalls)) {
		name := e.currentActiveWalls[wall]
		if _, ok := e.previousActiveWalls[wall]; ok {
			e.emit(CollisionStayEvent{Wall: wall, WallName: name, Tick: tick})
		} else {
			e.emit(CollisionEnterEvent{Wall: wall, WallName: name, Tick: tick})
		}
	}

	for _, wall := range slices.Sorted(maps.Keys(e.previousActiveWalls)) {
		if _, ok := e.currentActiveWalls[wall]; !ok {
			e.emit(CollisionExitEvent{Wall: wall, WallName: e.previousActiveWalls[wall], Tick: tick})
		}
	}

	// Swap for next tick and clear current
	e.previousActiveWalls, e.currentActiveWalls = e.currentActiveWalls, e.previousActiveWalls
	clear(e.currentActiveWalls)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush(tick uint64) {
	e.processCollisionEvents(tick)

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}

// forget drops the contact history, so the next contact reports an Enter
func (e *Events) forget() {
	clear(e.previousActiveWalls)
	clear(e.currentActiveWalls)
}
