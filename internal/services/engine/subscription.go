package engine

import (
	"slices"

	"github.com/mcoot/chainreaction/internal/model"
)

// ChangeKind identifies what changed the engine state
type ChangeKind string

const (
	ChangeMove ChangeKind = "move"
	ChangeUndo ChangeKind = "undo"
	ChangeRedo ChangeKind = "redo"
	ChangeSeek ChangeKind = "seek"
)

// Change is delivered to listeners after every committed state change.
// Outcome is set only for ChangeMove.
type Change struct {
	Kind     ChangeKind
	Outcome  *model.MoveOutcome
	Snapshot model.GameSnapshot
}

// Listener receives engine changes synchronously, in commit order
type Listener func(Change)

// SubscriptionID identifies a registered listener
type SubscriptionID int

// Subscribe registers a listener and returns the ID used to remove it
func (e *Engine) Subscribe(l Listener) SubscriptionID {
	e.nextSubID++
	id := e.nextSubID
	e.listeners[id] = l
	e.order = append(e.order, id)
	return id
}

// Unsubscribe removes a listener. It reports whether the listener was registered.
// A listener removed during delivery receives no further changes, including the
// one being delivered.
func (e *Engine) Unsubscribe(id SubscriptionID) bool {
	if _, ok := e.listeners[id]; !ok {
		return false
	}
	delete(e.listeners, id)
	e.order = slices.DeleteFunc(e.order, func(other SubscriptionID) bool {
		return other == id
	})
	return true
}

func (e *Engine) notify(change Change) {
	// Listeners may subscribe or unsubscribe while being called
	ids := slices.Clone(e.order)
	for _, id := range ids {
		l, ok := e.listeners[id]
		if !ok {
			continue
		}
		l(change)
	}
}
