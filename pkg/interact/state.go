package interact

import (
	"github.com/rmax-ai/graphscope/pkg/geom"
	"github.com/rmax-ai/graphscope/pkg/graph"
)

// State is the single interaction mode of the controller. Exactly one of
// Idle, Panning or DraggingNode is active at a time.
type State interface {
	isState()
}

// Idle is the resting state.
type Idle struct{}

// Panning moves the camera with the pointer.
type Panning struct {
	Start  geom.Vec // pointer position at press, surface units
	Origin geom.Vec // camera origin at press
}

// DraggingNode pins a node under the pointer.
type DraggingNode struct {
	Node  int      // arena handle
	ID    string   // node id, checked against the current model
	Start geom.Vec // pointer position at press, surface units
	model *graph.Model
}

func (Idle) isState()         {}
func (Panning) isState()      {}
func (DraggingNode) isState() {}

// Cursor is the pointer affordance a front end should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorPointer
	CursorGrabbing
	CursorMove
)

func (c Cursor) String() string {
	switch c {
	case CursorPointer:
		return "pointer"
	case CursorGrabbing:
		return "grabbing"
	case CursorMove:
		return "move"
	default:
		return "default"
	}
}
