package resolver

import (
	"fmt"

	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/rules"
)

// Resolver settles a board after a token has been placed, exploding every
// cell at or over critical mass in breadth-first order.
type Resolver struct {
	rules *rules.Rules
}

// New creates a resolver for the given rules
func New(r *rules.Rules) *Resolver {
	return &Resolver{
		rules: r,
	}
}

// Option configures a single Resolve call
type Option func(*options)

type options struct {
	stopWhenSoleOwner bool
}

// StopWhenSoleOwner ends resolution as soon as a single player owns every
// token on the board. The remaining queue is discarded.
func StopWhenSoleOwner() Option {
	return func(o *options) {
		o.stopWhenSoleOwner = true
	}
}

// Result describes one completed resolution
type Result struct {
	Events  []model.ExplosionEvent
	Steps   int
	Decided bool // Stopped early because one owner held every token
}

type queued struct {
	pos        model.Position
	generation int
}

// StepLimit returns the maximum number of explosions a single resolution may process
func (r *Resolver) StepLimit() int {
	size := r.rules.Size()
	return size * size * r.rules.MaxValueBound()
}

// Resolve mutates board in place until no cell is at or over critical mass.
// The trigger cell must already hold the placed token. On ErrResolutionOverflow
// the board is left partially resolved and must be discarded by the caller.
func (r *Resolver) Resolve(board *model.Board, trigger model.Position, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var result Result
	cell, err := board.GetCell(trigger)
	if err != nil {
		return result, err
	}
	if cell.Value < r.rules.CriticalMass(trigger) {
		return result, nil
	}

	var tokens map[model.PlayerID]int
	total := 0
	if o.stopWhenSoleOwner {
		tokens = make(map[model.PlayerID]int)
		for _, c := range board.All() {
			if c.Owner != model.NoPlayer {
				tokens[c.Owner] += c.Value
				total += c.Value
			}
		}
	}

	limit := r.StepLimit()
	queue := []queued{{pos: trigger, generation: 0}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		p := item.pos
		current := board.Cells[p.Row][p.Col]
		critical := r.rules.CriticalMass(p)
		// A cell can be queued more than once; only explode it while still critical
		if current.Value < critical {
			continue
		}

		if result.Steps >= limit {
			return result, fmt.Errorf("%w: more than %d explosions from %s", model.ErrResolutionOverflow, limit, trigger)
		}
		result.Steps++

		owner := current.Owner
		neighbors := r.rules.Neighbors(p)
		remainder := max(current.Value-len(neighbors), 0)
		if remainder > 0 {
			board.Cells[p.Row][p.Col] = model.Cell{Owner: owner, Value: remainder}
		} else {
			board.Cells[p.Row][p.Col] = model.Cell{}
		}

		for _, n := range neighbors {
			target := board.Cells[n.Row][n.Col]
			if tokens != nil && target.Owner != owner && target.Value > 0 {
				tokens[target.Owner] -= target.Value
				tokens[owner] += target.Value
			}
			target.Owner = owner
			target.Value++
			board.Cells[n.Row][n.Col] = target
			if target.Value >= r.rules.CriticalMass(n) {
				queue = append(queue, queued{pos: n, generation: item.generation + 1})
			}
		}
		if remainder >= critical {
			queue = append(queue, queued{pos: p, generation: item.generation + 1})
		}

		result.Events = append(result.Events, model.ExplosionEvent{
			Position:      p,
			Owner:         owner,
			DistributedTo: neighbors,
			Generation:    item.generation,
		})

		if tokens != nil {
			// Tokens are created only when a cell explodes below its neighbour count
			created := len(neighbors) - (current.Value - remainder)
			tokens[owner] += created
			total += created
			if tokens[owner] == total {
				result.Decided = true
				return result, nil
			}
		}
	}
	return result, nil
}
