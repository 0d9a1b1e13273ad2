// sim/command.go
//
// Topology-editing operations. Every edit goes through Engine.Apply, which
// serializes against settlement ticks; edits fail softly with sentinel
// errors instead of mutating anything.
package sim

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownNode       = errors.New("unknown node")
	ErrInvalidTier       = errors.New("invalid tier")
	ErrInvalidTarget     = errors.New("operation not valid for this node kind")
)

// Edit is one topology-editing command.
type Edit interface {
	apply(e *Engine) error
}

// Apply executes one edit under the engine lock.
func (e *Engine) Apply(edit Edit) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return edit.apply(e)
}

// AddNode creates a node of the given kind. Capex is charged at creation;
// the minted ID comes back through *ID when set.
type AddNode struct {
	Kind NodeKind
	Pos  Position
	Tier string
	Zone string
	ID   *string // out: minted node ID
}

func (c AddNode) apply(e *Engine) error {
	if !validTier(c.Kind, c.Tier) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidTier, c.Tier, c.Kind)
	}
	capex := tierSpecFor(c.Kind, c.Tier).Capex
	if capex > e.cash {
		return ErrInsufficientFunds
	}

	e.nameSeq[c.Kind]++
	n := NewNode(uuid.NewString(), fmt.Sprintf("%s-%d", c.Kind, e.nameSeq[c.Kind]), c.Kind, c.Tier)
	n.Pos = c.Pos
	n.Zone = c.Zone
	if err := e.topo.Add(n); err != nil {
		return err
	}
	e.cash -= capex
	e.buffers.stale = true
	if c.ID != nil {
		*c.ID = n.ID
	}
	logrus.Infof("added %s (%s), capex %.0f", n.Name, n.ID, capex)
	return nil
}

// RemoveNode deletes a node and cascades edge removal. No refund.
type RemoveNode struct {
	ID string
}

func (c RemoveNode) apply(e *Engine) error {
	n := e.topo.Node(c.ID)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, c.ID)
	}
	if err := e.topo.Remove(c.ID); err != nil {
		return err
	}
	e.buffers.stale = true
	logrus.Infof("removed %s", n.Name)
	return nil
}

// Connect toggles the directed edge From→To: creates it when absent,
// removes it when present.
type Connect struct {
	From, To string
}

func (c Connect) apply(e *Engine) error {
	connected, err := e.topo.Toggle(c.From, c.To)
	if err != nil {
		return err
	}
	if connected {
		logrus.Debugf("connected %s -> %s", c.From, c.To)
	} else {
		logrus.Debugf("disconnected %s -> %s", c.From, c.To)
	}
	return nil
}

// UpgradeNode charges the new tier's capex and takes the node out of
// service for the upgrade duration.
type UpgradeNode struct {
	ID   string
	Tier string
}

func (c UpgradeNode) apply(e *Engine) error {
	n := e.topo.Node(c.ID)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, c.ID)
	}
	if n.Compute == nil && n.CDN == nil && n.Autoscale == nil {
		return fmt.Errorf("%w: %s has no tier", ErrInvalidTarget, n.Name)
	}
	if c.Tier == "" || !validTier(n.Kind, c.Tier) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidTier, c.Tier, n.Kind)
	}
	capex := tierSpecFor(n.Kind, c.Tier).Capex
	if capex > e.cash {
		return ErrInsufficientFunds
	}
	e.cash -= capex
	n.Status = StatusBooting
	n.Transition = &Transition{
		Kind:        TransitionUpgrade,
		Remaining:   upgradeSeconds,
		Duration:    upgradeSeconds,
		PendingTier: c.Tier,
	}
	logrus.Infof("upgrading %s to %s", n.Name, c.Tier)
	return nil
}

// SetAlgorithm selects the load-balancing policy of a router node.
type SetAlgorithm struct {
	ID        string
	Algorithm string
}

func (c SetAlgorithm) apply(e *Engine) error {
	n := e.topo.Node(c.ID)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, c.ID)
	}
	if n.Router == nil {
		return fmt.Errorf("%w: %s is not a router", ErrInvalidTarget, n.Name)
	}
	if !validAlgorithm(c.Algorithm) {
		return fmt.Errorf("unknown algorithm %q", c.Algorithm)
	}
	n.Router.Algorithm = c.Algorithm
	return nil
}

// SetDBRole flips a SQL database between primary and replica.
type SetDBRole struct {
	ID   string
	Role DBRole
}

func (c SetDBRole) apply(e *Engine) error {
	n := e.topo.Node(c.ID)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrUnknownNode, c.ID)
	}
	if n.SQL == nil {
		return fmt.Errorf("%w: %s is not a SQL database", ErrInvalidTarget, n.Name)
	}
	n.SQL.Role = c.Role
	return nil
}
