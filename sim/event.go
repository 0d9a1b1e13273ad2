// sim/event.go
package sim

import "container/heap"

// episodeKind is a scheduled traffic-generator transition.
type episodeKind int

const (
	episodeWaveStart episodeKind = iota // peace period ends
	episodeWaveEnd                      // wave period ends
	episodeAttackEnd                    // DDoS episode ends
)

// episode is one scheduled transition, ordered by simulated time.
type episode struct {
	at   float64 // simulated seconds
	kind episodeKind
}

// episodeQueue implements heap.Interface and orders episodes by time.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type episodeQueue []episode

func (eq episodeQueue) Len() int           { return len(eq) }
func (eq episodeQueue) Less(i, j int) bool { return eq[i].at < eq[j].at }
func (eq episodeQueue) Swap(i, j int)      { eq[i], eq[j] = eq[j], eq[i] }

func (eq *episodeQueue) Push(x any) {
	*eq = append(*eq, x.(episode))
}

func (eq *episodeQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

func (eq *episodeQueue) schedule(at float64, kind episodeKind) {
	heap.Push(eq, episode{at: at, kind: kind})
}

// popDue removes and returns the next episode whose time has passed, or
// ok=false when nothing is due at now.
func (eq *episodeQueue) popDue(now float64) (episode, bool) {
	if len(*eq) == 0 || (*eq)[0].at > now {
		return episode{}, false
	}
	return heap.Pop(eq).(episode), true
}
