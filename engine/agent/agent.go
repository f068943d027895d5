// Package agent implements the heuristic computer opponent: a bidding
// policy and a play/pass policy built on the engine's legal-move
// enumerator. It plays legally and makes progress; it does not play
// optimally, and the probabilities below are tunable policy rather than
// game rules.
package agent

import (
	"sort"

	"github.com/qiuyin/doudizhu/engine"
)

// Thresholds for the play policy.
const (
	// finishAttemptHandSize: when leading with this many cards or fewer,
	// try to empty the hand in a single shape.
	finishAttemptHandSize = 4
	// bombFreelyHandSize: with this many cards or fewer, spend bombs
	// without hesitation; above it, a coin flip decides.
	bombFreelyHandSize = 6
)

// Agent is a seeded heuristic decision maker. One Agent serves any number
// of seats; all randomness flows through its own xorshift state so full
// AI-vs-AI deals replay deterministically from a seed.
type Agent struct {
	rng uint64
}

// New returns an agent seeded for deterministic simulation.
func New(seed uint64) *Agent {
	if seed == 0 {
		seed = 1
	}
	return &Agent{rng: seed}
}

func (a *Agent) nextRand() uint64 {
	x := a.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	a.rng = x
	return x
}

// roll returns true with roughly pct percent probability.
func (a *Agent) roll(pct uint64) bool {
	return a.nextRand()%100 < pct
}

// DecideBid chooses whether the seat raises the current bid. The policy
// is mostly random — eager when nobody has bid yet, reluctant once the
// price went up — nudged by raw hand strength.
func (a *Agent) DecideBid(hand []engine.Card, highestBid uint8, anyoneBid bool) bool {
	if highestBid >= engine.MaxBid {
		return false
	}
	pct := uint64(55)
	if anyoneBid {
		pct = 25
	}
	pct += uint64(handStrength(hand)) * 5
	if pct > 90 {
		pct = 90
	}
	return a.roll(pct)
}

// handStrength counts the coarse power of a hand: bombs, jokers, and twos.
func handStrength(hand []engine.Card) int {
	counts := make(map[uint8]int)
	strength := 0
	for _, c := range hand {
		v := c.Value()
		counts[v]++
		if v >= engine.ValueTwo {
			strength++
		}
	}
	for _, n := range counts {
		if n == 4 {
			strength += 2
		}
	}
	return strength
}

// DecidePlay chooses the cards to play for a hand facing toBeat, or nil
// to pass. A zero toBeat means the seat is leading and must play.
func (a *Agent) DecidePlay(hand []engine.Card, toBeat engine.Shape) []engine.Card {
	candidates := engine.Enumerate(hand, toBeat)
	if len(candidates) == 0 {
		return nil
	}

	type scored struct {
		cards []engine.Card
		shape engine.Shape
	}
	plays := make([]scored, len(candidates))
	for i, c := range candidates {
		plays[i] = scored{cards: c, shape: engine.Classify(c)}
	}
	// Weakest first; bombs and the rocket sink to the end so they are
	// spent only deliberately.
	sort.SliceStable(plays, func(i, j int) bool {
		bi, bj := plays[i].shape.IsBombOrRocket(), plays[j].shape.IsBombOrRocket()
		if bi != bj {
			return bj
		}
		if plays[i].shape.Primary != plays[j].shape.Primary {
			return plays[i].shape.Primary < plays[j].shape.Primary
		}
		return len(plays[i].cards) < len(plays[j].cards)
	})

	leading := toBeat.Type == engine.ShapeNone
	if leading {
		// Close to going out: dump everything at once if one shape covers
		// the whole hand.
		if len(hand) <= finishAttemptHandSize {
			for _, p := range plays {
				if len(p.cards) == len(hand) {
					return p.cards
				}
			}
		}
		return plays[0].cards
	}

	best := plays[0]
	if !best.shape.IsBombOrRocket() {
		return best.cards
	}
	// Only bombs can answer. Spend one when the hand is nearly empty,
	// otherwise half the time.
	if len(hand) <= bombFreelyHandSize || a.roll(50) {
		return best.cards
	}
	return nil
}

// Act drives one full turn for the current seat of a table: a bid during
// bidding, a play or pass during play. It returns the cards played (nil
// for a pass or a declined bid) and applies the move to the table.
func (a *Agent) Act(t *engine.TableState) ([]engine.Card, error) {
	seat := t.Current
	switch t.Phase {
	case engine.PhaseBidding:
		want := a.DecideBid(t.Players[seat].Cards(), t.HighestBid, t.HighestBidder != engine.NoSeat)
		_, err := t.ApplyBid(seat, want)
		return nil, err
	case engine.PhasePlaying:
		cards := a.DecidePlay(t.Players[seat].Cards(), t.MustBeat())
		if cards == nil {
			return nil, t.ApplyPass(seat)
		}
		return cards, t.ApplyPlay(seat, cards)
	default:
		return nil, engine.ErrWrongPhase
	}
}
