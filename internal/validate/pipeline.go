// Package validate implements the move validation pipeline. A raw,
// untrusted proposal is run through an ordered list of total stages
// that either pass it forward or substitute a deterministic fallback.
// As long as at least one legal move exists the pipeline never aborts
// the turn for a malformed or illegal proposal.
package validate

import (
	"fmt"
	"strings"

	"github.com/anthropics/gambit-engine/internal/domain"
)

// maxFallbackAttempts bounds stage-5 re-substitution before the turn is
// declared unresolvable.
const maxFallbackAttempts = 3

// Env supplies the pipeline's view of the position. Legal and Owner are
// snapshots taken immediately before the generator was invoked;
// FreshLegal and FreshOwner re-query the rules engine so the pipeline
// can detect state that mutated while the generator was running.
type Env struct {
	Legal      []string
	Owner      string
	FreshLegal func() []string
	FreshOwner func() string
	Parse      func(move string) error
}

// Result is the pipeline's output: a move guaranteed legal for the
// freshly checked position, the accumulated reason text, and whether a
// fallback was substituted for the generator's own choice.
type Result struct {
	Move     string
	Reason   string
	Fallback bool
}

// state is threaded through the stages.
type state struct {
	env    Env
	move   string
	reason string
	fall   bool
}

// stage is one step of the pipeline. Stages mutate the state or return
// a fatal error; they never panic on malformed input.
type stage struct {
	name string
	run  func(*state) error
}

var stages = []stage{
	{"presence", checkPresence},
	{"membership", checkMembership},
	{"ownership", checkOwnership},
	{"parse", checkParse},
	{"revalidate", checkFresh},
}

// Run validates a proposal against the environment. The stages run in
// order: presence, legality membership, turn ownership, format parse,
// final re-validation. A nil error means Result.Move is legal for the
// current position and turn owner.
func Run(proposal domain.MoveProposal, env Env) (Result, error) {
	if len(env.Legal) == 0 {
		return Result{}, domain.ErrNoLegalMoves
	}

	st := &state{
		env:    env,
		move:   strings.TrimSpace(proposal.Move),
		reason: strings.TrimSpace(proposal.Reason),
	}

	for _, s := range stages {
		if err := s.run(st); err != nil {
			return Result{}, fmt.Errorf("stage %s: %w", s.name, err)
		}
	}

	return Result{Move: st.move, Reason: st.reason, Fallback: st.fall}, nil
}

// checkPresence substitutes the first legal move when the proposal
// carries no move at all.
func checkPresence(st *state) error {
	if st.move != "" {
		return nil
	}
	st.move = st.env.Legal[0]
	st.fall = true
	st.reason = prependReason("no move generated, using fallback "+st.move, st.reason)
	return nil
}

// checkMembership compares the move against the exact legal set and
// substitutes the first legal move on a miss. The generator's stated
// reasoning is kept; the rejection record is prepended, not
// overwritten.
func checkMembership(st *state) error {
	if contains(st.env.Legal, st.move) {
		return nil
	}
	rejected := st.move
	st.move = st.env.Legal[0]
	st.fall = true
	st.reason = prependReason(
		fmt.Sprintf("invalid move %q rejected, using fallback %q", rejected, st.move),
		st.reason,
	)
	return nil
}

// checkOwnership re-confirms the side to move has not changed since the
// pre-generator snapshot. A mismatch is fatal for the turn: no move may
// be applied for the wrong side.
func checkOwnership(st *state) error {
	if st.env.FreshOwner == nil {
		return nil
	}
	if now := st.env.FreshOwner(); now != st.env.Owner {
		return domain.WrapEngineError(domain.ErrTurnOwnership.Code,
			domain.ErrTurnOwnership.Message,
			fmt.Errorf("expected %s, position reports %s", st.env.Owner, now))
	}
	return nil
}

// checkParse confirms the (possibly substituted) move parses in the
// rules engine's notation. The move has already passed membership, so a
// parse failure here is a contract violation between the pipeline and
// the rules engine and is surfaced, never swallowed.
func checkParse(st *state) error {
	if st.env.Parse == nil {
		return nil
	}
	if err := st.env.Parse(st.move); err != nil {
		return domain.WrapEngineError(domain.ErrNotationParse.Code,
			fmt.Sprintf("move %q is in the legal set but unparseable", st.move), err)
	}
	return nil
}

// checkFresh re-fetches the legal set immediately before application
// and re-checks membership, substituting from the fresh set if the
// position shifted under us. Attempts are bounded.
func checkFresh(st *state) error {
	if st.env.FreshLegal == nil {
		return nil
	}
	for attempt := 0; attempt < maxFallbackAttempts; attempt++ {
		fresh := st.env.FreshLegal()
		if len(fresh) == 0 {
			return domain.ErrNoLegalMoves
		}
		if contains(fresh, st.move) {
			return nil
		}
		stale := st.move
		st.move = fresh[0]
		st.fall = true
		st.reason = prependReason(
			fmt.Sprintf("move %q no longer legal, re-substituted %q", stale, st.move),
			st.reason,
		)
	}
	return domain.ErrFallbackExhausted
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func prependReason(note, reason string) string {
	if reason == "" {
		return note
	}
	return note + ". Original reason: " + reason
}
