// Package rules wraps the game-rules library behind a small interface.
// The engine is the ground truth for legality, turn ownership, and
// terminal conditions; nothing above this package second-guesses it.
package rules

// Status reports whether the game has ended and how.
type Status struct {
	Over   bool
	Result string // "1-0", "0-1", "1/2-1/2", or "*" while in progress
	Method string // "Checkmate", "Stalemate", ... empty while in progress
}

// Engine is the controller's view of the rules library.
type Engine interface {
	// Turn returns the side entitled to move, "White" or "Black".
	Turn() string

	// LegalMoves enumerates the legal moves for the current position as
	// coordinate-notation strings, in the library's stable order.
	LegalMoves() []string

	// Parse checks that a move string is readable, trying the native
	// coordinate notation first and the human algebraic notation second.
	Parse(move string) error

	// Apply plays a move against the current position.
	Apply(move string) error

	// Status reports the terminal state of the game, if any.
	Status() Status

	// FEN renders the current position.
	FEN() string

	// Describe renders a move in descriptive form ("Ng1-f3") for the
	// current position. Unreadable moves are returned unchanged.
	Describe(move string) string
}
