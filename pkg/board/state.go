package board

// StateInfo is one entry of the per-position undo stack described in the data
// model: everything needed to exactly invert a do_move/do_null, plus the
// cached check information recomputed after every mutation.
type StateInfo struct {
	// Incrementally-maintained Zobrist hashes.
	Key         Key // full position key
	PawnKey     Key // key of pawn placement only, for the pawn-structure hash
	MaterialKey Key // key of (color,pieceType)->count signature, for material hash

	CastleRights CastleRight
	EPSquare     Square // NoSquare if the previous move was not a double pawn push
	HalfmoveClock int   // plies since the last capture or pawn move
	NullPly       int   // plies since the last null move (do_null)

	CapturedType PieceType // piece type captured by the move leading to this state
	Promoted     bool      // the move leading to this state was a promotion

	// Repetition distance: 0 = not a repetition, +k = first repetition k plies
	// back, -k = second repetition k plies back. See Position.updateRepetition.
	Repetition int

	Checkers Bitboard // enemy pieces currently giving check to the side to move

	// Blockers[c] is the set of pieces (of either color) standing alone
	// between c's king and an enemy slider, so that removing one would expose
	// c's king to an attack. Pinners[c] is the set of c's sliders that pin a
	// piece of the opponent against the opponent's king.
	Blockers [NumColors]Bitboard
	Pinners  [NumColors]Bitboard

	// CheckSquares[pt] is the set of squares from which a piece of type pt
	// would give check to the opponent's king (the side not to move) -- used
	// by gives_check and by search's check extension.
	CheckSquares [NumPieceTypes]Bitboard
}
