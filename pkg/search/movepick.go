package search

import (
	"github.com/umer-fa/morlock-don/pkg/board"
)

// pickerMode selects the stage machine a Picker runs: the full main-search
// ordering, the capture-only quiescence ordering (optionally restricted to a
// recapture square at very low depth), or the SEE-thresholded ProbCut
// ordering. Evasion stages are entered automatically when in check.
type pickerMode uint8

const (
	mainMode pickerMode = iota
	qsearchMode
	probCutMode
)

type pickerStage uint8

const (
	stageTTMove pickerStage = iota
	stageCaptureInit
	stageGoodCapture
	stageKiller
	stageCounter
	stageQuietInit
	stageQuiet
	stageBadCapture
	stageEvasionInit
	stageEvasion
	stageQCaptureInit
	stageQCapture
	stageQCheckInit
	stageQCheck
	stageProbCutInit
	stageProbCut
	stageDone
)

type scoredMove struct {
	move  board.Move
	score int32
}

// Picker yields pseudo-legal moves one at a time, best-candidate-first, so
// the search can cut off before paying for full generation and ordering of
// the remainder. Score extraction swaps the best remaining entry to the
// front of the list instead of sorting, since most nodes consume only a few
// moves before a beta cutoff.
type Picker struct {
	w   *Worker
	pos *board.Position

	mode  pickerMode
	stage pickerStage

	ttMove  board.Move
	killers [2]board.Move
	counter board.Move
	ply     int
	depth   int

	recapture board.Square // qsearchMode at very low depth: only recaptures here
	threshold int          // probCutMode: minimum SEE gain

	list []scoredMove
	idx  int
	bad  []board.Move
	badI int
}

// NewPicker builds a main-search picker for the node at ply.
func (w *Worker) NewPicker(pos *board.Position, ttMove board.Move, ply, depth int) *Picker {
	p := &Picker{w: w, pos: pos, mode: mainMode, ttMove: ttMove, ply: ply, depth: depth}
	p.killers = w.stack[ply].Killers
	if ply > 0 {
		if prev := w.stack[ply-1]; prev.ContPiece != board.NoPiece {
			p.counter = w.counterMoves[prev.ContPiece][prev.ContTo]
		}
	}
	p.stage = stageTTMove
	return p
}

// NewQuiescencePicker builds a capture-only picker. A valid recapture square
// restricts generation to captures landing there; quiet checking moves are
// added only at depth >= 0.
func (w *Worker) NewQuiescencePicker(pos *board.Position, ttMove board.Move, ply, depth int, recapture board.Square) *Picker {
	p := &Picker{w: w, pos: pos, mode: qsearchMode, ttMove: ttMove, ply: ply, depth: depth, recapture: recapture}
	p.stage = stageTTMove
	return p
}

// NewProbCutPicker yields only captures whose static exchange meets threshold.
func (w *Worker) NewProbCutPicker(pos *board.Position, ttMove board.Move, ply, threshold int) *Picker {
	p := &Picker{w: w, pos: pos, mode: probCutMode, ttMove: ttMove, ply: ply, threshold: threshold}
	p.stage = stageTTMove
	return p
}

// Next returns the next candidate move, or NoMove when exhausted. Returned
// moves are pseudo-legal; the caller filters with Position.Legal.
func (p *Picker) Next() board.Move {
	pos := p.pos
	for {
		switch p.stage {
		case stageTTMove:
			p.stage = p.afterTTStage()
			if p.ttMove != board.NoMove && pos.PseudoLegal(p.ttMove) && p.ttAdmissible() {
				return p.ttMove
			}

		case stageCaptureInit, stageQCaptureInit, stageProbCutInit:
			p.initCaptures()

		case stageGoodCapture:
			for p.idx < len(p.list) {
				m := p.pickBest()
				if !pos.SEE(m, 0) {
					p.bad = append(p.bad, m)
					continue
				}
				return m
			}
			p.stage = stageKiller
			p.idx = 0

		case stageKiller:
			for p.idx < 2 {
				m := p.killers[p.idx]
				p.idx++
				if m != board.NoMove && m != p.ttMove && !isCapture(pos, m) && pos.PseudoLegal(m) {
					return m
				}
			}
			p.stage = stageCounter

		case stageCounter:
			p.stage = stageQuietInit
			m := p.counter
			if m != board.NoMove && m != p.ttMove && m != p.killers[0] && m != p.killers[1] &&
				!isCapture(pos, m) && pos.PseudoLegal(m) {
				return m
			}

		case stageQuietInit:
			p.initQuiets()
			p.stage = stageQuiet

		case stageQuiet:
			if p.idx < len(p.list) {
				return p.pickBest()
			}
			p.stage = stageBadCapture

		case stageBadCapture:
			if p.badI < len(p.bad) {
				m := p.bad[p.badI]
				p.badI++
				return m
			}
			p.stage = stageDone

		case stageEvasionInit:
			p.initEvasions()
			p.stage = stageEvasion

		case stageQCapture:
			if p.idx < len(p.list) {
				return p.pickBest()
			}
			// On the first quiescence ply, quiet checking moves are still
			// tactical enough to matter.
			if p.depth >= 0 && p.recapture == board.NoSquare {
				p.stage = stageQCheckInit
			} else {
				p.stage = stageDone
			}

		case stageQCheckInit:
			pseudo := p.pos.Generate(board.GenQuietChecks, nil)
			p.list = p.list[:0]
			for _, m := range pseudo {
				if m == p.ttMove {
					continue
				}
				p.list = append(p.list, scoredMove{m, p.w.quietScore(p.pos, m, p.ply)})
			}
			p.idx = 0
			p.stage = stageQCheck

		case stageEvasion, stageQCheck:
			if p.idx < len(p.list) {
				return p.pickBest()
			}
			p.stage = stageDone

		case stageProbCut:
			for p.idx < len(p.list) {
				m := p.pickBest()
				if pos.SEE(m, p.threshold) {
					return m
				}
			}
			p.stage = stageDone

		case stageDone:
			return board.NoMove
		}
	}
}

// ttAdmissible vets the TT move against the picker mode: quiescence outside
// check only considers tactical TT moves, and ProbCut only SEE-passing
// captures.
func (p *Picker) ttAdmissible() bool {
	switch p.mode {
	case qsearchMode:
		if p.pos.InCheck() {
			return true
		}
		if !isTactical(p.pos, p.ttMove) {
			return false
		}
		return p.recapture == board.NoSquare || p.ttMove.To() == p.recapture
	case probCutMode:
		return isCapture(p.pos, p.ttMove) && p.pos.SEE(p.ttMove, p.threshold)
	default:
		return true
	}
}

func (p *Picker) afterTTStage() pickerStage {
	if p.pos.InCheck() && p.mode != probCutMode {
		return stageEvasionInit
	}
	switch p.mode {
	case qsearchMode:
		return stageQCaptureInit
	case probCutMode:
		return stageProbCutInit
	default:
		return stageCaptureInit
	}
}

func (p *Picker) initCaptures() {
	pseudo := p.pos.Generate(board.GenCaptures, nil)
	p.list = p.list[:0]
	for _, m := range pseudo {
		if m == p.ttMove {
			continue
		}
		if p.mode == qsearchMode && p.recapture != board.NoSquare && m.To() != p.recapture {
			continue
		}
		p.list = append(p.list, scoredMove{m, captureScore(p.pos, m)})
	}
	p.idx = 0
	switch p.stage {
	case stageCaptureInit:
		p.stage = stageGoodCapture
	case stageQCaptureInit:
		p.stage = stageQCapture
	default:
		p.stage = stageProbCut
	}
}

func (p *Picker) initQuiets() {
	pseudo := p.pos.Generate(board.GenQuiets, nil)
	p.list = p.list[:0]
	for _, m := range pseudo {
		if m == p.ttMove || m == p.killers[0] || m == p.killers[1] || m == p.counter {
			continue
		}
		p.list = append(p.list, scoredMove{m, p.w.quietScore(p.pos, m, p.ply)})
	}
	p.idx = 0
}

func (p *Picker) initEvasions() {
	pseudo := p.pos.Generate(board.GenEvasions, nil)
	p.list = p.list[:0]
	for _, m := range pseudo {
		if m == p.ttMove {
			continue
		}
		var s int32
		if isCapture(p.pos, m) {
			// Captures of the checker first, ordered most-valuable-victim.
			s = 1<<28 + captureScore(p.pos, m)
		} else {
			s = p.w.quietScore(p.pos, m, p.ply)
		}
		p.list = append(p.list, scoredMove{m, s})
	}
	p.idx = 0
}

// pickBest swaps the best remaining entry to position idx and consumes it.
func (p *Picker) pickBest() board.Move {
	best := p.idx
	for i := p.idx + 1; i < len(p.list); i++ {
		if p.list[i].score > p.list[best].score {
			best = i
		}
	}
	p.list[p.idx], p.list[best] = p.list[best], p.list[p.idx]
	m := p.list[p.idx].move
	p.idx++
	return m
}

func isCapture(pos *board.Position, m board.Move) bool {
	return pos.PieceOn(m.To()) != board.NoPiece || m.Type() == board.EnPassant
}

func isTactical(pos *board.Position, m board.Move) bool {
	return isCapture(pos, m) || m.Type() == board.Promote
}

// captureScore orders captures by most-valuable-victim, least-valuable-
// attacker, nudged toward advanced destination squares; queen promotions
// outrank plain captures of equal victims.
func captureScore(pos *board.Position, m board.Move) int32 {
	_, attacker, _ := pos.PieceOn(m.From()).Split()
	victim := board.Pawn
	if m.Type() != board.EnPassant {
		if cap := pos.PieceOn(m.To()); cap != board.NoPiece {
			_, victim, _ = cap.Split()
		} else {
			victim = board.NoPieceType
		}
	}
	s := int32(board.NominalValue[victim].MG)*16 - int32(board.NominalValue[attacker].MG)
	s += int32(m.To().RelativeRank(pos.Turn()))
	if m.Type() == board.Promote {
		s += int32(board.NominalValue[m.PromotionType()].MG) * 8
	}
	return s
}

// quietScore combines the butterfly history with the one- and two-ply
// continuation histories, the ordering signal for quiet moves.
func (w *Worker) quietScore(pos *board.Position, m board.Move, ply int) int32 {
	pc := pos.PieceOn(m.From())
	to := m.To()
	s := int32(w.history[pos.Turn()][m.From()][to])
	for _, back := range [2]int{1, 2} {
		if ply >= back {
			if prev := &w.stack[ply-back]; prev.ContHist != nil {
				s += int32(prev.ContHist[pc][to])
			}
		}
	}
	return s
}
