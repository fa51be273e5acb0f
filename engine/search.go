package engine

import (
	mg "heron/heronmg"
)

// Aspiration window geometry: W(d) = base + d*perDepth, helpers jittered so
// they explore alternate orderings.
const (
	aspirationBase     int32 = 30
	aspirationPerDepth int32 = 3
	aspirationJitter   int32 = 4
)

// stopped is the cooperative cancellation check consulted on node-check
// boundaries throughout the tree.
func (t *Thread) stopped() bool { return t.eng.stop.Load() }

// checkUp is called by whichever thread brings the shared node counter to a
// multiple of checkupMask+1; only the main thread acts on it, and it is the
// only place the clock and the node budget can end a search mid-tree.
func (t *Thread) checkUp() {
	e := t.eng
	if t.id != 0 {
		return
	}
	if e.timeman.HardExceeded() {
		e.stop.Store(true)
	}
	if e.limits.Nodes > 0 && e.nodes.Load() >= e.limits.Nodes {
		e.stop.Store(true)
	}
}

// iterativeDeepening is each thread's main loop: depth by depth, one
// aspiration search per MultiPV line.
func (t *Thread) iterativeDeepening() {
	e := t.eng
	maxDepth := MaxPly - 1
	if e.limits.Depth > 0 {
		maxDepth = Min(e.limits.Depth, maxDepth)
	}
	multiPV := Clamp(e.Opts.MultiPV, 1, len(t.rootMoves))

	for depth := 1; depth <= maxDepth; depth++ {
		for i := range t.rootMoves {
			t.rootMoves[i].PrevScore = t.rootMoves[i].Score
		}

		for pvIdx := 0; pvIdx < multiPV && !t.stopped(); pvIdx++ {
			t.pvIdx = pvIdx
			t.aspirationSearch(depth)
			t.sortRootMoves(pvIdx)
		}
		if t.stopped() {
			break
		}
		t.completedDepth = depth

		if t.id != 0 {
			continue
		}
		t.report(depth)
		e.timeman.UpdateStability(t.rootMoves[0].Move)

		if e.limits.Nodes > 0 && e.nodes.Load() >= e.limits.Nodes {
			break
		}
		if e.timeman.SoftExceeded() {
			break
		}
		// A mate nearer than the horizon cannot be improved upon.
		if best := abs32(t.rootMoves[0].Score); best >= MateInMax && int(MateScore-best) < depth {
			break
		}
	}

	if t.id == 0 {
		e.stop.Store(true)
	}
}

// aspirationSearch runs one depth iteration for the current MultiPV line,
// starting from a window around the previous score and re-searching at full
// width after a fail.
func (t *Thread) aspirationSearch(depth int) {
	alpha, beta := -Infinity, Infinity
	prev := t.rootMoves[t.pvIdx].PrevScore

	if depth >= 2 && prev > -Infinity {
		window := aspirationBase + int32(depth)*aspirationPerDepth + int32(t.id&3)*aspirationJitter
		alpha = Max(prev-window, -Infinity)
		beta = Min(prev+window, Infinity)
	}

	for {
		score := t.rootSearch(alpha, beta, depth)
		if t.stopped() {
			return
		}
		if score <= alpha || score >= beta {
			// Fail high or low: sort so the offender leads, then redo the
			// whole iteration at full width.
			t.sortRootMoves(t.pvIdx)
			alpha, beta = -Infinity, Infinity
			continue
		}
		return
	}
}

// rootSearch is the ply-0 node. It iterates the pre-ordered root move list
// from the current MultiPV index, so already-chosen lines are excluded.
func (t *Thread) rootSearch(alpha, beta int32, depth int) int32 {
	pos := t.pos
	best := -Infinity
	var childPV PVLine
	moveCount := 0

	for i := t.pvIdx; i < len(t.rootMoves); i++ {
		rm := &t.rootMoves[i]
		m := rm.Move
		moveCount++
		t.stack[0].currentMove = m

		pos.MakeMove(m)
		childPV.Clear()

		var score int32
		if moveCount == 1 {
			score = -t.alphabeta(-beta, -alpha, depth-1, 1, &childPV, m, false, false)
		} else {
			score = -t.alphabeta(-(alpha + 1), -alpha, depth-1, 1, &childPV, m, false, true)
			if score > alpha && score < beta {
				score = -t.alphabeta(-beta, -alpha, depth-1, 1, &childPV, m, false, false)
			}
		}
		pos.UnmakeMove(m)

		if t.stopped() {
			return 0
		}

		if moveCount == 1 || score > alpha {
			rm.Score = score
			rm.PV.Update(m, childPV)
		} else {
			rm.Score = -Infinity
		}

		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				break
			}
		}
	}
	return best
}

// alphabeta is the principal search routine for every non-root node.
func (t *Thread) alphabeta(alpha, beta int32, depth, ply int, pvLine *PVLine, prevMove mg.Move, didNull, cutNode bool) int32 {
	e := t.eng
	pos := t.pos

	if nodes := e.nodes.Add(1); nodes&checkupMask == 0 {
		t.checkUp()
	}
	if t.stopped() {
		return 0
	}
	if ply >= MaxPly {
		return t.eval.Evaluate(pos)
	}

	isPVNode := beta-alpha > 1

	if pos.IsDraw(ply) {
		return DrawScore
	}

	inCheck := pos.InCheck()
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return t.quiescence(alpha, beta, ply, pvLine)
	}

	var childPV PVLine
	posHash := pos.Hash()

	// Transposition table: sufficient depth and a compatible bound cut the
	// node outright outside the PV.
	entry, ttHit := e.TT.Probe(posHash)
	var ttMove mg.Move
	var ttScore int32
	var ttBound, ttDepth int
	if ttHit {
		ttMove = entry.Move()
		ttScore = scoreFromTT(entry.Score(), ply)
		ttBound = entry.Bound()
		ttDepth = entry.Depth()
		if !isPVNode && ttDepth >= depth {
			switch ttBound {
			case BoundExact:
				return ttScore
			case BoundBeta:
				if ttScore >= beta {
					return ttScore
				}
			case BoundAlpha:
				if ttScore <= alpha {
					return ttScore
				}
			}
		}
	}

	// Static evaluation. In check it is treated as absent and every
	// eval-based pruning below is skipped.
	frame := &t.stack[ply]
	frame.staticValid = false
	var staticEval int32
	improving := false
	if !inCheck {
		if ttHit && entry.Eval() != NoScore {
			staticEval = int32(entry.Eval())
		} else if cached, ok := pos.StaticEval(); ok {
			staticEval = cached
		} else {
			staticEval = t.eval.Evaluate(pos)
			pos.SetStaticEval(staticEval)
		}
		frame.staticEval = staticEval
		frame.staticValid = true
		if ply >= 2 && t.stack[ply-2].staticValid {
			improving = staticEval > t.stack[ply-2].staticEval
		}
	}

	// Reverse futility pruning: far enough above beta that even a generous
	// margin cannot bring us back down.
	if !isPVNode && !inCheck && depth <= rfpMaxDepth && abs32(beta) < MateInMax {
		margin := rfpMargins[depth]
		if improving {
			margin += 50
		}
		if staticEval-margin >= beta {
			return beta
		}
	}

	// Razoring: hopeless nodes drop straight into quiescence.
	if !isPVNode && !inCheck && depth <= razorMaxDepth &&
		staticEval+razorMargin*int32(depth) <= alpha {
		score := t.quiescence(alpha, beta, ply, &childPV)
		if score <= alpha {
			return score
		}
	}

	// Null move pruning: hand over the move and search reduced. Never in
	// check, never without non-pawn material (zugzwang), never twice in a
	// row.
	if !isPVNode && !inCheck && !didNull && depth >= nullMoveMinDepth &&
		pos.NonPawnMaterial(pos.SideToMove()) > 0 && staticEval >= beta {
		r := 3 + depth/4
		if r > depth-1 {
			r = depth - 1
		}
		pos.MakeNullMove()
		score := -t.alphabeta(-beta, -beta+1, depth-1-r, ply+1, &childPV, mg.NoMove, true, !cutNode)
		pos.UnmakeNullMove()
		if t.stopped() {
			return 0
		}
		if score >= beta {
			if score >= MateInMax {
				score = beta
			}
			return score
		}
	}

	// Internal iterative deepening, reduction flavor: with no TT move to
	// lead the ordering, a shallower search serves just as well.
	if isPVNode && ttMove == mg.NoMove && depth >= iidMinDepth {
		depth -= 2
	}

	var buf [mg.MaxMoves]mg.Move
	var pseudo []mg.Move
	if inCheck {
		pseudo = pos.GenerateMoves(mg.GenEvasions, buf[:0])
	} else {
		pseudo = pos.GenerateMoves(mg.GenNonEvasions, buf[:0])
	}

	var scoreBuf [mg.MaxMoves]scoredMove
	list := t.scoreMoves(pos, pseudo, ply, ttMove, prevMove, scoreBuf[:])

	us := pos.SideToMove()
	best := -Infinity
	var bestMove mg.Move
	ttFlag := BoundAlpha
	moveCount := 0
	quietCount := 0

	var quietsTried [64]mg.Move
	var capturesTried [32]mg.Move
	numQuietsTried, numCapturesTried := 0, 0

	for idx := 0; idx < len(list.moves); idx++ {
		orderNextMove(idx, &list)
		m := list.moves[idx].move

		if !pos.Legal(m) {
			continue
		}

		capture := isCapture(pos, m)
		givesCheck := pos.GivesCheck(m)
		promotion := m.Flag() == mg.FlagPromotion
		quiet := !capture && !promotion

		// Late move pruning: beyond the quiet budget for this depth, the
		// remaining quiets are not worth a search.
		if quiet && !isPVNode && !inCheck && !givesCheck && depth <= lmpMaxDepth && best > -MateInMax {
			limit := lmpTable[boolToInt(improving)][Min(depth, len(lmpTable[0])-1)]
			if quietCount >= limit {
				continue
			}
		}

		// Futility pruning: quiet moves cannot repair a static eval this
		// far below alpha.
		if quiet && !isPVNode && !inCheck && !givesCheck && depth <= futilityMaxDepth &&
			abs32(alpha) < MateInMax && frame.staticValid &&
			staticEval+futilityMargins[depth] <= alpha {
			continue
		}

		moveCount++
		if quiet {
			quietCount++
			if numQuietsTried < len(quietsTried) {
				quietsTried[numQuietsTried] = m
				numQuietsTried++
			}
		} else if capture && numCapturesTried < len(capturesTried) {
			capturesTried[numCapturesTried] = m
			numCapturesTried++
		}

		frame.currentMove = m
		pos.MakeMove(m)
		childPV.Clear()

		var score int32
		if moveCount == 1 {
			score = -t.alphabeta(-beta, -alpha, depth-1, ply+1, &childPV, m, false, false)
		} else {
			// Late move reductions: a log-scaled base by depth and move
			// number, adjusted by node character.
			r := 0
			if depth >= 3 && quiet {
				r = lmrTable[Min(depth, MaxPly)][Min(moveCount, 63)]
				if isPVNode {
					r--
				}
				if m == ttMove {
					r--
				}
				if givesCheck && depth >= checkLMRBonusDepth {
					r--
				}
				if inCheck && pos.PieceAt(m.To()).Type() == mg.PieceTypeKing {
					r--
				}
				if !improving {
					r++
				}
				if t.killers.IsKiller(m, ply) {
					r--
				}
				r = Clamp(r, 0, depth-2)
			}

			newDepth := depth - 1
			score = -t.alphabeta(-(alpha + 1), -alpha, newDepth-r, ply+1, &childPV, m, false, true)
			if score > alpha && r > 0 {
				score = -t.alphabeta(-(alpha + 1), -alpha, newDepth, ply+1, &childPV, m, false, !cutNode)
			}
			if isPVNode && score > alpha && score < beta {
				score = -t.alphabeta(-beta, -alpha, newDepth, ply+1, &childPV, m, false, false)
			}
		}
		pos.UnmakeMove(m)

		if t.stopped() {
			return 0
		}

		if score > best {
			best = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			ttFlag = BoundExact
			if isPVNode {
				pvLine.Update(m, childPV)
			}
			if score >= beta {
				ttFlag = BoundBeta
				if quiet {
					t.killers.Insert(m, ply)
					t.counters.Store(us, prevMove, m)
				}
				break
			}
		}
	}

	if moveCount == 0 {
		if inCheck {
			return matedIn(ply)
		}
		return DrawScore
	}

	// History updates: reward the cutoff move, punish its tried siblings of
	// the same category.
	if best >= beta {
		bonus := historyBonus(depth)
		if isCapture(pos, bestMove) {
			t.captureHistory.Update(us, pos.PieceAt(bestMove.From()).Type(), bestMove.To(), capturedType(pos, bestMove), bonus)
			for i := 0; i < numCapturesTried; i++ {
				if m := capturesTried[i]; m != bestMove {
					t.captureHistory.Update(us, pos.PieceAt(m.From()).Type(), m.To(), capturedType(pos, m), -bonus)
				}
			}
		} else if bestMove.Flag() != mg.FlagPromotion {
			t.history.Update(us, bestMove, bonus)
			for i := 0; i < numQuietsTried; i++ {
				if quietsTried[i] != bestMove {
					t.history.Update(us, quietsTried[i], -bonus)
				}
			}
		}
	}

	if !t.stopped() {
		var evalForTT int16 = NoScore
		if frame.staticValid {
			evalForTT = int16(frame.staticEval)
		}
		e.TT.Save(entry, posHash, bestMove, scoreToTT(best, ply), evalForTT, depth, ttFlag, isPVNode)
	}
	return best
}

// quiescence resolves captures (and check evasions) until the position is
// quiet enough for the static eval to stand.
func (t *Thread) quiescence(alpha, beta int32, ply int, pvLine *PVLine) int32 {
	e := t.eng
	pos := t.pos

	if nodes := e.nodes.Add(1); nodes&checkupMask == 0 {
		t.checkUp()
	}
	if t.stopped() {
		return 0
	}
	if ply >= MaxPly {
		return t.eval.Evaluate(pos)
	}
	if pos.IsDraw(ply) {
		return DrawScore
	}

	inCheck := pos.InCheck()
	var childPV PVLine

	var best int32
	var standPat int32
	if inCheck {
		best = -Infinity
	} else {
		standPat = t.eval.Evaluate(pos)
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
		best = standPat
	}

	var buf [mg.MaxMoves]mg.Move
	var pseudo []mg.Move
	if inCheck {
		pseudo = pos.GenerateMoves(mg.GenEvasions, buf[:0])
	} else {
		pseudo = pos.GenerateMoves(mg.GenLoud, buf[:0])
	}

	var scoreBuf [mg.MaxMoves]scoredMove
	var list moveList
	if inCheck {
		list = t.scoreMoves(pos, pseudo, ply, mg.NoMove, mg.NoMove, scoreBuf[:])
	} else {
		list = t.scoreCaptures(pos, pseudo, mg.NoMove, scoreBuf[:])
	}

	moveCount := 0
	for idx := 0; idx < len(list.moves); idx++ {
		orderNextMove(idx, &list)
		m := list.moves[idx].move

		if !pos.Legal(m) {
			continue
		}

		if !inCheck {
			// A clearly losing exchange is not going to raise alpha.
			if see(pos, m) < -seePruneMarginQS {
				continue
			}
			// Delta pruning: even the full value of the victim plus a
			// margin leaves us under alpha.
			gain := mg.PieceValue[capturedType(pos, m)]
			if m.Flag() == mg.FlagPromotion {
				gain += mg.PieceValue[m.PromotionPieceType()] - mg.PieceValue[mg.PieceTypePawn]
			}
			if standPat+gain+deltaMargin < alpha {
				continue
			}
		}

		moveCount++
		pos.MakeMove(m)
		childPV.Clear()
		score := -t.quiescence(-beta, -alpha, ply+1, &childPV)
		pos.UnmakeMove(m)

		if t.stopped() {
			return 0
		}

		if score > best {
			best = score
		}
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
			pvLine.Update(m, childPV)
		}
	}

	if inCheck && moveCount == 0 {
		return matedIn(ply)
	}
	return best
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
