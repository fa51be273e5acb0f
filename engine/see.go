package engine

import (
	mg "heron/heronmg"
)

// seePieceValue uses blunter values than the evaluation: SEE only needs
// relative trade ordering.
var seePieceValue = [7]int32{0, 100, 300, 300, 500, 900, 5000}

// see runs a static exchange evaluation of a capture: the material balance
// after both sides swap off attackers of the target square in least-valuable-
// first order, with sliders x-raying through the pieces that leave.
func see(pos *mg.Position, m mg.Move) int32 {
	from := m.From()
	to := m.To()

	var gain [32]int32
	depth := 0

	target := pos.PieceAt(to).Type()
	if m.Flag() == mg.FlagEnPassant {
		target = mg.PieceTypePawn
	}
	attacker := pos.PieceAt(from).Type()
	gain[0] = seePieceValue[target]

	occ := pos.AllOccupancy() &^ mg.SquareBB(from)
	attadef := attackersToWithXray(pos, to, occ)
	side := pos.SideToMove().Other()

	for {
		depth++
		gain[depth] = seePieceValue[attacker] - gain[depth-1]
		if Max(-gain[depth-1], gain[depth]) < 0 {
			break
		}

		attackerBB, nextAttacker := leastValuableAttacker(pos, attadef&occ, side)
		if attackerBB == 0 {
			break
		}
		occ &^= attackerBB
		// Sliders may be standing behind the piece that just captured.
		attadef |= attackersToWithXray(pos, to, occ) &^ (pos.AllOccupancy() &^ occ)
		attacker = nextAttacker
		side = side.Other()
	}

	for depth--; depth > 0; depth-- {
		gain[depth-1] = -Max(-gain[depth-1], gain[depth])
	}
	return gain[0]
}

// attackersToWithXray collects both sides' attackers of sq under occ,
// restricted to pieces still present in occ.
func attackersToWithXray(pos *mg.Position, sq mg.Square, occ uint64) uint64 {
	return pos.AttackersTo(sq, occ) & occ
}

// leastValuableAttacker picks the cheapest attacker of the given side from
// the attack set.
func leastValuableAttacker(pos *mg.Position, attadef uint64, side mg.Color) (uint64, mg.PieceType) {
	for pt := mg.PieceTypePawn; pt <= mg.PieceTypeKing; pt++ {
		subset := attadef & pos.PieceBB(side, pt)
		if subset != 0 {
			return subset & -subset, pt
		}
	}
	return 0, mg.PieceTypeNone
}
