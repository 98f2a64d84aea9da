package world

import (
	"time"

	"github.com/chewxy/math32"
)

// Outcome describes what Reconcile did with an input sample.
type Outcome struct {
	Accepted    bool
	Significant bool
	From        Vector3 // position before the sample
}

// Reconcile applies in to p if it supersedes the last accepted sample.
// Stale or duplicate samples leave p untouched and report Accepted=false;
// callers must not write the record back in that case.
func Reconcile(p *Player, in InputState, dt float32, t Tuning, now time.Time) Outcome {
	if !in.Supersedes(p.LastInputSeq) {
		return Outcome{}
	}

	oldPos, oldRot := p.Position, p.Rotation
	p.Position, p.Rotation = Integrate(p.Position, p.Rotation, in, dt, t)

	p.IsMoving = in.Moving()
	p.IsRunning = p.IsMoving && in.Shift
	p.LastInputSeq = in.Sequence
	p.Input = in
	p.LastUpdate = now

	return Outcome{
		Accepted: true,
		Significant: SignificantMove(oldPos, p.Position, SignificantDistance) ||
			SignificantTurn(oldRot, p.Rotation, SignificantRotation),
		From: oldPos,
	}
}

// SignificantMove reports whether two positions are more than threshold apart.
func SignificantMove(from, to Vector3, threshold float32) bool {
	return Distance(from, to) > threshold
}

// SignificantTurn reports whether any rotation axis changed by more than
// threshold radians.
func SignificantTurn(from, to Vector3, threshold float32) bool {
	return math32.Abs(from.X-to.X) > threshold ||
		math32.Abs(from.Y-to.Y) > threshold ||
		math32.Abs(from.Z-to.Z) > threshold
}
