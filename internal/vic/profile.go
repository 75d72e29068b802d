package vic

// Profile is the virtual image: the target gray level as a pure function
// of the signed normal offset. Implementations must be deterministic and
// stateless; any monotone or smooth profile works without changes to the
// rest of the engine.
type Profile interface {
	At(gamma float64) float64
}

// StepProfile is the default virtual image: background intensity on the
// negative-offset side of the curve, foreground on the non-negative side.
type StepProfile struct {
	Background float64
	Foreground float64
}

// At returns the target gray level at the given normal offset.
func (p StepProfile) At(gamma float64) float64 {
	if gamma < 0 {
		return p.Background
	}
	return p.Foreground
}

// RampProfile is a smooth alternative: a linear transition of the given
// width centered on the curve, background outside on the negative side,
// foreground on the positive side.
type RampProfile struct {
	Background float64
	Foreground float64
	Width      float64
}

// At returns the target gray level at the given normal offset.
func (p RampProfile) At(gamma float64) float64 {
	half := p.Width / 2
	switch {
	case gamma <= -half:
		return p.Background
	case gamma >= half:
		return p.Foreground
	default:
		t := (gamma + half) / p.Width
		return p.Background + t*(p.Foreground-p.Background)
	}
}
