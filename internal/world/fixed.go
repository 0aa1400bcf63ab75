package world

// Fixed is a 16.16 fixed-point map unit, the coordinate representation used
// throughout the simulation core (positions, momenta, angles-as-BAM are
// kept separately). Grounded on the teacher's apu.fixed-point idiom
// (internal/apu/fixed_point.go's phase-accumulator arithmetic), generalized
// from audio phase to map distance.
type Fixed int32

const FixedFracBits = 16
const FixedUnit Fixed = 1 << FixedFracBits

func FixedFromInt(i int) Fixed { return Fixed(i) << FixedFracBits }

func (f Fixed) Int() int { return int(f >> FixedFracBits) }

func (f Fixed) Mul(g Fixed) Fixed {
	return Fixed((int64(f) * int64(g)) >> FixedFracBits)
}

func (f Fixed) Div(g Fixed) Fixed {
	if g == 0 {
		return 0
	}
	return Fixed((int64(f) << FixedFracBits) / int64(g))
}

func (f Fixed) Abs() Fixed {
	if f < 0 {
		return -f
	}
	return f
}

// Sentinels used by plane-flat stickiness (§4.5): when a bounce zeroes momz
// on a plane-flat object, z is pinned to one of these meaning "use the
// current plane height" rather than a literal coordinate.
const (
	MinZSentinel Fixed = Fixed(-1 << 31)
	MaxZSentinel Fixed = Fixed(1<<31 - 1)
)
