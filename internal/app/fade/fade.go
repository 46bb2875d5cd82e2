// Package fade provides equal-power crossfade gains and the crossfade
// duration policy.
package fade

import "math"

// Gains returns the (outgoing, incoming) channel gains for crossfade
// progress t in [0,1] and a starting outgoing gain g0 (1.0 unless a prior
// fade was interrupted). The curve is equal-power: out^2 + in^2 stays at
// g0^2, which avoids the loudness dip of a linear crossfade.
func Gains(t, g0 float64) (out, in float64) {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	out = math.Cos(t*math.Pi/2) * g0
	in = math.Sin(t * math.Pi / 2)
	return out, in
}

// Smoothstep eases t in [0,1] with 3t^2 - 2t^3, flattening the fade near
// both endpoints. Monotonic, so it can pre-shape the progress fed to Gains.
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// DurationPolicy selects the crossfade duration for a transition.
type DurationPolicy struct {
	Base            float64    // Default crossfade duration in seconds
	Loop            float64    // Short duration for intra-track loop changes
	QualityAdaptive bool       // Bucket by average source/target quality
	Tiers           [4]float64 // Durations for avg quality >=0.8, >=0.6, >=0.4, below
}

// DefaultPolicy returns the stock duration policy.
func DefaultPolicy() DurationPolicy {
	return DurationPolicy{
		Base:            2.0,
		Loop:            0.3,
		QualityAdaptive: true,
		Tiers:           [4]float64{0.05, 0.10, 0.15, 0.25},
	}
}

// Duration evaluates the policy once per transition. Intra-track loop
// changes always use the short loop duration; otherwise quality-adaptive
// mode tiers on the average of source and target quality, tightest fade for
// the highest quality.
func (p DurationPolicy) Duration(sameTrack bool, srcQuality, dstQuality float64) float64 {
	if sameTrack {
		return p.Loop
	}
	if !p.QualityAdaptive {
		return p.Base
	}

	avg := (srcQuality + dstQuality) / 2
	switch {
	case avg >= 0.8:
		return p.Tiers[0]
	case avg >= 0.6:
		return p.Tiers[1]
	case avg >= 0.4:
		return p.Tiers[2]
	default:
		return p.Tiers[3]
	}
}
