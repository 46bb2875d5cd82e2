package fade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGains_Endpoints(t *testing.T) {
	out, in := Gains(0, 1.0)
	assert.InDelta(t, 1.0, out, 1e-9)
	assert.InDelta(t, 0.0, in, 1e-9)

	out, in = Gains(1, 1.0)
	assert.InDelta(t, 0.0, out, 1e-9)
	assert.InDelta(t, 1.0, in, 1e-9)

	// Interrupted fade: reduced starting gain scales the outgoing side only.
	out, in = Gains(0, 0.6)
	assert.InDelta(t, 0.6, out, 1e-9)
	assert.InDelta(t, 0.0, in, 1e-9)
}

func TestGains_EqualPowerInvariant(t *testing.T) {
	for i := 0; i <= 100; i++ {
		progress := float64(i) / 100
		out, in := Gains(progress, 1.0)

		power := out*out + in*in
		assert.InDelta(t, 1.0, power, 1e-5,
			"equal-power invariant violated at t=%.2f", progress)
	}
}

func TestGains_ClampsProgress(t *testing.T) {
	out, in := Gains(-0.5, 1.0)
	assert.InDelta(t, 1.0, out, 1e-9)
	assert.InDelta(t, 0.0, in, 1e-9)

	out, in = Gains(1.5, 1.0)
	assert.InDelta(t, 0.0, out, 1e-9)
	assert.InDelta(t, 1.0, in, 1e-9)
}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, 0.0, Smoothstep(-1))
	assert.Equal(t, 0.0, Smoothstep(0))
	assert.Equal(t, 1.0, Smoothstep(1))
	assert.Equal(t, 1.0, Smoothstep(2))
	assert.InDelta(t, 0.5, Smoothstep(0.5), 1e-9)

	// Monotonic over [0,1].
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := Smoothstep(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestDurationPolicy_Duration(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name      string
		sameTrack bool
		srcQ      float64
		dstQ      float64
		want      float64
	}{
		{name: "intra-track uses loop duration", sameTrack: true, srcQ: 0.9, dstQ: 0.9, want: 0.3},
		{name: "avg 0.9 hits tightest tier", srcQ: 0.9, dstQ: 0.9, want: 0.05},
		{name: "avg 0.7 hits second tier", srcQ: 0.8, dstQ: 0.6, want: 0.10},
		{name: "avg 0.5 hits third tier", srcQ: 0.5, dstQ: 0.5, want: 0.15},
		{name: "avg 0.2 hits bottom tier", srcQ: 0.3, dstQ: 0.1, want: 0.25},
		{name: "tier boundary 0.8 inclusive", srcQ: 0.8, dstQ: 0.8, want: 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Duration(tt.sameTrack, tt.srcQ, tt.dstQ)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDurationPolicy_NonAdaptive(t *testing.T) {
	policy := DefaultPolicy()
	policy.QualityAdaptive = false

	assert.InDelta(t, 2.0, policy.Duration(false, 0.9, 0.9), 1e-9)
	assert.InDelta(t, 0.3, policy.Duration(true, 0.9, 0.9), 1e-9)
}
