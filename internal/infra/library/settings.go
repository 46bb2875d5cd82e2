package library

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// ChannelSettings are the backend-facing knobs a catalog author may attach
// to a channel. Unknown keys are rejected so typos surface at load time.
type ChannelSettings struct {
	GainDB float64 `mapstructure:"gain_db"` // Static gain trim in decibels
	Pan    float64 `mapstructure:"pan"`     // -1 (left) .. 1 (right)
}

// DecodeChannelSettings decodes a free-form settings map.
func DecodeChannelSettings(m map[string]any) (ChannelSettings, error) {
	var s ChannelSettings
	if len(m) == 0 {
		return s, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &s,
		ErrorUnused: true,
	})
	if err != nil {
		return s, errors.Wrap(err, "failed to build settings decoder")
	}
	if err := dec.Decode(m); err != nil {
		return s, errors.Wrap(err, "invalid channel settings")
	}
	if s.Pan < -1 || s.Pan > 1 {
		return s, errors.Newf("pan %.3f outside [-1,1]", s.Pan)
	}
	return s, nil
}

// Gain converts the decibel trim into a linear multiplier.
func (s ChannelSettings) Gain() float64 {
	return math.Pow(10, s.GainDB/20)
}
