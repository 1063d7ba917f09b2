package motion

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// MovingSigmaFactor is the ratio σm/σs between the noise deviation of moving
// and static pixels. The model fixes it; it is not configurable.
const MovingSigmaFactor = 5.0

// Parameters holds the scalar model parameters of a ThresholdEngine.
type Parameters struct {
	// Theta is the prior probability ratio factor of the hypothesis test.
	Theta float64 `json:"theta" yaml:"theta"`
	// SigmaS is the standard deviation of intensity noise on static pixels.
	SigmaS float64 `json:"sigma_s" yaml:"sigma_s"`
	// T is the temperature of the MRF energy term. Larger values weaken the
	// influence of the neighbourhood; +Inf removes it entirely.
	T float64 `json:"temperature" yaml:"temperature"`
}

// DefaultParameters returns θ=1, σs=1.22, T=2.
func DefaultParameters() Parameters {
	return Parameters{
		Theta:  1,
		SigmaS: 1.22,
		T:      2,
	}
}

// SigmaM returns the standard deviation of moving pixels, σm = 5·σs.
func (p Parameters) SigmaM() float64 {
	return MovingSigmaFactor * p.SigmaS
}

// Validate checks that every threshold the parameters produce is finite.
func (p Parameters) Validate() error {
	switch {
	case math.IsNaN(p.Theta) || p.Theta <= 0 || math.IsInf(p.Theta, 0):
		return errors.Wrapf(ErrInvalidParameters, "theta must be positive and finite, got %v", p.Theta)
	case math.IsNaN(p.SigmaS) || p.SigmaS <= 0 || math.IsInf(p.SigmaS, 0):
		return errors.Wrapf(ErrInvalidParameters, "sigma_s must be positive and finite, got %v", p.SigmaS)
	case math.IsNaN(p.T) || p.T <= 0:
		return errors.Wrapf(ErrInvalidParameters, "temperature must be positive, got %v", p.T)
	}
	return nil
}

// FixedThreshold returns 2·σs²·ln(θ·σm/σs), the decision threshold on the
// squared difference when the neighbourhood term is ignored (T → ∞).
func (p Parameters) FixedThreshold() float64 {
	return 2 * p.SigmaS * p.SigmaS * math.Log(p.Theta*p.SigmaM()/p.SigmaS)
}

// LocalThreshold returns 2·σs²·(ln(θ·σm/σs) + (Qs−Qm)/T). More moving
// neighbours lower the threshold, more static neighbours raise it.
func (p Parameters) LocalThreshold(n NeighbourCount) float64 {
	bias := float64(n.Qs-n.Qm) / p.T
	return 2 * p.SigmaS * p.SigmaS * (math.Log(p.Theta*p.SigmaM()/p.SigmaS) + bias)
}

// infTemperature is the JSON spelling of T = +Inf, which encoding/json
// cannot represent as a number.
const infTemperature = "inf"

type parametersJSON struct {
	Theta  float64         `json:"theta"`
	SigmaS float64         `json:"sigma_s"`
	T      json.RawMessage `json:"temperature,omitempty"`
}

// MarshalJSON writes T = +Inf as the string "inf".
func (p Parameters) MarshalJSON() ([]byte, error) {
	var t []byte
	var err error
	if math.IsInf(p.T, 1) {
		t, err = json.Marshal(infTemperature)
	} else {
		t, err = json.Marshal(p.T)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidParameters, "temperature %v", p.T)
	}
	return json.Marshal(parametersJSON{Theta: p.Theta, SigmaS: p.SigmaS, T: t})
}

// UnmarshalJSON accepts a number or "inf" for the temperature. Keys that are
// absent or null keep their current value.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	aux := parametersJSON{Theta: p.Theta, SigmaS: p.SigmaS}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Theta, p.SigmaS = aux.Theta, aux.SigmaS

	raw := bytes.TrimSpace(aux.T)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		switch strings.ToLower(s) {
		case infTemperature, "+inf":
			p.T = math.Inf(1)
			return nil
		}
		return errors.Wrapf(ErrInvalidParameters, "temperature %q", s)
	}
	return json.Unmarshal(raw, &p.T)
}
