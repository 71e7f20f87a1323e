// Package ansatz defines candidate analytic mappings from a small
// parameter set (theta_star plus nuisances) to predicted PMNS / CKM
// observables, and a name registry over the available variants.
package ansatz

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

// Tau is the full circle constant; theta_star-type parameters live in [0, Tau).
const Tau = 2 * math.Pi

// ErrUnknown marks lookups of ansatz names that were never registered.
var ErrUnknown = errors.New("ansatz: unknown name")

// ErrDuplicate marks a second registration under an existing name.
var ErrDuplicate = errors.New("ansatz: duplicate name")

// ErrParamDomain marks a supplied parameter value outside its declared bounds.
var ErrParamDomain = errors.New("ansatz: parameter out of bounds")

// #region interface
// Bounds is a half-open sampling interval [Lo, Hi) for one parameter.
type Bounds struct {
	Lo float64
	Hi float64
}

// Params maps parameter names to values.
type Params map[string]float64

// Ansatz is one named mapping from parameters to predicted observables.
// Implementations are pure: identical inputs give identical outputs.
type Ansatz interface {
	// Name returns the registry key for this variant.
	Name() string
	// ParamNames returns the stable parameter order used for sampling
	// and for p_<name> result columns.
	ParamNames() []string
	// ParamBounds returns finite sampling bounds for every parameter.
	ParamBounds(ordering targets.Ordering) (map[string]Bounds, error)
	// PredictPMNS maps parameters to the six PMNS observables.
	PredictPMNS(params Params, ordering targets.Ordering) (map[string]float64, error)
	// PredictCKM maps parameters to the four Wolfenstein observables.
	PredictCKM(params Params) (map[string]float64, error)
}

// #endregion interface

// #region registry
// Registry maps ansatz names to implementations. Registration is
// append-only at startup; lookup of an unregistered name fails fast.
type Registry struct {
	byName map[string]Ansatz
}

// NewRegistry builds a registry with all built-in variants, anchored on
// the given target registry.
func NewRegistry(tr *targets.Registry) (*Registry, error) {
	r := &Registry{byName: make(map[string]Ansatz)}
	builtins := []Ansatz{
		newExampleMinimal(tr),
		newThetaStarDeltaOnly(tr),
		newThetaStarV1(tr),
		newThetaStarV2(tr),
	}
	for _, a := range builtins {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds one variant. A second registration under the same name
// is a configuration defect.
func (r *Registry) Register(a Ansatz) error {
	name := a.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.byName[name] = a
	return nil
}

// Available returns the sorted registered names.
func (r *Registry) Available() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get looks up a variant by name.
func (r *Registry) Get(name string) (Ansatz, error) {
	a, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknown, name, strings.Join(r.Available(), ", "))
	}
	return a, nil
}

// #endregion registry

// #region helpers
func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// around gives a +-scale*sigma sampling window about a target's central value.
func around(t targets.Target, scale float64) Bounds {
	return Bounds{Lo: t.Value - scale*t.Sigma, Hi: t.Value + scale*t.Sigma}
}

func clampBounds(b Bounds, lo, hi float64) Bounds {
	if b.Lo < lo {
		b.Lo = lo
	}
	if b.Hi > hi {
		b.Hi = hi
	}
	return b
}

// checkParams rejects any supplied value outside its declared bounds.
// The sweep engine never produces such values; this is the defensive
// check at the prediction boundary. The upper edge is inclusive so a
// value exactly at Hi from a caller-built vector is still accepted.
func checkParams(params Params, bounds map[string]Bounds) error {
	for name, b := range bounds {
		v, ok := params[name]
		if !ok {
			continue // absent parameters fall back to target centrals
		}
		if math.IsNaN(v) || v < b.Lo || v > b.Hi {
			return fmt.Errorf("%w: %s=%v outside [%v, %v]", ErrParamDomain, name, v, b.Lo, b.Hi)
		}
	}
	return nil
}

// ckmBounds gives +-5 sigma windows for the direct CKM parameters.
func ckmBounds(ckm targets.TargetSet) map[string]Bounds {
	bounds := make(map[string]Bounds, len(targets.CKMKeys))
	for _, key := range targets.CKMKeys {
		bounds[key] = around(ckm[key], 5.0)
	}
	return bounds
}

// directCKM treats CKM observables as direct parameters, falling back to
// the target central values when a parameter is omitted.
func directCKM(params Params, ckm targets.TargetSet) map[string]float64 {
	out := make(map[string]float64, len(targets.CKMKeys))
	for _, key := range targets.CKMKeys {
		if v, ok := params[key]; ok {
			out[key] = v
		} else {
			out[key] = ckm[key].Value
		}
	}
	return out
}

// #endregion helpers
