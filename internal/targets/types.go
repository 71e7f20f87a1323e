package targets

// #region ordering
// Ordering selects the neutrino mass ordering for PMNS targets.
type Ordering string

const (
	// OrderingNO is the normal mass ordering (dm3l > 0).
	OrderingNO Ordering = "NO"
	// OrderingIO is the inverted mass ordering (dm3l < 0).
	OrderingIO Ordering = "IO"
)

// #endregion ordering

// #region target
// Target is a single observable we fit against: a central value and a
// 1-sigma uncertainty used as the chi-square weight.
type Target struct {
	Value  float64
	Sigma  float64
	Name   string
	Units  string
	Source string
}

// TargetSet maps observable keys to their targets.
type TargetSet map[string]Target

// #endregion target

// #region canonical-keys
// PMNSKeys is the canonical PMNS observable order used for serialization.
// Conventions: squared sines are dimensionless, splittings in eV^2,
// deltaCP in radians.
var PMNSKeys = []string{"s12_2", "s13_2", "s23_2", "dm21", "dm3l", "deltaCP"}

// CKMKeys is the canonical CKM (Wolfenstein) observable order.
var CKMKeys = []string{"lambda", "A", "rhobar", "etabar"}

// #endregion canonical-keys
