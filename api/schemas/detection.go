package schemas

// Probe names, in aggregation order. The order is part of the contract:
// results are folded by position, never by arrival.
const (
	ProbeAcceptLanguage = "acceptLanguage"
	ProbeLocalStorage   = "localStorage"
	ProbeIndexedDB      = "indexedDB"
	ProbeQuotaAPI       = "quotaAPI"
	ProbeWebRTC         = "webRTC"
	ProbeFileSystem     = "requestFileSystem"
	ProbeCanvas         = "canvas"
	ProbeBattery        = "batteryAPI"
)

// DetectionResult is the ephemeral outcome of one private-browsing check.
type DetectionResult struct {
	IsPrivate        bool     `json:"isPrivate"`
	DetectionMethods []string `json:"detectionMethods"`
	Confidence       float64  `json:"confidence"` // 0..100
	AcceptLanguage   string   `json:"acceptLanguage,omitempty"`
}

// Positive reports whether the named probe contributed to the verdict.
func (r DetectionResult) Positive(probe string) bool {
	for _, m := range r.DetectionMethods {
		if m == probe {
			return true
		}
	}
	return false
}

// GateState is the access-gate controller's externally visible state.
type GateState string

const (
	GateChecking GateState = "checking"
	GateBlocked  GateState = "blocked"
	GateAllowed  GateState = "allowed"
)
