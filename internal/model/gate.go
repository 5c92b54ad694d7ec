package model

// GateState enumerates release-gate outcomes for a pending download.
type GateState string

const (
	// GateGranted releases the asset immediately.
	GateGranted GateState = "granted"
	// GatePendingTimer defers release until a fixed delay elapses.
	GatePendingTimer GateState = "pending_timer"
	// GatePendingAdClick defers release until the user acts on the
	// presented advertisement.
	GatePendingAdClick GateState = "pending_ad_click"
	// GateExpired is terminal: the underlying session is gone and the
	// user must resend the link.
	GateExpired GateState = "expired"
)

// GateMode selects how a deployment gates non-free downloads.
type GateMode string

const (
	// GateModeAd presents an ad link plus an explicit continue action.
	GateModeAd GateMode = "ad"
	// GateModeTimed releases automatically after a fixed delay.
	GateModeTimed GateMode = "timed"
)
