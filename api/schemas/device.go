package schemas

// DeviceType is the coarse runtime classification used by the access gate.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
)

// DeviceInfo is the ephemeral result of one device classification.
type DeviceInfo struct {
	IsMobile   bool       `json:"isMobile"`
	IsTablet   bool       `json:"isTablet"`
	DeviceType DeviceType `json:"deviceType"`
	UserAgent  string     `json:"userAgent"`
	ScreenSize string     `json:"screenSize"`
	Timestamp  int64      `json:"timestamp"` // unix millis
}

// AuditAction labels why an audit entry was written.
type AuditAction string

const (
	AuditAccessGranted    AuditAction = "access_granted"
	AuditSecurityBypassed AuditAction = "security_bypassed"
	AuditBlocked          AuditAction = "blocked"
)

// AuditEntry records one classification or bypass decision. Entries are
// append-only from the classifier's perspective and capped/TTL'd on read.
type AuditEntry struct {
	ID         string      `json:"id"`
	Timestamp  int64       `json:"timestamp"` // unix millis
	DeviceInfo DeviceInfo  `json:"deviceInfo"`
	Action     AuditAction `json:"action"`
	Reason     string      `json:"reason"`
	SessionID  string      `json:"sessionId"`
}

// AccessStats summarizes the audit log for inspection tooling.
type AccessStats struct {
	TotalAccess      int                `json:"totalAccess"`
	TodayAccess      int                `json:"todayAccess"`
	DeviceTypes      map[DeviceType]int `json:"deviceTypes"`
	SecurityBypasses int                `json:"securityBypasses"`
	LastAccess       int64              `json:"lastAccess,omitempty"` // unix millis, 0 when empty
}
