package schemas_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

// TestConstants pins the string values the persisted records and the HTTP
// surface depend on. Existing profile directories break if these drift.
func TestConstants(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		constant string
		expected string
	}{
		{"ProbeAcceptLanguage", schemas.ProbeAcceptLanguage, "acceptLanguage"},
		{"ProbeLocalStorage", schemas.ProbeLocalStorage, "localStorage"},
		{"ProbeIndexedDB", schemas.ProbeIndexedDB, "indexedDB"},
		{"ProbeQuotaAPI", schemas.ProbeQuotaAPI, "quotaAPI"},
		{"ProbeWebRTC", schemas.ProbeWebRTC, "webRTC"},
		{"ProbeFileSystem", schemas.ProbeFileSystem, "requestFileSystem"},
		{"ProbeCanvas", schemas.ProbeCanvas, "canvas"},
		{"ProbeBattery", schemas.ProbeBattery, "batteryAPI"},

		{"GateChecking", string(schemas.GateChecking), "checking"},
		{"GateBlocked", string(schemas.GateBlocked), "blocked"},
		{"GateAllowed", string(schemas.GateAllowed), "allowed"},

		{"DeviceDesktop", string(schemas.DeviceDesktop), "desktop"},
		{"DeviceMobile", string(schemas.DeviceMobile), "mobile"},
		{"DeviceTablet", string(schemas.DeviceTablet), "tablet"},

		{"AuditAccessGranted", string(schemas.AuditAccessGranted), "access_granted"},
		{"AuditSecurityBypassed", string(schemas.AuditSecurityBypassed), "security_bypassed"},
		{"AuditBlocked", string(schemas.AuditBlocked), "blocked"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.constant)
		})
	}
}

func TestDetectionResultPositive(t *testing.T) {
	t.Parallel()
	result := schemas.DetectionResult{
		DetectionMethods: []string{schemas.ProbeAcceptLanguage, schemas.ProbeCanvas},
	}

	assert.True(t, result.Positive(schemas.ProbeAcceptLanguage))
	assert.True(t, result.Positive(schemas.ProbeCanvas))
	assert.False(t, result.Positive(schemas.ProbeBattery))
	assert.False(t, schemas.DetectionResult{}.Positive(schemas.ProbeCanvas))
}

func TestUserSessionExpiry(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	session := schemas.UserSession{FirstAccess: start.UnixMilli()}
	window := 12 * time.Hour

	assert.Equal(t, 2*time.Hour, session.Age(start.Add(2*time.Hour)))

	assert.False(t, session.Expired(start.Add(11*time.Hour), window))
	assert.False(t, session.Expired(start.Add(12*time.Hour), window), "the window boundary itself is still inside")
	assert.True(t, session.Expired(start.Add(12*time.Hour+time.Millisecond), window))
}
