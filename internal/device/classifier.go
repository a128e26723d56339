// Package device classifies the runtime as desktop, mobile or tablet from
// user-agent and input-capability signals. Mobile and tablet verdicts
// bypass the private-browsing gate entirely: their private modes are too
// unreliable to detect to be worth blocking.
package device

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

// Viewport thresholds, in CSS pixels.
const (
	tabletMinWidth    = 768
	tabletMaxWidth    = 1024
	mobileMaxWidth    = 768
	orientationCutoff = 896
)

var mobilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`android.*mobile`),
	regexp.MustCompile(`iphone`),
	regexp.MustCompile(`ipod`),
	regexp.MustCompile(`blackberry`),
	regexp.MustCompile(`windows phone`),
	regexp.MustCompile(`mobile`),
	regexp.MustCompile(`webos`),
	regexp.MustCompile(`opera mini`),
	regexp.MustCompile(`iemobile`),
	regexp.MustCompile(`mobile safari`),
	regexp.MustCompile(`fennec`),
}

var tabletPatterns = []*regexp.Regexp{
	regexp.MustCompile(`ipad`),
	regexp.MustCompile(`tablet`),
	regexp.MustCompile(`kindle`),
	regexp.MustCompile(`silk`),
	regexp.MustCompile(`playbook`),
	regexp.MustCompile(`bb10`),
}

// Classifier decides the device class and records its decisions in the
// audit log as a best-effort side channel.
type Classifier struct {
	env   schemas.Environment
	audit *AuditLog
	now   nowFunc
	log   *zap.Logger
}

// NewClassifier builds a Classifier. audit may be nil when no trail is
// wanted; now may be nil for the wall clock.
func NewClassifier(env schemas.Environment, audit *AuditLog, now nowFunc, logger *zap.Logger) *Classifier {
	if now == nil {
		now = defaultNow
	}
	return &Classifier{env: env, audit: audit, now: now, log: logger.Named("device")}
}

// Classify is a pure function of the user agent, screen width and touch
// capability; the audit append on the way out never influences the result.
func (c *Classifier) Classify(ctx context.Context) schemas.DeviceInfo {
	ua := strings.ToLower(c.env.UserAgent())
	width := c.env.ScreenWidth()
	height := c.env.ScreenHeight()
	touch := c.env.TouchCapable()

	isTablet := matchesAny(tabletPatterns, ua) ||
		bareAndroid(ua) ||
		(width >= tabletMinWidth && width <= tabletMaxWidth && touch)

	isMobile := !isTablet && (matchesAny(mobilePatterns, ua) ||
		(width <= mobileMaxWidth && touch) ||
		(c.env.HasOrientation() && width <= orientationCutoff))

	deviceType := schemas.DeviceDesktop
	if isTablet {
		deviceType = schemas.DeviceTablet
	} else if isMobile {
		deviceType = schemas.DeviceMobile
	}

	info := schemas.DeviceInfo{
		IsMobile:   isMobile,
		IsTablet:   isTablet,
		DeviceType: deviceType,
		UserAgent:  c.env.UserAgent(),
		ScreenSize: fmt.Sprintf("%dx%d", width, height),
		Timestamp:  c.now().UnixMilli(),
	}

	c.log.Debug("Device classified",
		zap.String("device_type", string(deviceType)),
		zap.String("screen", info.ScreenSize),
	)

	if c.audit != nil {
		c.audit.Append(ctx, info, schemas.AuditAccessGranted,
			fmt.Sprintf("Runtime classified as %s", deviceType))
	}
	return info
}

// ShouldBypassSecurity reports whether the private-browsing gate must be
// skipped for this runtime. A true verdict is itself audited.
func (c *Classifier) ShouldBypassSecurity(ctx context.Context) bool {
	info := c.Classify(ctx)
	bypass := info.IsMobile || info.IsTablet
	if bypass && c.audit != nil {
		c.audit.Append(ctx, info, schemas.AuditSecurityBypassed,
			fmt.Sprintf("%s device detected, private-browsing gate disabled", info.DeviceType))
	}
	return bypass
}

func matchesAny(patterns []*regexp.Regexp, ua string) bool {
	for _, p := range patterns {
		if p.MatchString(ua) {
			return true
		}
	}
	return false
}

// bareAndroid matches Android user agents without the "mobile" token,
// which Android reserves for phones.
func bareAndroid(ua string) bool {
	return strings.Contains(ua, "android") && !strings.Contains(ua, "mobile")
}
