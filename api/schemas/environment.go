package schemas

import "context"

// Environment abstracts the browser runtime the client is embedded in.
// Synchronous getters expose cheap configuration snapshots; the probing
// methods touch real browser subsystems and therefore take a context.
//
// Implementations must never panic: a missing subsystem is reported either
// through the `supported` flag or through an error, and callers decide what
// that means for their verdict.
type Environment interface {
	// -- Configuration snapshot --

	UserAgent() string
	Platform() string
	Language() string
	Languages() []string
	ScreenWidth() int
	ScreenHeight() int
	TimezoneOffsetMinutes() int
	HardwareConcurrency() int
	CookiesEnabled() bool
	TouchCapable() bool
	HasOrientation() bool

	// -- Subsystem probes --

	// StorageCheck writes and deletes a throwaway key in persistent
	// key-value storage. A non-nil error means the write was refused.
	StorageCheck(ctx context.Context) error

	// OpenDatabase opens and then removes a throwaway structured database.
	OpenDatabase(ctx context.Context) error

	// StorageEstimate reports the storage quota in bytes. supported is
	// false when the estimate capability does not exist.
	StorageEstimate(ctx context.Context) (quota int64, supported bool, err error)

	// CreatePeerOffer constructs a realtime peer connection and creates an
	// offer, discarding it.
	CreatePeerOffer(ctx context.Context) error

	// RequestFileSystem asks the legacy sandboxed filesystem for temporary
	// storage. supported is false when the capability is absent.
	RequestFileSystem(ctx context.Context) (supported bool, err error)

	// CanvasData renders reference text to an offscreen bitmap and returns
	// its serialized form. An implausibly short result means read-back was
	// blocked.
	CanvasData(ctx context.Context) (string, error)

	// Battery fetches the battery status object. supported is false when
	// the capability is missing; present reports whether an object came back.
	Battery(ctx context.Context) (present bool, supported bool, err error)
}

// Persona describes a concrete browser configuration. It seeds the static
// environment used in tests and offline runs, and documents which signals
// the fingerprint and the classifiers consume.
type Persona struct {
	UserAgent           string   `mapstructure:"user_agent" json:"user_agent"`
	Platform            string   `mapstructure:"platform" json:"platform"`
	Language            string   `mapstructure:"language" json:"language"`
	Languages           []string `mapstructure:"languages" json:"languages"`
	ScreenWidth         int      `mapstructure:"screen_width" json:"screen_width"`
	ScreenHeight        int      `mapstructure:"screen_height" json:"screen_height"`
	TimezoneOffset      int      `mapstructure:"timezone_offset" json:"timezone_offset"`
	HardwareConcurrency int      `mapstructure:"hardware_concurrency" json:"hardware_concurrency"`
	CookiesEnabled      bool     `mapstructure:"cookies_enabled" json:"cookies_enabled"`
	TouchCapable        bool     `mapstructure:"touch_capable" json:"touch_capable"`
	HasOrientation      bool     `mapstructure:"has_orientation" json:"has_orientation"`
	CanvasSeed          string   `mapstructure:"canvas_seed" json:"canvas_seed"`
}
