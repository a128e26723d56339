package browserenv

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
	"github.com/nexla-ia/gerador-frases-ia/internal/config"
)

// Chrome drives a live browser over the DevTools protocol. Configuration
// signals are snapshotted once at startup; the subsystem probes evaluate
// small scripts inside the attached tab on demand.
type Chrome struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	snap        chromeSnapshot
	log         *zap.Logger
}

var _ schemas.Environment = (*Chrome)(nil)

type chromeSnapshot struct {
	UserAgent           string   `json:"userAgent"`
	Platform            string   `json:"platform"`
	Language            string   `json:"language"`
	Languages           []string `json:"languages"`
	ScreenWidth         int      `json:"screenWidth"`
	ScreenHeight        int      `json:"screenHeight"`
	TimezoneOffset      int      `json:"timezoneOffset"`
	HardwareConcurrency int      `json:"hardwareConcurrency"`
	CookiesEnabled      bool     `json:"cookiesEnabled"`
	TouchCapable        bool     `json:"touchCapable"`
	HasOrientation      bool     `json:"hasOrientation"`
}

const snapshotScript = `(() => ({
	userAgent: navigator.userAgent,
	platform: navigator.platform || '',
	language: navigator.language || '',
	languages: Array.from(navigator.languages || []),
	screenWidth: screen.width,
	screenHeight: screen.height,
	timezoneOffset: new Date().getTimezoneOffset(),
	hardwareConcurrency: navigator.hardwareConcurrency || 0,
	cookiesEnabled: navigator.cookieEnabled,
	touchCapable: ('ontouchstart' in window) || navigator.maxTouchPoints > 0,
	hasOrientation: typeof window.orientation !== 'undefined'
}))()`

// NewChrome launches the browser process, opens a tab on about:blank and
// captures the configuration snapshot. Close must be called to release the
// process.
func NewChrome(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Chrome, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.Headless {
		opts = append(opts, chromedp.Headless, chromedp.Flag("disable-gpu", true))
	}
	opts = append(opts,
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-first-run", true),
	)
	for _, arg := range cfg.Args {
		name := strings.TrimPrefix(arg, "--")
		if k, v, ok := strings.Cut(name, "="); ok {
			opts = append(opts, chromedp.Flag(k, v))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	c := &Chrome{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		log:         logger.Named("browserenv"),
	}

	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.Evaluate(snapshotScript, &c.snap),
	)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to start browser environment: %w", err)
	}

	c.log.Info("Browser environment attached",
		zap.String("user_agent", c.snap.UserAgent),
		zap.Bool("headless", cfg.Headless),
	)
	return c, nil
}

// Close tears down the tab and the browser process.
func (c *Chrome) Close() {
	c.tabCancel()
	c.allocCancel()
}

func (c *Chrome) UserAgent() string          { return c.snap.UserAgent }
func (c *Chrome) Platform() string           { return c.snap.Platform }
func (c *Chrome) Language() string           { return c.snap.Language }
func (c *Chrome) Languages() []string        { return c.snap.Languages }
func (c *Chrome) ScreenWidth() int           { return c.snap.ScreenWidth }
func (c *Chrome) ScreenHeight() int          { return c.snap.ScreenHeight }
func (c *Chrome) TimezoneOffsetMinutes() int { return c.snap.TimezoneOffset }
func (c *Chrome) HardwareConcurrency() int   { return c.snap.HardwareConcurrency }
func (c *Chrome) CookiesEnabled() bool       { return c.snap.CookiesEnabled }
func (c *Chrome) TouchCapable() bool         { return c.snap.TouchCapable }
func (c *Chrome) HasOrientation() bool       { return c.snap.HasOrientation }

// eval runs a script in the attached tab, awaiting promises. The caller's
// deadline is layered onto the tab context so a stalled probe times out
// without killing the tab.
func (c *Chrome) eval(ctx context.Context, script string, out interface{}) error {
	runCtx := c.tabCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(c.tabCtx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, chromedp.Evaluate(script, out,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
}

func (c *Chrome) StorageCheck(ctx context.Context) error {
	var ok bool
	return c.eval(ctx, `(() => {
		const k = 'pb_test_' + Date.now();
		localStorage.setItem(k, 'test');
		localStorage.removeItem(k);
		return true;
	})()`, &ok)
}

func (c *Chrome) OpenDatabase(ctx context.Context) error {
	var ok bool
	return c.eval(ctx, `new Promise((resolve, reject) => {
		const req = indexedDB.open('pb_db_test');
		req.onerror = () => reject(new Error('database open refused'));
		req.onsuccess = () => {
			req.result.close();
			indexedDB.deleteDatabase('pb_db_test');
			resolve(true);
		};
	})`, &ok)
}

func (c *Chrome) StorageEstimate(ctx context.Context) (int64, bool, error) {
	var res struct {
		Supported bool  `json:"supported"`
		Quota     int64 `json:"quota"`
	}
	err := c.eval(ctx, `(async () => {
		if (!navigator.storage || !navigator.storage.estimate) {
			return { supported: false, quota: 0 };
		}
		const est = await navigator.storage.estimate();
		return { supported: true, quota: est.quota || 0 };
	})()`, &res)
	if err != nil {
		return 0, false, err
	}
	return res.Quota, res.Supported, nil
}

func (c *Chrome) CreatePeerOffer(ctx context.Context) error {
	var ok bool
	return c.eval(ctx, `(async () => {
		const pc = new RTCPeerConnection({ iceServers: [] });
		try {
			pc.createDataChannel('probe');
			await pc.createOffer();
		} finally {
			pc.close();
		}
		return true;
	})()`, &ok)
}

func (c *Chrome) RequestFileSystem(ctx context.Context) (bool, error) {
	var res struct {
		Supported bool `json:"supported"`
		Granted   bool `json:"granted"`
	}
	err := c.eval(ctx, `new Promise((resolve) => {
		const rfs = window.webkitRequestFileSystem || window.requestFileSystem;
		if (!rfs) {
			resolve({ supported: false, granted: false });
			return;
		}
		rfs.call(window, window.TEMPORARY, 1,
			() => resolve({ supported: true, granted: true }),
			() => resolve({ supported: true, granted: false }));
	})`, &res)
	if err != nil {
		return false, err
	}
	if res.Supported && !res.Granted {
		return true, fmt.Errorf("temporary filesystem request denied")
	}
	return res.Supported, nil
}

func (c *Chrome) CanvasData(ctx context.Context) (string, error) {
	var data string
	err := c.eval(ctx, `(() => {
		const canvas = document.createElement('canvas');
		canvas.width = 200;
		canvas.height = 50;
		const g = canvas.getContext('2d');
		g.textBaseline = 'top';
		g.font = '14px Arial';
		g.fillStyle = '#f60';
		g.fillRect(125, 1, 62, 20);
		g.fillStyle = '#069';
		g.fillText('BrowserCheck 1.0', 2, 15);
		return canvas.toDataURL();
	})()`, &data)
	return data, err
}

func (c *Chrome) Battery(ctx context.Context) (bool, bool, error) {
	var res struct {
		Supported bool `json:"supported"`
		Present   bool `json:"present"`
	}
	err := c.eval(ctx, `(async () => {
		if (!navigator.getBattery) {
			return { supported: false, present: false };
		}
		const battery = await navigator.getBattery();
		return { supported: true, present: !!battery };
	})()`, &res)
	if err != nil {
		return false, false, err
	}
	return res.Present, res.Supported, nil
}
