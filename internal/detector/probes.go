package detector

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

// standardProbes returns the probe set in aggregation order. Position 0
// must be the accept-language heuristic; the aggregator treats it as
// dominant evidence.
func standardProbes(opts Options) []Probe {
	return []Probe{
		{Name: schemas.ProbeAcceptLanguage, Run: probeAcceptLanguage},
		{Name: schemas.ProbeLocalStorage, Run: probeLocalStorage},
		{Name: schemas.ProbeIndexedDB, Run: probeDatabase(opts.DatabaseTimeout)},
		{Name: schemas.ProbeQuotaAPI, Run: probeStorageQuota},
		{Name: schemas.ProbeWebRTC, Run: probePeerConnection(opts.PeerTimeout)},
		{Name: schemas.ProbeFileSystem, Run: probeFileSystem},
		{Name: schemas.ProbeCanvas, Run: probeCanvas},
		{Name: schemas.ProbeBattery, Run: probeBattery},
	}
}

// Minimal/default accept-language shapes that correlate with a profile
// reset to factory settings. Flagging bare "en-US" is a known precision
// trade-off inherited from the deployed heuristic; see the package tests.
var suspiciousLanguagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z]{2}-[A-Z]{2},[a-z]{2};q=0\.9$`), // pt-BR,pt;q=0.9
	regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}$`),                 // pt-BR alone
	regexp.MustCompile(`^en-US$`),                             // en-US alone
	regexp.MustCompile(`^[a-z]{2}$`),                          // pt alone
}

// probeAcceptLanguage synthesizes an accept-language header from the
// negotiated languages and flags shapes typical of anonymous sessions.
// This probe never converts an internal failure into a positive.
func probeAcceptLanguage(_ context.Context, env schemas.Environment) (bool, error) {
	languages := env.Languages()
	language := env.Language()
	if len(languages) == 0 && language != "" {
		languages = []string{language}
	}

	header := synthesizeAcceptLanguage(languages, language)

	// A very short list without any English tag suggests a stripped-down
	// configuration.
	if len(header) < shortAcceptLang && !containsEnglishTag(header) {
		return true, nil
	}

	for _, pattern := range suspiciousLanguagePatterns {
		if pattern.MatchString(header) {
			return true, nil
		}
	}

	// A single negotiated language equal to the primary language means no
	// secondary preferences survived, another reset indicator.
	if len(languages) == 1 && language == languages[0] {
		return true, nil
	}

	return false, nil
}

// synthesizeAcceptLanguage rebuilds the header the browser would send:
// the first language bare, the rest with descending quality values.
func synthesizeAcceptLanguage(languages []string, primary string) string {
	if len(languages) == 0 {
		if primary != "" {
			return primary
		}
		return "en-US"
	}

	header := languages[0]
	for i := 1; i < len(languages); i++ {
		quality := 1 - float64(i)*0.1
		if quality < 0.1 {
			quality = 0.1
		}
		header += fmt.Sprintf(",%s;q=%.1f", languages[i], quality)
	}
	return header
}

func containsEnglishTag(header string) bool {
	// Mirrors the deployed substring check: any "en" occurrence counts,
	// including inside region-qualified tags.
	return strings.Contains(header, "en")
}

// probeLocalStorage attempts a throwaway write+delete. A refused write is
// the classic private-mode tell.
func probeLocalStorage(ctx context.Context, env schemas.Environment) (bool, error) {
	if err := env.StorageCheck(ctx); err != nil {
		return true, nil
	}
	return false, nil
}

// probeDatabase opens a throwaway structured database. Errors and a hung
// open (bounded by timeout) are positive; success is negative.
func probeDatabase(timeout time.Duration) func(context.Context, schemas.Environment) (bool, error) {
	return func(ctx context.Context, env schemas.Environment) (bool, error) {
		opCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := env.OpenDatabase(opCtx); err != nil {
			return true, nil
		}
		return false, nil
	}
}

// probeStorageQuota flags quotas small enough to indicate ephemeral
// storage. Absence of the capability, or a failing estimate, cannot
// distinguish anything and stays negative.
func probeStorageQuota(ctx context.Context, env schemas.Environment) (bool, error) {
	quota, supported, err := env.StorageEstimate(ctx)
	if err != nil || !supported {
		return false, nil
	}
	return quota > 0 && quota < minStorageQuota, nil
}

// probePeerConnection creates a peer connection offer. Failure is
// positive; a timeout without resolution fails open for this probe only.
func probePeerConnection(timeout time.Duration) func(context.Context, schemas.Environment) (bool, error) {
	return func(ctx context.Context, env schemas.Environment) (bool, error) {
		opCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := env.CreatePeerOffer(opCtx)
		if err == nil {
			return false, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		return true, nil
	}
}

// probeFileSystem requests legacy sandboxed temporary storage where the
// capability exists. Absent capability is negative.
func probeFileSystem(ctx context.Context, env schemas.Environment) (bool, error) {
	supported, err := env.RequestFileSystem(ctx)
	if !supported {
		return false, nil
	}
	return err != nil, nil
}

// probeCanvas serializes an offscreen render. Blocked read-back produces
// implausibly short output; errors are positive.
func probeCanvas(ctx context.Context, env schemas.Environment) (bool, error) {
	data, err := env.CanvasData(ctx)
	if err != nil {
		return true, nil
	}
	if len(data) < minCanvasData || data == "data:," {
		return true, nil
	}
	return false, nil
}

// probeBattery fetches the battery status object where available. A
// supported capability returning nothing, or erroring, is positive.
func probeBattery(ctx context.Context, env schemas.Environment) (bool, error) {
	present, supported, err := env.Battery(ctx)
	if err != nil {
		return true, nil
	}
	if !supported {
		return false, nil
	}
	return !present, nil
}
