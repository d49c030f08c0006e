package analyzer

import (
	"context"
	"errors"
	"image"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/zjx20/arabic-analyzer/gemini"
	"github.com/zjx20/arabic-analyzer/imaging"
	"github.com/zjx20/arabic-analyzer/prompt"
	"github.com/zjx20/arabic-analyzer/sanitize"
)

// Upstream is the credential-fallback client as seen by the handlers.
type Upstream interface {
	Generate(ctx context.Context, endpoint string, req *gemini.Request) (*gemini.Response, error)
	KeyCount() int
}

// stage is the outcome of one upstream round trip: either text or err.
type stage struct {
	text string
	raw  string
	err  error
}

func failed(err error) stage {
	return stage{err: err}
}

func (h *Handler) complete(ctx context.Context, endpoint string, req *gemini.Request) (string, error) {
	resp, err := h.upstream.Generate(ctx, endpoint, req)
	if err != nil {
		return "", err
	}
	return resp.Text()
}

// extract runs OCR on img and sanitizes the result.
func (h *Handler) extract(ctx context.Context, img image.Image) stage {
	b64, err := imaging.EncodeBase64(img)
	if err != nil {
		return failed(err)
	}
	raw, err := h.complete(ctx, h.visionEndpoint, prompt.Extract(b64))
	if err != nil {
		return failed(err)
	}
	return stage{text: sanitize.Clean(raw), raw: raw}
}

func (h *Handler) analyze(ctx context.Context, text string) stage {
	req, err := prompt.Analyze(text)
	if err != nil {
		return failed(err)
	}
	raw, err := h.complete(ctx, h.textEndpoint, req)
	if err != nil {
		return failed(err)
	}
	return stage{text: strings.TrimSpace(raw), raw: raw}
}

func (h *Handler) generate(ctx context.Context, userPrompt string) stage {
	raw, err := h.complete(ctx, h.textEndpoint, prompt.Generate(userPrompt))
	if err != nil {
		return failed(err)
	}
	return stage{text: strings.TrimSpace(raw), raw: raw}
}

// reason reports a failed single-stage call. Exhausted credentials are
// reported as is, an answer without candidates gets noCandidates, anything
// else is an internal fault and gets faultPrefix.
func reason(err error, noCandidates, faultPrefix string) string {
	switch {
	case errors.Is(err, gemini.ErrAllCredentialsFailed):
		return err.Error()
	case errors.Is(err, gemini.ErrNoCandidates):
		return noCandidates
	default:
		return faultPrefix + err.Error()
	}
}

// firstStageReason reports the failed first stage of a two-stage pipeline.
func firstStageReason(err error, label, faultPrefix string) string {
	if errors.Is(err, gemini.ErrAllCredentialsFailed) || errors.Is(err, gemini.ErrNoCandidates) {
		return label + err.Error()
	}
	return faultPrefix + err.Error()
}

// analysisOutcome folds the second stage into the response fields. A failed
// analysis never discards the first stage's text.
func analysisOutcome(s stage) (analysis string, failedAnalysis bool) {
	if s.err != nil {
		log.Warnf("analysis stage failed: %s", s.err)
		return "Analysis failed: " + s.err.Error(), true
	}
	return s.text, false
}
