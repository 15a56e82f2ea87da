package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	domainimage "aidpal-server-go/internal/domain/image"
	"aidpal-server-go/internal/domain/knowledge"
	platformerrors "aidpal-server-go/internal/platform/errors"
	"aidpal-server-go/internal/platform/logging"
)

// ResultCache lets the orchestrator skip the candidate loop for a payload it
// has already analyzed. Implementations live in the cache subpackage.
type ResultCache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Set(ctx context.Context, key string, result *Result) error
}

// Options configures an Orchestrator. Models and Knowledge become immutable
// once the orchestrator is constructed.
type Options struct {
	// Models is the fixed candidate list, highest priority first.
	Models    []string
	Knowledge *knowledge.Base
	Invoker   Invoker
	Logger    *logging.Logger
	Cache     ResultCache
}

// Orchestrator tries each candidate model in priority order until one
// produces a schema-valid result. It holds no mutable state across Analyze
// calls, so concurrent callers are independent.
type Orchestrator struct {
	models  []string
	kb      *knowledge.Base
	invoker Invoker
	logger  *logging.Logger
	cache   ResultCache
}

// NewOrchestrator validates options and builds an orchestrator.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if len(opts.Models) == 0 {
		return nil, platformerrors.New(platformerrors.KindAnalysis, "new-orchestrator", "candidate model list is empty")
	}
	if opts.Knowledge == nil {
		return nil, platformerrors.New(platformerrors.KindAnalysis, "new-orchestrator", "knowledge base is required")
	}
	if opts.Invoker == nil {
		return nil, platformerrors.New(platformerrors.KindAnalysis, "new-orchestrator", "invoker is required")
	}

	models := make([]string, len(opts.Models))
	copy(models, opts.Models)

	return &Orchestrator{
		models:  models,
		kb:      opts.Knowledge,
		invoker: opts.Invoker,
		logger:  opts.Logger,
		cache:   opts.Cache,
	}, nil
}

// Models returns the candidate list in trial order.
func (o *Orchestrator) Models() []string {
	models := make([]string, len(o.models))
	copy(models, o.models)
	return models
}

// Analyze runs the fallback loop: one sequential trial per candidate model,
// first schema-valid result wins. When every candidate fails the returned
// *Error carries a message chosen from the last failure only.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Image) == "" {
		return nil, platformerrors.New(platformerrors.KindAnalysis, "analyze", "empty image payload")
	}

	payload := domainimage.ParseDataURI(req.Image)
	key := CacheKey(payload.Data, req.Context)

	if o.cache != nil {
		if cached, ok, err := o.cache.Get(ctx, key); err == nil && ok {
			o.logger.DebugTag("analysis", "cache hit, skipping candidate loop")
			return cached, nil
		}
	}

	prompt := o.buildPrompt(req.Context)

	var lastErr error
	for _, model := range o.models {
		text, err := o.invoker.Invoke(ctx, InvokeRequest{
			Model:        model,
			ImagePayload: payload.Data,
			MediaType:    payload.MediaType,
			Prompt:       prompt,
			Schema:       ResultSchema,
		})
		// Every failure, transport or shape, advances to the next candidate;
		// nothing is fatal before the list is exhausted.
		if err != nil {
			lastErr = err
			o.logger.WarnTag("analysis", "candidate %s failed: %v", model, err)
			continue
		}

		result, err := DecodeResult(text)
		if err != nil {
			lastErr = err
			o.logger.WarnTag("analysis", "candidate %s returned malformed response: %v", model, err)
			continue
		}
		if err := ValidateResult(result); err != nil {
			lastErr = err
			o.logger.WarnTag("analysis", "candidate %s returned invalid result: %v", model, err)
			continue
		}

		o.logger.InfoTag("analysis", "candidate %s produced a valid result (%s, %s)", model, result.WoundType, result.Severity)
		if o.cache != nil {
			if err := o.cache.Set(ctx, key, result); err != nil {
				o.logger.WarnTag("analysis", "cache store failed: %v", err)
			}
		}
		return result, nil
	}

	return nil, &Error{
		Message: classifyExhaustion(lastErr),
		Cause:   lastErr,
	}
}

func (o *Orchestrator) buildPrompt(userContext string) string {
	var sb strings.Builder
	sb.WriteString("You are AidPal, a friendly first-aid helper reviewing a photo of a minor wound.\n\n")
	sb.WriteString(o.kb.Render())
	sb.WriteString("\n")
	if strings.TrimSpace(userContext) != "" {
		fmt.Fprintf(&sb, "The user says: %s\n\n", userContext)
	}
	sb.WriteString("Look at the attached photo and answer with exactly one JSON object with the fields ")
	sb.WriteString(`"woundType", "severity" (one of "Low", "Medium", "High"), "description", "firstAidSteps" (a non-empty array of strings) and "recommendation". `)
	fmt.Fprintf(&sb, "Always end the recommendation with this exact sentence: %q. ", o.kb.Disclaimer)
	sb.WriteString("Return the JSON object only, with no surrounding text.")
	return sb.String()
}

// CacheKey derives the stable lookup key for one image payload and context.
func CacheKey(imagePayload, userContext string) string {
	h := sha256.New()
	h.Write([]byte(imagePayload))
	h.Write([]byte{0})
	h.Write([]byte(userContext))
	return hex.EncodeToString(h.Sum(nil))
}
