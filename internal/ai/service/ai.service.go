package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lexivo/internal/ai/model"
	docmodel "lexivo/internal/document/model"
	projectmodel "lexivo/internal/project/model"
	templatemodel "lexivo/internal/template/model"
	"lexivo/pkg/apperr"
	"lexivo/pkg/logger"
	"lexivo/pkg/openai"
)

var aiCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lexivo_ai_requests_total",
	Help: "LLM calls by operation and outcome.",
}, []string{"operation", "outcome"})

// variationTones are generated in this order, one call each.
var variationTones = []string{"casual", "professional"}

// Completer is the part of the OpenAI client the service needs.
type Completer interface {
	CompleteJSON(ctx context.Context, messages []openai.Message, temperature float64) (string, error)
	Model() string
}

// Cache stores raw model replies.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type ProjectStore interface {
	Project(ctx context.Context, projectID, userID string) (*projectmodel.Project, error)
	ReplaceSlides(ctx context.Context, projectID, userID string, slides []projectmodel.NewSlide) ([]projectmodel.Slide, error)
}

type DocumentLookup interface {
	Get(ctx context.Context, docID, userID string) (*docmodel.Document, error)
}

type TemplateStore interface {
	GetAccessible(ctx context.Context, templateID, userID string) (*templatemodel.Template, error)
	IncrementUsage(ctx context.Context, templateID, userID string) (*templatemodel.Template, error)
}

// AIService runs the LLM features. A nil Client means no API key was
// configured and every call fails with apperr.ErrNotConfigured. Cache is optional.
type AIService struct {
	Client    Completer
	Cache     Cache
	CacheTTL  time.Duration
	Projects  ProjectStore
	Documents DocumentLookup
	Templates TemplateStore
}

func NewAIService(client Completer, cache Cache, cacheTTL time.Duration, projects ProjectStore, docs DocumentLookup, templates TemplateStore) *AIService {
	return &AIService{
		Client:    client,
		Cache:     cache,
		CacheTTL:  cacheTTL,
		Projects:  projects,
		Documents: docs,
		Templates: templates,
	}
}

type grammarReply struct {
	Suggestions []model.Suggestion `json:"suggestions"`
	Score       *int               `json:"score"`
}

func (s *AIService) CheckGrammar(ctx context.Context, text string) (*model.GrammarResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("text is required")
	}
	if utf8.RuneCountInString(text) > model.MaxCheckChars {
		return nil, apperr.Validation("text must be at most %d characters", model.MaxCheckChars)
	}

	var reply grammarReply
	if err := s.completeJSON(ctx, "grammar", buildGrammarMessages(text), 0.1, &reply); err != nil {
		return nil, err
	}

	result := &model.GrammarResult{Suggestions: make([]model.Suggestion, 0, len(reply.Suggestions))}
	for _, sg := range reply.Suggestions {
		if sg.ID == "" {
			sg.ID = uuid.NewString()
		}
		if sg.Type == "" {
			sg.Type = "grammar"
		}
		result.Suggestions = append(result.Suggestions, sg)
	}
	if reply.Score != nil {
		result.Score = clamp(*reply.Score, 0, 100)
	} else {
		result.Score = clamp(100-5*len(result.Suggestions), 0, 100)
	}
	return result, nil
}

// GenerateVariations rewrites text once per tone. A tone that fails is left
// out; the call only fails when no tone succeeded.
func (s *AIService) GenerateVariations(ctx context.Context, text string) (*model.VariationsResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("text is required")
	}
	if s.Client == nil {
		return nil, apperr.ErrNotConfigured
	}

	result := &model.VariationsResult{Variations: []model.Variation{}}
	var lastErr error
	for _, tone := range variationTones {
		var reply struct {
			Text string `json:"text"`
		}
		if err := s.completeJSON(ctx, "variation_"+tone, buildVariationMessages(text, tone), 0.7, &reply); err != nil {
			logger.Sugar.Warnf("Variation %s failed: %v", tone, err)
			lastErr = err
			continue
		}
		out := strings.TrimSpace(reply.Text)
		if out == "" {
			logger.Sugar.Warnf("Variation %s came back empty", tone)
			lastErr = fmt.Errorf("%w: empty %s variation", apperr.ErrUpstream, tone)
			continue
		}
		result.Variations = append(result.Variations, model.Variation{
			ID:        uuid.NewString(),
			Tone:      tone,
			Text:      out,
			CharCount: utf8.RuneCountInString(out),
		})
	}
	if len(result.Variations) == 0 {
		return nil, lastErr
	}
	return result, nil
}

// GenerateSlides writes slides for a project from free text or a document and
// replaces the project's current slides with them.
func (s *AIService) GenerateSlides(ctx context.Context, projectID, userID string, req model.GenerateSlidesRequest) (*model.GenerateSlidesResult, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, apperr.Validation("Invalid project id")
	}
	count := model.DefaultSlideCount
	if req.SlideCount != nil {
		count = *req.SlideCount
	}
	if count < 1 || count > model.MaxSlideCount {
		return nil, apperr.Validation("slide_count must be between 1 and %d", model.MaxSlideCount)
	}
	tone := req.Tone
	if tone == "" {
		tone = "professional"
	}

	project, err := s.Projects.Project(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	source, err := s.sourceText(ctx, project, userID, req)
	if err != nil {
		return nil, err
	}
	if s.Client == nil {
		return nil, apperr.ErrNotConfigured
	}

	var voice *templatemodel.VoiceProfile
	if project.TemplateID != nil {
		voice = s.voiceProfile(ctx, *project.TemplateID, userID)
	}

	var reply struct {
		Slides []struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"slides"`
	}
	if err := s.completeJSON(ctx, "generate_slides", buildSlideMessages(source, count, tone, voice), 0.7, &reply); err != nil {
		return nil, err
	}
	if len(reply.Slides) == 0 {
		return nil, fmt.Errorf("%w: model returned no slides", apperr.ErrUpstream)
	}
	if len(reply.Slides) > count {
		reply.Slides = reply.Slides[:count]
	}

	newSlides := make([]projectmodel.NewSlide, 0, len(reply.Slides))
	for _, sl := range reply.Slides {
		newSlides = append(newSlides, projectmodel.NewSlide{
			Title:   strings.TrimSpace(sl.Title),
			Content: truncateRunes(strings.TrimSpace(sl.Content), projectmodel.MaxSlideChars),
			Tone:    tone,
		})
	}
	slides, err := s.Projects.ReplaceSlides(ctx, project.ID, userID, newSlides)
	if err != nil {
		return nil, err
	}

	if voice != nil {
		if _, err := s.Templates.IncrementUsage(ctx, *project.TemplateID, userID); err != nil {
			logger.Sugar.Warnf("Failed to record template use for project %s: %v", project.ID, err)
		}
	}
	return &model.GenerateSlidesResult{Slides: slides}, nil
}

// sourceText picks the request text, then the requested document, then the
// project's linked document.
func (s *AIService) sourceText(ctx context.Context, project *projectmodel.Project, userID string, req model.GenerateSlidesRequest) (string, error) {
	if text := strings.TrimSpace(req.Text); text != "" {
		return text, nil
	}
	docID := req.DocumentID
	if docID == nil {
		docID = project.DocumentID
	}
	if docID == nil {
		return "", apperr.Validation("text or document_id is required")
	}
	doc, err := s.Documents.Get(ctx, *docID, userID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return "", apperr.Validation("Source document is empty")
	}
	return doc.Content, nil
}

func (s *AIService) voiceProfile(ctx context.Context, templateID, userID string) *templatemodel.VoiceProfile {
	t, err := s.Templates.GetAccessible(ctx, templateID, userID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Sugar.Warnf("Failed to load template %s, generating without voice: %v", templateID, err)
		}
		return nil
	}
	var v templatemodel.VoiceProfile
	if err := json.Unmarshal(t.VoiceProfile, &v); err != nil {
		logger.Sugar.Warnf("Template %s has an unreadable voice profile: %v", templateID, err)
		return nil
	}
	return &v
}

// completeJSON asks the model for a JSON object and decodes it into dst.
// The reply is parsed once with no repair. Only replies that decode are cached.
func (s *AIService) completeJSON(ctx context.Context, op string, messages []openai.Message, temperature float64, dst any) error {
	if s.Client == nil {
		return apperr.ErrNotConfigured
	}

	key := cacheKey(s.Client.Model(), temperature, messages)
	if s.Cache != nil {
		cached, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			logger.Sugar.Warnf("AI cache read failed: %v", err)
		} else if ok && json.Unmarshal([]byte(cached), dst) == nil {
			aiCalls.WithLabelValues(op, "cache_hit").Inc()
			return nil
		}
	}

	raw, err := s.Client.CompleteJSON(ctx, messages, temperature)
	if err != nil {
		aiCalls.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("%w: %s: %v", apperr.ErrUpstream, op, err)
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), dst); err != nil {
		aiCalls.WithLabelValues(op, "invalid_json").Inc()
		return fmt.Errorf("%w: %s returned invalid JSON: %v", apperr.ErrUpstream, op, err)
	}
	aiCalls.WithLabelValues(op, "ok").Inc()

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, raw, s.CacheTTL); err != nil {
			logger.Sugar.Warnf("AI cache write failed: %v", err)
		}
	}
	return nil
}

func cacheKey(model string, temperature float64, messages []openai.Message) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%.2f\x00", model, temperature)
	for _, m := range messages {
		fmt.Fprintf(h, "%s\x00%s\x00", m.Role, m.Content)
	}
	return "ai:" + hex.EncodeToString(h.Sum(nil))
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
