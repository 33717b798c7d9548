package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campnest/backend/internal/domain"
)

// Keyword-rule confidence levels.
const (
	keywordHitConfidence = 0.9
	tagHitConfidenceHigh = 0.85
	tagHitConfidenceMid  = 0.7
	tagHitConfidenceLow  = 0.6
	defaultConfidence    = 0.5

	// glampingPriceLevel is the provider price level at or above which an
	// ambiguous lodging tag is read as glamping rather than cabins.
	glampingPriceLevel = 3
)

// typeKeywords are evaluated in priority order: the more specific categories
// first, so "glamping tent resort" does not fall through to basic camping.
// Lists mix English and Thai because provider names come in both.
var typeKeywords = []struct {
	typeID int
	words  []string
}{
	{domain.ListingTypeGlamping, []string{"glamping", "glamp", "แกลมป์ปิ้ง", "แกลมปิ้ง"}},
	{domain.ListingTypeTentedResort, []string{"tented resort", "tent resort", "safari tent", "เต็นท์รีสอร์ท"}},
	{domain.ListingTypeCabin, []string{"cabin", "bungalow", "cottage", "chalet", "บังกะโล", "กระท่อม", "บ้านพัก"}},
	{domain.ListingTypeBasicCamping, []string{"campsite", "campground", "camping", "camp", "แคมป์ปิ้ง", "แคมป์", "ลานกางเต็นท์", "กางเต็นท์"}},
}

// Classification is the classifier's answer: a listing type, how sure it is,
// and which path produced it.
type Classification struct {
	TypeID     int     `json:"type_id"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"` // keyword, tags, default, ai
}

// ClassifierConfig holds configuration for the type classifier.
type ClassifierConfig struct {
	// FallbackThreshold is the keyword confidence below which the AI
	// fallback is consulted (when a backend is configured).
	FallbackThreshold float64
	// FallbackTimeout bounds the AI call; it is the only step of the
	// pipeline making an external network request.
	FallbackTimeout time.Duration
}

// ClassifierService assigns a listing type to a raw place. Keyword rules are
// the primary path; an optional AI backend is consulted only when keyword
// confidence is low, and its failures are always swallowed because type is
// advisory metadata, never a blocking field.
type ClassifierService struct {
	ai                domain.AIClient // nil when no backend is configured
	fallbackThreshold float64
	fallbackTimeout   time.Duration
	logger            *zap.Logger
}

// NewClassifierService creates a classifier. Pass a nil AI client to run on
// keyword rules alone.
func NewClassifierService(ai domain.AIClient, cfg ClassifierConfig, logger *zap.Logger) *ClassifierService {
	threshold := cfg.FallbackThreshold
	if threshold <= 0 {
		threshold = 0.7
	}
	timeout := cfg.FallbackTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ClassifierService{
		ai:                ai,
		fallbackThreshold: threshold,
		fallbackTimeout:   timeout,
		logger:            logger,
	}
}

// Classify assigns a listing type to the place. It never fails: total rule
// and fallback failure yields the default category at confidence 0.5.
func (s *ClassifierService) Classify(ctx context.Context, p domain.PlacePayload) Classification {
	result := s.classifyByRules(p)

	if result.Confidence < s.fallbackThreshold && s.ai != nil {
		if ai, ok := s.classifyByAI(ctx, p); ok && ai.Confidence > result.Confidence {
			return ai
		}
	}

	return result
}

// classifyByRules runs the keyword rules against the place name and the
// provider category tags.
func (s *ClassifierService) classifyByRules(p domain.PlacePayload) Classification {
	name := strings.ToLower(p.Name)
	for _, rule := range typeKeywords {
		for _, w := range rule.words {
			if strings.Contains(name, w) {
				return Classification{TypeID: rule.typeID, Confidence: keywordHitConfidence, Source: "keyword"}
			}
		}
	}

	var hasLodging bool
	for _, tag := range p.Types {
		switch strings.ToLower(tag) {
		case "campground", "rv_park", "camping":
			return Classification{TypeID: domain.ListingTypeBasicCamping, Confidence: tagHitConfidenceHigh, Source: "tags"}
		case "lodging", "resort", "resort_hotel":
			hasLodging = true
		}
	}
	if hasLodging {
		// Price level breaks the tie: pricier lodging near the outdoors
		// skews glamping, cheaper skews cabins.
		if p.PriceLevel >= glampingPriceLevel {
			return Classification{TypeID: domain.ListingTypeGlamping, Confidence: tagHitConfidenceMid, Source: "tags"}
		}
		return Classification{TypeID: domain.ListingTypeCabin, Confidence: tagHitConfidenceLow, Source: "tags"}
	}

	return Classification{TypeID: domain.ListingTypeBasicCamping, Confidence: defaultConfidence, Source: "default"}
}

// aiAnswer is the structured response requested from the AI backend.
type aiAnswer struct {
	TypeID     int     `json:"type_id"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// classifyByAI asks the configured backend for a classification. Any failure
// (unreachable backend, malformed answer, out-of-range type) returns ok=false
// so the keyword result is kept.
func (s *ClassifierService) classifyByAI(ctx context.Context, p domain.PlacePayload) (Classification, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.fallbackTimeout)
	defer cancel()

	response, err := s.ai.Complete(ctx, buildClassificationPrompt(p))
	if err != nil {
		s.logger.Debug("ai classification failed, keeping keyword result", zap.Error(err))
		return Classification{}, false
	}

	var answer aiAnswer
	if err := json.Unmarshal([]byte(extractJSON(response)), &answer); err != nil {
		s.logger.Debug("ai classification returned malformed answer", zap.Error(err))
		return Classification{}, false
	}

	if answer.TypeID < domain.ListingTypeBasicCamping || answer.TypeID > domain.ListingTypeCabin {
		s.logger.Debug("ai classification returned unknown type", zap.Int("type_id", answer.TypeID))
		return Classification{}, false
	}

	conf := answer.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	return Classification{TypeID: answer.TypeID, Confidence: conf, Source: "ai"}, true
}

func buildClassificationPrompt(p domain.PlacePayload) string {
	var b strings.Builder
	b.WriteString("Classify this campsite listing into exactly one category.\n\n")
	b.WriteString("Categories:\n")
	b.WriteString("1 = basic camping (pitch your own tent, minimal facilities)\n")
	b.WriteString("2 = glamping (luxury tents or domes, hotel-grade amenities)\n")
	b.WriteString("3 = tented resort (permanent safari-style tents run as a resort)\n")
	b.WriteString("4 = cabin/bungalow (solid-walled accommodation on a campsite)\n\n")
	fmt.Fprintf(&b, "Listing:\nName: %s\n", p.Name)
	if p.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", p.Address)
	}
	if len(p.Types) > 0 {
		fmt.Fprintf(&b, "Provider tags: %s\n", strings.Join(p.Types, ", "))
	}
	if p.Rating != nil {
		fmt.Fprintf(&b, "Rating: %.1f (%d reviews)\n", *p.Rating, p.RatingsTotal)
	}
	if p.PriceLevel > 0 {
		fmt.Fprintf(&b, "Price level: %d of 4\n", p.PriceLevel)
	}
	b.WriteString("\nAnswer with a single JSON object, nothing else:\n")
	b.WriteString(`{"type_id": <1-4>, "confidence": <0.0-1.0>, "reason": "<short reason>"}`)
	return b.String()
}

// extractJSON trims any prose the model wraps around the JSON object by
// slicing from the first '{' to the last '}'.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
