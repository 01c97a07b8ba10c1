package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SumireDoi/LocaConne/internal/knowledge"
	"github.com/SumireDoi/LocaConne/pkg/logger"
)

// summarySentences is the prose budget fetched from the encyclopedia.
const summarySentences = 2

// EnrichedLocation is built up field by field; every field is independently
// optional and a partially filled value is a normal outcome, not an error.
type EnrichedLocation struct {
	Label       *string `json:"label"`
	Description *string `json:"description"`
	Coordinate  *string `json:"coordinate"`
	Summary     *string `json:"summary"`
}

// Resolved reports whether the place name matched any entity at all.
func (e EnrichedLocation) Resolved() bool { return e.Label != nil }

// Enricher resolves a free-text place name through entity search, structured
// queries and an encyclopedia summary, degrading gracefully at each step.
// Results are cached in Redis so repeated mentions of the same place skip the
// external round trips.
type Enricher struct {
	kb       knowledge.KnowledgeBase
	wiki     knowledge.Encyclopedia
	cache    *redis.Client
	cacheTTL time.Duration
	language string
}

// NewEnricher builds an enricher; cache may be nil to disable caching.
func NewEnricher(kb knowledge.KnowledgeBase, wiki knowledge.Encyclopedia, cache *redis.Client, cacheTTL time.Duration, language string) *Enricher {
	return &Enricher{kb: kb, wiki: wiki, cache: cache, cacheTTL: cacheTTL, language: language}
}

// Enrich never fails: any step error leaves the corresponding fields nil and
// the remaining steps still run where they can.
func (e *Enricher) Enrich(ctx context.Context, place string) EnrichedLocation {
	if cached, ok := e.fromCache(ctx, place); ok {
		return cached
	}

	var loc EnrichedLocation

	hit, err := e.kb.SearchEntity(ctx, place, e.language)
	if err != nil {
		logger.Warn("enrich: entity search failed", zap.String("place", place), zap.Error(err))
		return loc
	}
	if hit == nil {
		logger.Info("enrich: no entity match", zap.String("place", place))
		return loc
	}

	label, description := hit.Label, hit.Description
	ld, err := e.kb.QueryLabelDescription(ctx, hit.ID, e.language)
	if err != nil {
		logger.Warn("enrich: label query failed, using search fallback",
			zap.String("entity", hit.ID), zap.Error(err))
	} else if ld != nil {
		label, description = ld.Label, ld.Description
	}
	if label != "" {
		loc.Label = &label
	}
	if description != "" {
		loc.Description = &description
	}

	coordinate, err := e.kb.QueryCoordinate(ctx, hit.ID)
	if err != nil {
		logger.Warn("enrich: coordinate query failed", zap.String("entity", hit.ID), zap.Error(err))
	} else if coordinate != "" {
		loc.Coordinate = &coordinate
	}

	if loc.Label != nil {
		summary, err := e.wiki.Summarize(ctx, *loc.Label, summarySentences)
		if err != nil {
			logger.Warn("enrich: summary lookup failed", zap.String("label", *loc.Label), zap.Error(err))
		} else if summary != "" {
			loc.Summary = &summary
		}
	}

	e.toCache(ctx, place, loc)
	return loc
}

func cacheKey(place string) string { return fmt.Sprintf("location:%s", place) }

func (e *Enricher) fromCache(ctx context.Context, place string) (EnrichedLocation, bool) {
	if e.cache == nil {
		return EnrichedLocation{}, false
	}
	data, err := e.cache.Get(ctx, cacheKey(place)).Bytes()
	if err != nil {
		return EnrichedLocation{}, false
	}
	var loc EnrichedLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return EnrichedLocation{}, false
	}
	return loc, true
}

func (e *Enricher) toCache(ctx context.Context, place string, loc EnrichedLocation) {
	if e.cache == nil {
		return
	}
	payload, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, cacheKey(place), payload, e.cacheTTL).Err(); err != nil {
		logger.Warn("enrich: cache write failed", zap.String("place", place), zap.Error(err))
	}
}
