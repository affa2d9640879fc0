package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
	"github.com/mnemo-labs/mnemo-cli/internal/logger"
)

// Ensure GraphService implements the interfaces.
var (
	_ driving.GraphService    = (*GraphService)(nil)
	_ driven.PromptStoreAware = (*GraphService)(nil)
)

// DefaultExtractBatch is the number of facts per LLM call.
const DefaultExtractBatch = 20

// extractMaxTokens bounds the LLM completion per batch.
const extractMaxTokens = 1500

// GraphService turns unstructured fact strings into deduplicated
// entities and edges via a Tag -> Parse -> Resolve -> Persist pipeline.
type GraphService struct {
	graph       driven.GraphStore
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewGraphService creates a new graph extraction service.
func NewGraphService(graph driven.GraphStore, llm driven.LLMService) *GraphService {
	return &GraphService{
		graph: graph,
		llm:   llm,
	}
}

// Extract processes facts in bounded batches. An LLM failure skips that
// batch only; the run continues and reports aggregate counts.
func (s *GraphService) Extract(ctx context.Context, facts []string, opts driving.ExtractOptions) (*driving.ExtractReport, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("extract: %w", domain.ErrLLMUnavailable)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultExtractBatch
	}

	logger.Section("Graph Extraction")
	report := &driving.ExtractReport{}

	for start := 0; start < len(facts); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(facts) {
			end = len(facts)
		}
		batch := facts[start:end]

		prompt := buildExtractionPrompt(s.extractionHeader(), batch)
		output, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   extractMaxTokens,
			Temperature: 0,
		})
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Warn("Extraction batch %d-%d failed: %v", start, end, err)
			report.BatchesFailed++
			continue
		}

		tags := parseExtraction(output)
		report.FactsProcessed += len(batch)
		logger.Debug("Batch %d-%d: %d entity tags, %d relation tags",
			start, end, len(tags.entities), len(tags.relations))

		if opts.DryRun {
			report.EntitiesResolved += len(tags.entities)
			report.EdgesUpserted += len(tags.relations)
			continue
		}

		s.persist(ctx, tags, report)
	}

	logger.Info("Extraction done: %d facts, %d entities, %d edges, %d failed batches",
		report.FactsProcessed, report.EntitiesResolved, report.EdgesUpserted, report.BatchesFailed)
	return report, nil
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses the hardcoded default prompt.
func (s *GraphService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// extractionHeader loads the instruction header, falling back to the
// embedded default when no store is configured or loading fails.
func (s *GraphService) extractionHeader() string {
	if s.promptStore == nil {
		return defaultExtractionHeader
	}
	header, err := s.promptStore.Load(driven.PromptGraphExtract)
	if err != nil {
		return defaultExtractionHeader
	}
	return header
}

// persist resolves entity tags and upserts relation edges. Individual
// store failures are logged and skipped.
func (s *GraphService) persist(ctx context.Context, tags parsedTags, report *driving.ExtractReport) {
	for _, tag := range tags.entities {
		if _, err := s.graph.ResolveEntity(ctx, tag.name, tag.typ, tag.description); err != nil {
			logger.Warn("Resolve entity %q failed: %v", tag.name, err)
			continue
		}
		report.EntitiesResolved++
	}

	for _, tag := range tags.relations {
		// Endpoints may not have their own entity tag; create them
		// lazily as bare concepts.
		source, err := s.graph.ResolveEntity(ctx, tag.source, domain.EntityConcept, "")
		if err != nil {
			logger.Warn("Resolve edge source %q failed: %v", tag.source, err)
			continue
		}
		target, err := s.graph.ResolveEntity(ctx, tag.target, domain.EntityConcept, "")
		if err != nil {
			logger.Warn("Resolve edge target %q failed: %v", tag.target, err)
			continue
		}
		if err := s.graph.UpsertEdge(ctx, source.ID, target.ID, tag.relation); err != nil {
			logger.Warn("Upsert edge %q -> %q failed: %v", tag.source, tag.target, err)
			continue
		}
		report.EdgesUpserted++
	}
}

// Neighbors returns an entity with its incident edges, looked up by
// case-insensitive name.
func (s *GraphService) Neighbors(ctx context.Context, name string) (*domain.EntityNeighborhood, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("neighbors: missing name: %w", domain.ErrInvalidInput)
	}

	entity, err := s.graph.GetEntityByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("neighbors: %w", err)
	}

	outgoing, err := s.graph.EdgesFrom(ctx, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("neighbors: outgoing edges: %w", err)
	}
	incoming, err := s.graph.EdgesTo(ctx, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("neighbors: incoming edges: %w", err)
	}

	return &domain.EntityNeighborhood{
		Entity:   *entity,
		Outgoing: outgoing,
		Incoming: incoming,
	}, nil
}
