package services

import (
	"fmt"
	"strings"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

// The extractor treats LLM output as a serialization format: a stream
// of tagged lines parsed into entity and relation variants. The model
// is never trusted to emit valid structure, so the parser is defensive
// and drops anything it does not recognise.

// entityTag is one parsed [ENTITY: ...] line.
type entityTag struct {
	name        string
	typ         domain.EntityType
	description string
}

// relationTag is one parsed [RELATE: ...] line.
type relationTag struct {
	source   string
	relation string
	target   string
}

// parsedTags is the result of scanning one batch of LLM output.
type parsedTags struct {
	entities  []entityTag
	relations []relationTag
}

// typeAliases maps the spellings models actually emit onto the closed
// entity type set.
var typeAliases = map[string]domain.EntityType{
	"person":       domain.EntityPerson,
	"org":          domain.EntityOrg,
	"organization": domain.EntityOrg,
	"organisation": domain.EntityOrg,
	"company":      domain.EntityOrg,
	"program":      domain.EntityProgram,
	"tool":         domain.EntityTool,
	"concept":      domain.EntityConcept,
	"location":     domain.EntityLocation,
	"place":        domain.EntityLocation,
}

// defaultExtractionHeader is the fallback instruction header when no
// PromptStore is configured.
const defaultExtractionHeader = `Extract entities and relationships from the facts below.

Output rules:
- One tag per line, no prose, no explanations.
- Entity tag: [ENTITY: name | TYPE: type | DESC: short description]
- TYPE must be one of: person, org, program, tool, concept, location
- Relationship tag: [RELATE: source -> relationship -> target]
- relationship is a short lowercase verb phrase, e.g. created, manages
- Extract only what the facts explicitly state. Do not infer.
- Use the same name for the same entity across all facts.`

// buildExtractionPrompt appends the numbered fact list to the
// instruction header.
func buildExtractionPrompt(header string, facts []string) string {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString("\n\nFacts:\n")

	for i, fact := range facts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, fact)
	}

	return b.String()
}

// parseExtraction scans LLM output line by line for the two tag shapes.
// Malformed or unrecognised lines are silently dropped: failing to tag
// a fact is not an error condition.
func parseExtraction(output string) parsedTags {
	var tags parsedTags

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "[ENTITY:") && strings.HasSuffix(line, "]"):
			if tag, ok := parseEntityTag(line); ok {
				tags.entities = append(tags.entities, tag)
			}
		case strings.HasPrefix(line, "[RELATE:") && strings.HasSuffix(line, "]"):
			if tag, ok := parseRelationTag(line); ok {
				tags.relations = append(tags.relations, tag)
			}
		}
	}

	return tags
}

// parseEntityTag parses "[ENTITY: name | TYPE: t | DESC: d]".
// DESC is optional; an unknown TYPE degrades to concept.
func parseEntityTag(line string) (entityTag, bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(line, "[ENTITY:"), "]")
	parts := strings.Split(body, "|")

	tag := entityTag{
		name: strings.TrimSpace(parts[0]),
		typ:  domain.EntityConcept,
	}
	if tag.name == "" {
		return entityTag{}, false
	}

	for _, part := range parts[1:] {
		key, value, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "TYPE":
			if typ, ok := typeAliases[strings.ToLower(value)]; ok {
				tag.typ = typ
			}
		case "DESC":
			tag.description = value
		}
	}

	return tag, true
}

// parseRelationTag parses "[RELATE: source -> relationship -> target]".
func parseRelationTag(line string) (relationTag, bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(line, "[RELATE:"), "]")
	parts := strings.Split(body, "->")
	if len(parts) != 3 {
		return relationTag{}, false
	}

	tag := relationTag{
		source:   strings.TrimSpace(parts[0]),
		relation: strings.ToLower(strings.TrimSpace(parts[1])),
		target:   strings.TrimSpace(parts[2]),
	}
	if tag.source == "" || tag.relation == "" || tag.target == "" {
		return relationTag{}, false
	}

	return tag, true
}
