package rag

import (
	"context"
	"strings"

	"notebook-ai/internal/contextutil"
)

const maxSubQueries = 3

// generateSubQueries asks the text-generation capability to decompose the
// question into differently-angled search queries. Any failure, empty output
// or malformed reply falls back to the original question; retrieval is never
// blocked on this step.
func (e *engine) generateSubQueries(ctx context.Context, question string) []string {
	fallback := []string{question}
	if e.generator == nil {
		return fallback
	}

	logger := contextutil.LoggerFromContext(ctx)

	prompt := "Decompose the following question into 2-3 short search queries that " +
		"approach it from different angles. Reply with one query per line and " +
		"nothing else.\n\nQuestion: " + question

	reply, err := e.generator.GenerateText(ctx, prompt)
	if err != nil {
		logger.WarnContext(ctx, "sub-query generation failed, using original question", "error", err)
		return fallback
	}

	queries := parseSubQueries(reply)
	if len(queries) == 0 {
		logger.WarnContext(ctx, "sub-query generation returned nothing usable, using original question")
		return fallback
	}
	return queries
}

// parseSubQueries extracts queries from a model reply, tolerating bullets,
// numbering and surrounding quotes.
func parseSubQueries(reply string) []string {
	var queries []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		// Strip "1." / "2)" style numbering
		if len(line) > 1 && line[0] >= '0' && line[0] <= '9' {
			rest := strings.TrimLeft(line, "0123456789")
			if strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, ")") {
				line = rest[1:]
			}
		}
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		if line == "" {
			continue
		}
		queries = append(queries, line)
		if len(queries) == maxSubQueries {
			break
		}
	}
	return queries
}

// contextSufficient asks the judge a strict yes/no question about the
// assembled context. Any judge failure or ambiguous reply counts as
// sufficient so the check can never lose context that is already assembled.
func (e *engine) contextSufficient(ctx context.Context, question, contextText string) bool {
	if e.generator == nil {
		return true
	}

	logger := contextutil.LoggerFromContext(ctx)

	prompt := "Context:\n" + contextText + "\n\nQuestion: " + question +
		"\n\nIs the context above sufficient to answer the question? Reply with exactly \"yes\" or \"no\"."

	reply, err := e.generator.GenerateText(ctx, prompt)
	if err != nil {
		logger.WarnContext(ctx, "sufficiency check failed, keeping current context", "error", err)
		return true
	}

	answer := strings.ToLower(strings.TrimSpace(reply))
	return !strings.HasPrefix(answer, "no")
}
