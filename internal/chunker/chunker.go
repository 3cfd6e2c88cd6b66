package chunker

import (
	"strings"
	"unicode"
)

const (
	// DefaultChunkSize is the target chunk size in estimated tokens.
	DefaultChunkSize = 500
	// DefaultOverlap is the target overlap between consecutive chunks in estimated tokens.
	DefaultOverlap = 100

	// charsPerToken is the cheap token estimate used throughout: one token per
	// four characters. Not a real tokenizer, but deterministic and close
	// enough for sizing chunks against embedding model context windows.
	charsPerToken = 4
)

// Chunk is a bounded passage of a source document, the atomic unit of retrieval.
type Chunk struct {
	// Index is the chunk's position within its source, starting at 0 and
	// strictly increasing in document order.
	Index int
	// Text is the chunk content.
	Text string
	// TokenCount is the estimated token count (ceil of length/4).
	TokenCount int
	// PageNumber is the 1-based page the chunk came from, 0 when unknown.
	PageNumber int
}

// Options control chunk sizing. Zero values fall back to the defaults.
type Options struct {
	// ChunkSize is the target chunk size in estimated tokens.
	ChunkSize int
	// Overlap is the number of estimated tokens of trailing context carried
	// into the next chunk.
	Overlap int
}

// Split breaks text into overlapping, token-budgeted chunks.
//
// Sentences are detected on punctuation boundaries (period, question mark or
// exclamation mark followed by whitespace) and accumulated into a running
// window. When the window reaches the chunk size it is emitted and the next
// window is seeded with the trailing sentences that fit the overlap budget,
// so consecutive chunks share context. A single sentence longer than the
// target size becomes its own oversized chunk; sentences are never split
// mid-way. Empty or whitespace-only input yields no chunks.
func Split(text string, opts Options) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	overlap := opts.Overlap
	if overlap < 0 {
		overlap = 0
	}

	maxChars := chunkSize * charsPerToken
	overlapChars := overlap * charsPerToken

	sentences := splitSentences(text)

	var chunks []Chunk
	var window []string
	windowLen := 0

	flush := func() {
		content := strings.TrimSpace(strings.Join(window, " "))
		if content == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Text:       content,
			TokenCount: estimateTokens(content),
		})
	}

	// fresh tracks whether the window holds anything beyond carried overlap,
	// so a trailing window of pure overlap is not re-emitted.
	fresh := false

	for _, sentence := range sentences {
		window = append(window, sentence)
		windowLen += len(sentence)
		fresh = true

		if windowLen >= maxChars {
			flush()

			// Seed the next window with trailing sentences within the
			// overlap budget so context carries across the boundary.
			var carry []string
			carryLen := 0
			for i := len(window) - 1; i >= 0; i-- {
				if carryLen+len(window[i]) > overlapChars {
					break
				}
				carry = append([]string{window[i]}, carry...)
				carryLen += len(window[i])
			}
			window = carry
			windowLen = carryLen
			fresh = false
		}
	}

	if fresh && windowLen > 0 {
		flush()
	}

	return chunks
}

// splitSentences splits text on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		// Boundary only when followed by whitespace or end of input
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

// estimateTokens returns ceil(len/4), the token proxy used for chunk budgets.
func estimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}
