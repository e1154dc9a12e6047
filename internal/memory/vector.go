package memory

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CosineDistance returns the cosine distance between a and b in [0, 2]
// (0 = identical direction). A zero-norm vector has no direction, so the
// distance degenerates to 1 (similarity 0).
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// SimilarityFromDistance converts a cosine distance to a similarity score
// in [0, 1]: max(1 - distance, 0).
func SimilarityFromDistance(distance float64) float64 {
	return math.Max(1-distance, 0)
}

// EncodeVector renders a vector as "[v1,v2,...]" for storage in a text
// column. The format round-trips float32 values through ParseVector.
func EncodeVector(v []float32) string {
	var buf strings.Builder
	buf.Grow(len(v)*10 + 2)
	buf.WriteByte('[')
	for i, val := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 32))
	}
	buf.WriteByte(']')
	return buf.String()
}

// ParseVector parses the "[v1,v2,...]" text representation produced by
// EncodeVector (whitespace between elements is tolerated).
func ParseVector(s string) ([]float32, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, fmt.Errorf("invalid vector format (missing brackets): %q", trimmed)
	}

	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if inner == "" {
		return nil, fmt.Errorf("parsed vector is empty")
	}

	parts := strings.Split(inner, ",")
	vec := make([]float32, 0, len(parts))
	for _, tok := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(tok), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector element %q: %w", tok, err)
		}
		vec = append(vec, float32(f))
	}

	return vec, nil
}
