package usecase

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// localTextSummary is the deterministic stand-in served when the AI backend
// is unavailable. It never carries the failure marker, so callers can tell
// a degraded-but-served reply from a hard failure.
func localTextSummary(text string) string {
	words := strings.Fields(text)

	longest := ""
	seen := make(map[string]struct{}, len(words))
	var distinct []string
	for _, w := range words {
		if len(w) > len(longest) {
			longest = w
		}
		key := strings.ToLower(w)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			distinct = append(distinct, w)
		}
	}
	const sampleMax = 8
	sample := distinct
	if len(sample) > sampleMax {
		sample = sample[:sampleMax]
	}

	var b strings.Builder
	b.WriteString("📊 Analisis Teks (mode offline)\n\n")
	fmt.Fprintf(&b, "• Jumlah karakter: %d\n", len([]rune(text)))
	fmt.Fprintf(&b, "• Jumlah kata: %d\n", len(words))
	if longest != "" {
		fmt.Fprintf(&b, "• Kata terpanjang: %s\n", longest)
	}
	if len(sample) > 0 {
		fmt.Fprintf(&b, "• Contoh kata unik: %s\n", strings.Join(sample, ", "))
	}
	if n, ok := tokenCount(text); ok {
		fmt.Fprintf(&b, "• Perkiraan token: %d\n", n)
	}
	b.WriteString("\nAI sedang tidak tersedia; ini ringkasan statistik lokal.")
	return b.String()
}

// tokenCount is best-effort: the encoding may need a one-time download, so
// failure just drops the line from the summary.
func tokenCount(text string) (int, bool) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return 0, false
	}
	return len(enc.Encode(text, nil, nil)), true
}
