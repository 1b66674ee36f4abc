package retrieve

import "github.com/fwojciec/passage"

// Result assembly limits.
const (
	// DiversityThreshold is the result count after which further chunks
	// from an already represented page are suppressed.
	DiversityThreshold = 6

	// SnippetSize is the snippet length in characters.
	SnippetSize = 700

	// TitleSeparator joins a page title and a chunk subheading.
	TitleSeparator = " › "
)

// Assemble maps selected chunk indices, in selection order, to results.
// Below DiversityThreshold results a page may repeat; from then on chunks
// whose page url already appeared are skipped. At most topK results are
// returned.
func Assemble(snap *Snapshot, indices []int, topK int) []*passage.Result {
	results := make([]*passage.Result, 0, min(topK, len(indices)))
	seen := make(map[string]bool)
	for _, idx := range indices {
		if len(results) >= topK {
			break
		}
		chunk := snap.Chunks[idx]
		if len(results) >= DiversityThreshold && seen[chunk.PageURL] {
			continue
		}
		seen[chunk.PageURL] = true
		results = append(results, &passage.Result{
			URL:     chunk.PageURL,
			Title:   ResultTitle(chunk),
			Snippet: passage.Truncate(chunk.Text, SnippetSize),
		})
	}
	return results
}

// ResultTitle returns the page title, joined with the subheading when the
// chunk has one.
func ResultTitle(chunk *passage.Chunk) string {
	if chunk.Subhead == "" {
		return chunk.PageTitle
	}
	return chunk.PageTitle + TitleSeparator + chunk.Subhead
}
