package ingest

import "strings"

const (
	// DefaultChunkSize is the target chunk length in runes.
	DefaultChunkSize = 1200

	// DefaultChunkOverlap is how many runes consecutive window chunks share
	// when a single paragraph has to be split.
	DefaultChunkOverlap = 200
)

// Chunk splits document text into retrieval-sized pieces. Paragraph
// boundaries are preferred: whole paragraphs are packed into chunks up to
// the size limit, and only a paragraph that alone exceeds the limit is cut
// with a sliding window, overlapping so no sentence is lost at a cut point.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
		curLen = 0
	}

	for _, para := range splitParagraphs(text) {
		n := len([]rune(para))
		switch {
		case n > size:
			flush()
			chunks = append(chunks, slide(para, size, overlap)...)
		case curLen > 0 && curLen+2+n > size:
			flush()
			cur.WriteString(para)
			curLen = n
		default:
			if curLen > 0 {
				cur.WriteString("\n\n")
				curLen += 2
			}
			cur.WriteString(para)
			curLen += n
		}
	}
	flush()

	return chunks
}

func splitParagraphs(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	paras := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// slide cuts an oversized paragraph into overlapping windows.
func slide(para string, size, overlap int) []string {
	runes := []rune(para)
	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			chunks = append(chunks, s)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
