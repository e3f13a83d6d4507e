package pdf

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tanmayhire99/finrag/internal/core/domain"
)

// PageStat summarises one sampled page for classification.
type PageStat struct {
	// Chars is the trimmed text-layer length of the page.
	Chars int

	// Images is the number of image XObjects on the page.
	Images int
}

// ClassifyStats decides native versus scanned from sampled page stats.
// A document is scanned when the sampled pages average fewer than
// MinCharsPerPage characters while carrying at least one image: little
// text plus pictures means the content lives in the pictures. An empty
// sample means nothing could be inspected and defaults to scanned.
func ClassifyStats(stats []PageStat, cfg Config) domain.PDFKind {
	if len(stats) == 0 {
		return domain.PDFScanned
	}

	totalChars, totalImages := 0, 0
	for _, s := range stats {
		totalChars += s.Chars
		totalImages += s.Images
	}

	avgChars := float64(totalChars) / float64(len(stats))
	avgImages := float64(totalImages) / float64(len(stats))

	if avgChars < float64(cfg.MinCharsPerPage) && avgImages > 0 {
		return domain.PDFScanned
	}
	return domain.PDFNative
}

// readPageStats samples up to maxPages leading pages.
func readPageStats(path string, maxPages int) ([]PageStat, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := r.NumPage()
	if n > maxPages {
		n = maxPages
	}

	stats := make([]PageStat, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		stats = append(stats, PageStat{
			Chars:  len(strings.TrimSpace(text)),
			Images: countImages(page),
		})
	}
	return stats, nil
}

// countImages walks the page's XObject resources counting images.
func countImages(page pdf.Page) int {
	xobjects := page.V.Key("Resources").Key("XObject")
	if xobjects.Kind() != pdf.Dict {
		return 0
	}

	count := 0
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			count++
		}
	}
	return count
}
