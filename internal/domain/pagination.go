package domain

// Page is a page-indexed window over a result set, derived from the wire-level
// `from`/`size` pair. The translation is page = from/size with integer
// division, so a `from` that is not a multiple of `size` rounds down to the
// containing page (from=5,size=10 yields page 0). This matches the historical
// paging contract and is kept for wire compatibility.
type Page struct {
	Number int
	Size   int
}

// NewPage translates zero-based offset `from` and page length `size` into a
// Page, rejecting negative offsets and non-positive sizes.
func NewPage(from, size int) (Page, error) {
	if from < 0 || size <= 0 {
		return Page{}, NewValidationError("invalid pagination parameters")
	}
	return Page{Number: from / size, Size: size}, nil
}

// Offset returns the row offset of the page start.
func (p Page) Offset() int { return p.Number * p.Size }

// Limit returns the maximum number of rows in the page.
func (p Page) Limit() int { return p.Size }
