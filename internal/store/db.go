package store

// Page bounds a list operation. Limit caps the number of returned rows;
// Offset skips that many rows from the start of the ordered result.
type Page struct {
	Limit  int
	Offset int
}

// DefaultPageLimit applies when a caller requests a non-positive limit.
const DefaultPageLimit = 50

// MaxPageLimit caps a single page regardless of what the caller asks for.
const MaxPageLimit = 500

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
