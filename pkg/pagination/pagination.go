package pagination

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds limit/offset paging parameters for a listing.
type Params struct {
	Limit  int
	Offset int
}

// New normalizes raw limit and offset values: a non-positive limit becomes
// DefaultLimit, limits above MaxLimit are capped and negative offsets become 0.
func New(limit, offset int) Params {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}

// Page is one window over a listing.
type Page[T any] struct {
	Items   []T
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// Slice returns the page of items selected by p.
func Slice[T any](items []T, p Params) Page[T] {
	start, end := p.Bounds(len(items))
	return Page[T]{
		Items:   items[start:end],
		Total:   len(items),
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.HasNext(len(items)),
	}
}

// Bounds returns the half-open index range [start, end) of the page within a
// listing of total elements.
func (p Params) Bounds(total int) (start, end int) {
	start = p.Offset
	if start > total {
		start = total
	}
	end = start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Offset > 0
}

// NextOffset returns the offset for the next page.
func (p Params) NextOffset() int {
	return p.Offset + p.Limit
}

// PreviousOffset returns the offset for the previous page.
// Returns 0 if the result would be negative.
func (p Params) PreviousOffset() int {
	prev := p.Offset - p.Limit
	if prev < 0 {
		return 0
	}
	return prev
}
