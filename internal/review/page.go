package review

// PageState tracks pagination for one remote listing. Views that fetch the
// same list share a single instance by pointer; nothing about it is ambient
// package state, so two independent listings never fight over a page number.
type PageState struct {
	page    int
	perPage int
	total   int
}

// NewPageState starts at page 1.
func NewPageState(perPage int) *PageState {
	if perPage < 1 {
		perPage = 1
	}
	return &PageState{page: 1, perPage: perPage}
}

func (p *PageState) Page() int    { return p.page }
func (p *PageState) PerPage() int { return p.perPage }
func (p *PageState) Total() int   { return p.total }

// Offset is what the remote list call expects for the current page.
func (p *PageState) Offset() int {
	return p.perPage * (p.page - 1)
}

// Pages is the page count for the current total, at least 1.
func (p *PageState) Pages() int {
	if p.total <= 0 {
		return 1
	}
	n := (p.total + p.perPage - 1) / p.perPage
	if n < 1 {
		return 1
	}
	return n
}

// SetTotal records the server-reported match count and clamps the current
// page back into range, e.g. after a delete empties the last page.
func (p *PageState) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	if p.page > p.Pages() {
		p.page = p.Pages()
	}
}

// Reset returns to page 1 without touching the total.
func (p *PageState) Reset() {
	p.page = 1
}

// Next advances one page and reports whether it moved.
func (p *PageState) Next() bool {
	if p.page >= p.Pages() {
		return false
	}
	p.page++
	return true
}

// Prev goes back one page and reports whether it moved.
func (p *PageState) Prev() bool {
	if p.page <= 1 {
		return false
	}
	p.page--
	return true
}
