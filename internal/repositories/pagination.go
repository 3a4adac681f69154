package repositories

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page selects one page of a list query. Zero values mean page 1 with DefaultPerPage rows.
type Page struct {
	Page    int `json:"page" query:"page"`
	PerPage int `json:"per_page" query:"per_page"`
}

// Normalize fills defaults and caps PerPage at MaxPerPage.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Limit is the number of rows to return.
func (p Page) Limit() int {
	return p.Normalize().PerPage
}
