package domain

// Collection is the normalized result of every list operation.
// Page is nil when the endpoint is not paginated.
type Collection[T any] struct {
	Items []T
	Page  *PageInfo
}

func (c Collection[T]) Len() int { return len(c.Items) }

type PageInfo struct {
	CurrentPage int       `json:"current_page"`
	LastPage    int       `json:"last_page"`
	PerPage     int       `json:"per_page"`
	Total       int       `json:"total"`
	From        int       `json:"from"`
	To          int       `json:"to"`
	Links       PageLinks `json:"links"`
}

func (p PageInfo) HasNext() bool { return p.CurrentPage < p.LastPage }

type PageLinks struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

// PageRequest holds optional pagination parameters; zero values are not sent.
type PageRequest struct {
	Page    int
	PerPage int
}
