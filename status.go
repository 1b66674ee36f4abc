package passage

import "time"

// Status describes the live corpus.
type Status struct {
	Pages       int       `json:"pages"`
	Chunks      int       `json:"chunks"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// StatusService reports on the live corpus without triggering a refresh.
type StatusService interface {
	Status() Status
}
