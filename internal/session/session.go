package session

// Info is the value stored in the coordination store under a connection
// code. The token is the bearer capability for presenter-only operations;
// it never changes for the life of the session.
type Info struct {
	Token     string `json:"token"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds, informational
}

// PresentationState is keyed by token, not by connection code, so viewers
// can only reach it through a session lookup.
type PresentationState struct {
	TotalPages  uint64 `json:"totalPages"`
	CurrentPage uint64 `json:"currentPage"`
	UpdateTime  int64  `json:"updateTime"` // unix milliseconds, set on every write
}
