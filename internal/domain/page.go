package domain

// Page is one node of the navigation tree.
type Page struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ParentID string `json:"parentId,omitempty"`
	NeedsDB  bool   `json:"needsDb"`
}

// PageView is what the shell hands to the frontend after navigation.
type PageView struct {
	Page        Page   `json:"page"`
	Placeholder string `json:"placeholder,omitempty"`
	Rows        []Row  `json:"rows,omitempty"`
	Error       string `json:"error,omitempty"`
}
