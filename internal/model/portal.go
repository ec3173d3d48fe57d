package model

import "time"

// Portal is a saved job board: a free-text category label and a link
// (domain or URL fragment) owned by exactly one user. Categories are not
// stored separately; grouping is by string equality on Category.
type Portal struct {
	ID        uint64     `json:"id"`
	Category  string     `json:"category"`
	Link      string     `json:"link"`
	UserID    uint64     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// PortalPatch carries a partial update. Nil fields are left unchanged.
type PortalPatch struct {
	Category *string
	Link     *string
}

// Empty reports whether the patch changes no field.
func (p PortalPatch) Empty() bool { return p.Category == nil && p.Link == nil }

// DefaultPortals is the starter set installed by a reset.
var DefaultPortals = []Portal{
	{Category: "QA", Link: "indeed.com"},
	{Category: "QA", Link: "linkedin.com"},
	{Category: "Dev", Link: "stackoverflow.com/jobs"},
	{Category: "Dev", Link: "github.com/jobs"},
}
