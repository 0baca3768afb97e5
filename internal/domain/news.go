package domain

const (
	NewsTypeYouTube = "youtube"
	NewsTypeLink    = "link"
)

// NewsItem is an announcement record. UpdatedAt/CreatedAt are timestamps in
// whatever ISO-like form the producer used.
type NewsItem struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Link      string `json:"link,omitempty"`
	Type      string `json:"type,omitempty"`
	IsPinned  bool   `json:"isPinned,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Source    string `json:"source,omitempty"` // feed name or "service"
}

// Freshness is UpdatedAt, falling back to CreatedAt.
func (n NewsItem) Freshness() string {
	if n.UpdatedAt != "" {
		return n.UpdatedAt
	}
	return n.CreatedAt
}
