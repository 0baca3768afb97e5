package domain

// Source values the data service uses for where a posting came from.
const (
	SourceOnline    = "online"
	SourceNewspaper = "newspaper"
)

// Job is a raw posting as delivered by the data service. Tier and Source are
// free text; dates are ISO-like strings compared lexically.
type Job struct {
	ID            string `json:"id"`
	Company       string `json:"company,omitempty"`
	Title         string `json:"title,omitempty"`
	Tier          string `json:"tier,omitempty"`
	Source        string `json:"source,omitempty"`
	Featured      bool   `json:"featured,omitempty"`
	PostedDate    string `json:"postedDate,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	Location      string `json:"location,omitempty"`
	URL           string `json:"url,omitempty"`
}

// SortDate is the date used when ranking postings of the same company:
// PostedDate, falling back to PublishedDate.
func (j Job) SortDate() string {
	if j.PostedDate != "" {
		return j.PostedDate
	}
	return j.PublishedDate
}
