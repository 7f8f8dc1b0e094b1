package confluence

// Page is a Confluence content entity (page or comment).
type Page struct {
	ID      string   `json:"id,omitempty"`
	Type    string   `json:"type,omitempty"`
	Status  string   `json:"status,omitempty"`
	Title   string   `json:"title"`
	Space   *Space   `json:"space,omitempty"`
	Version *Version `json:"version,omitempty"`
	Body    *Body    `json:"body,omitempty"`
}

// Space identifies a Confluence space.
type Space struct {
	Key string `json:"key"`
}

// Version is the page version counter; updates must send current+1.
type Version struct {
	Number int `json:"number"`
}

// Body carries the page body in whichever representation the dialect uses.
type Body struct {
	Storage *BodyValue `json:"storage,omitempty"`
	ADF     *BodyValue `json:"atlas_doc_format,omitempty"`
}

// BodyValue is one body representation.
type BodyValue struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// SearchResult is one page of content search results.
type SearchResult struct {
	Results []Page `json:"results"`
	Size    int    `json:"size"`
	Limit   int    `json:"limit"`
}

// User is the authenticated account, used for connectivity checks.
type User struct {
	AccountID    string `json:"accountId,omitempty"`
	Username     string `json:"username,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"email,omitempty"`
}
