package raindrop

// Wire shapes as returned by the service API. Field names are part of
// the external contract; see the mapper for conversion to domain types.

type collectionItem struct {
	ID     int64  `json:"_id"`
	Title  string `json:"title"`
	Parent struct {
		ID int64 `json:"$id"`
	} `json:"parent"`
}

type collectionsResponse struct {
	Result bool             `json:"result"`
	Items  []collectionItem `json:"items"`
}

type highlightItem struct {
	Text    string `json:"text"`
	Note    string `json:"note"`
	Color   string `json:"color"`
	Created string `json:"created"`
}

type raindropItem struct {
	ID         int64    `json:"_id"`
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Note       string   `json:"note"`
	Link       string   `json:"link"`
	Cover      string   `json:"cover"`
	Created    string   `json:"created"`
	LastUpdate string   `json:"lastUpdate"`
	Tags       []string `json:"tags"`
	Type       string   `json:"type"`
	Collection struct {
		ID    int64  `json:"$id"`
		Title string `json:"title"`
	} `json:"collection"`
	Highlights []highlightItem `json:"highlights"`
}

type raindropsResponse struct {
	Result bool           `json:"result"`
	Items  []raindropItem `json:"items"`
	Count  int            `json:"count"`
}
