// Package models defines the domain types for Laguz.
package models

// Content types assigned by the bookmarking service. A bookmark always
// carries one of these; unrecognized values fall back to the default
// template downstream.
const (
	TypeLink     = "link"
	TypeArticle  = "article"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeDocument = "document"
	TypeAudio    = "audio"
)

// ContentTypes lists every known content type in a stable order.
var ContentTypes = []string{TypeLink, TypeArticle, TypeImage, TypeVideo, TypeDocument, TypeAudio}

// Bookmark is one saved record from the bookmarking service.
// Timestamps are kept as the ISO 8601 strings the API returned; the
// rendering pipeline does no date math except in the file-name builder.
type Bookmark struct {
	ID         int64
	Title      string
	Excerpt    string
	Note       string
	Link       string
	Cover      string
	Created    string
	LastUpdate string
	Tags       []string
	Type       string
	Collection *CollectionRef
	Highlights []Highlight
}

// CollectionRef is the bookmark's owning-collection reference.
type CollectionRef struct {
	ID    int64
	Title string
}

// Highlight is one highlighted passage attached to a bookmark.
type Highlight struct {
	Text    string
	Note    string
	Color   string
	Created string
}

// Collection is one node of the service's collection forest.
// Parent is 0 for root collections.
type Collection struct {
	ID     int64
	Title  string
	Parent int64
}
