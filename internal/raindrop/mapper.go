package raindrop

import "github.com/starford/laguz/internal/models"

// mapBookmark converts a wire item to the domain record. Unrecognized
// content types are passed through untouched; template selection treats
// them as "use the default template".
func mapBookmark(it raindropItem) models.Bookmark {
	bm := models.Bookmark{
		ID:         it.ID,
		Title:      it.Title,
		Excerpt:    it.Excerpt,
		Note:       it.Note,
		Link:       it.Link,
		Cover:      it.Cover,
		Created:    it.Created,
		LastUpdate: it.LastUpdate,
		Tags:       it.Tags,
		Type:       it.Type,
	}
	if it.Collection.ID != 0 {
		bm.Collection = &models.CollectionRef{
			ID:    it.Collection.ID,
			Title: it.Collection.Title,
		}
	}
	if len(it.Highlights) > 0 {
		bm.Highlights = make([]models.Highlight, len(it.Highlights))
		for i, h := range it.Highlights {
			bm.Highlights[i] = models.Highlight{
				Text:    h.Text,
				Note:    h.Note,
				Color:   h.Color,
				Created: h.Created,
			}
		}
	}
	return bm
}

func mapCollection(it collectionItem) models.Collection {
	return models.Collection{
		ID:     it.ID,
		Title:  it.Title,
		Parent: it.Parent.ID,
	}
}
