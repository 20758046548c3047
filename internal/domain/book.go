package domain

// Book is a catalog entry that memos attach to. The ID comes from the
// external catalog that supplied the book (e.g. a Google Books volume id);
// the server never generates book IDs. Books are written by upsert only -
// a write with an existing ID overwrites every field, including Authors.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Authors       []string `json:"authors"`       // Ordered as supplied
	Thumbnail     string   `json:"thumbnail"`     // Cover image URL
	InfoLink      string   `json:"infoLink"`      // Link back to the catalog page
	PublishedDate string   `json:"publishedDate"` // Free-form, as the catalog reports it
	Source        string   `json:"source"`        // Catalog the book came from, e.g. "google-books"
}
