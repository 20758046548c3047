package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/marginaliaapp/marginalia-server/internal/dto"
)

const (
	volumesBaseURL = "https://www.googleapis.com/books/v1/volumes"

	// SourceName tags every result with the catalog it came from.
	SourceName = "google-books"

	// MaxResultsCap is the largest page the volumes API serves.
	MaxResultsCap = 40
)

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Description         string               `json:"description"`
	PublishedDate       string               `json:"publishedDate"`
	InfoLink            string               `json:"infoLink"`
	CanonicalVolumeLink string               `json:"canonicalVolumeLink"`
	ImageLinks          imageLinks           `json:"imageLinks"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Search queries the volumes API and maps the results to books. maxResults
// is clamped to the API's page cap; values below 1 fall back to the API
// default.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]dto.Book, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("printType", "books")
	if maxResults > MaxResultsCap {
		maxResults = MaxResultsCap
	}
	if maxResults > 0 {
		params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("searching book catalog",
		"query", query,
		"max_results", maxResults,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var volumesResp volumesResponse
	if err := json.UnmarshalRead(resp.Body, &volumesResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("book catalog results",
		"query", query,
		"count", len(volumesResp.Items),
	)

	results := make([]dto.Book, 0, len(volumesResp.Items))
	for i := range volumesResp.Items {
		results = append(results, mapVolume(&volumesResp.Items[i]))
	}

	return results, nil
}

// mapVolume converts an API volume to the book shape clients consume.
// Every result must carry a stable non-empty ID: the volume id wins, then
// the first industry identifier, then a generated UUID as a last resort.
func mapVolume(v *volume) dto.Book {
	info := v.VolumeInfo

	id := v.ID
	if id == "" && len(info.IndustryIdentifiers) > 0 {
		id = info.IndustryIdentifiers[0].Identifier
	}
	if id == "" {
		id = uuid.NewString()
	}

	title := info.Title
	if title == "" {
		title = "Untitled"
	}

	thumbnail := info.ImageLinks.Thumbnail
	if thumbnail == "" {
		thumbnail = info.ImageLinks.SmallThumbnail
	}

	infoLink := info.InfoLink
	if infoLink == "" {
		infoLink = info.CanonicalVolumeLink
	}

	return dto.Book{
		ID:            id,
		Title:         title,
		Description:   info.Description,
		Authors:       info.Authors,
		Thumbnail:     thumbnail,
		InfoLink:      infoLink,
		PublishedDate: info.PublishedDate,
		Source:        SourceName,
	}
}
