package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marginaliaapp/marginalia-server/internal/dto"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/search/books",
		Summary:     "Search books",
		Description: "Searches the external book catalog by free-text query",
		Tags:        []string{"Search"},
	}, s.handleSearchBooks)
}

// SearchBooksInput contains the search query parameters.
type SearchBooksInput struct {
	Query string `query:"q" doc:"Free-text search query"`
}

// SearchBooksOutput wraps the search results for Huma.
type SearchBooksOutput struct {
	Body []dto.Book
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	books, err := s.services.Catalog.Search(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &SearchBooksOutput{Body: books}, nil
}
