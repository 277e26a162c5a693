package graphqlapi

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
)

// Handler serves POST /graphql with the standard GraphQL response shape.
type Handler struct {
	schema graphql.Schema
	logger *zerolog.Logger
}

// NewHandler builds the schema and returns the HTTP handler for it.
func NewHandler(resolvers *Resolvers, logger *zerolog.Logger) (*Handler, error) {
	schema, err := NewSchema(resolvers)
	if err != nil {
		return nil, err
	}

	return &Handler{
		schema: schema,
		logger: logger,
	}, nil
}

type graphqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": "invalid request body"}},
		})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode graphql response")
	}
}
