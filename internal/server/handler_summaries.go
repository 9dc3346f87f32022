package server

import (
	"net/http"

	"github.com/abhibongale/presto/pkg/model"
)

// handleListArchivedSummaries lists finalized summaries from the store,
// filterable by ?state= and paginated by ?limit=/?offset=.
func (s *Server) handleListArchivedSummaries(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if s.store == nil {
		respondError(w, reqID, http.StatusNotImplemented,
			&model.APIError{Code: model.ErrInternal, Message: "summary store is disabled"})
		return
	}

	opts := listOptionsFromQuery(r)
	records, total, err := s.store.ListSummaries(r.Context(), opts)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: err.Error()})
		return
	}

	respondList(w, reqID, records, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(records) < total,
	})
}
