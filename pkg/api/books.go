package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/adfharrison1/bookreport/pkg/domain"
)

// pagingParams are query parameters that are not field filters
var pagingParams = map[string]bool{"page": true, "size": true, "sort": true}

// typedFields are book fields stored as numbers or booleans; query values
// for every other field stay strings
var typedFields = map[string]bool{
	domain.FieldPublishedYear: true,
	domain.FieldPrice:         true,
	domain.FieldPages:         true,
	domain.FieldInStock:       true,
}

// HandleFindBooks handles GET /books. Every query parameter other than
// page, size and sort is an equality filter; values of numeric and boolean
// book fields are converted. sort names a field, with a leading '-' for descending.
func (h *Handler) HandleFindBooks(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	var filter domain.Filter
	for key, values := range queryParams {
		if pagingParams[key] || len(values) == 0 {
			continue
		}
		filter = append(filter, domain.Eq(key, parseQueryValue(key, values[0])))
	}

	page, err := intParam(queryParams.Get("page"), 1)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	size, err := intParam(queryParams.Get("size"), domain.DefaultPaginationOptions().Limit)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "size must be an integer")
		return
	}
	pagination := domain.Page(page, size)
	if err := pagination.Validate(); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sort []domain.SortKey
	if s := queryParams.Get("sort"); s != "" {
		if s[0] == '-' {
			sort = append(sort, domain.Desc(s[1:]))
		} else {
			sort = append(sort, domain.Asc(s))
		}
	}

	docs, err := h.coll().Find(r.Context(), filter, pagination.FindOptions(sort...))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidFilter) || errors.Is(err, domain.ErrInvalidOptions) {
			status = http.StatusBadRequest
		}
		h.logger.Errorf("Find on '%s' failed: %v", h.collection, err)
		WriteJSONError(w, status, err.Error())
		return
	}

	h.logger.Infof("Found %d documents in collection '%s' with filter %s", len(docs), h.collection, filter)
	WriteJSON(w, http.StatusOK, docs)
}

// parseQueryValue converts the value of a typed field to a number or
// boolean when it is one. Other fields, like title=1984, keep the string.
func parseQueryValue(field, value string) interface{} {
	if !typedFields[field] {
		return value
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}

func intParam(value string, fallback int64) (int64, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseInt(value, 10, 64)
}
