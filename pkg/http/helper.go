package http

import (
	"net/http"
	"strconv"

	"bookminton/pkg/config"
	apperrors "bookminton/pkg/errors"
	"bookminton/pkg/model"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate reads a required YYYY-MM-DD query parameter.
func ExtractDate(r *http.Request, name string) (model.Date, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return model.Date{}, apperrors.IncompleteInput(name+" is required", map[string]any{"field": name})
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, apperrors.InvalidInput(err.Error())
	}
	return d, nil
}

// ExtractTimeOfDay reads a required HH:MM query parameter. End times read "00:00" as
// end of day.
func ExtractTimeOfDay(r *http.Request, name string, isEnd bool) (model.TimeOfDay, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, apperrors.IncompleteInput(name+" is required", map[string]any{"field": name})
	}

	parse := model.ParseTimeOfDay
	if isEnd {
		parse = model.ParseEndTime
	}
	t, err := parse(s)
	if err != nil {
		return 0, apperrors.InvalidInput(err.Error())
	}
	return t, nil
}

// ExtractInterval reads the start and end query parameters.
func ExtractInterval(r *http.Request) (model.Interval, error) {
	start, err := ExtractTimeOfDay(r, "start", false)
	if err != nil {
		return model.Interval{}, err
	}
	end, err := ExtractTimeOfDay(r, "end", true)
	if err != nil {
		return model.Interval{}, err
	}
	return model.Interval{Start: start, End: end}, nil
}
