// Package article provides the HTTP handlers for the /news endpoints:
// fetch-today, title search, the two date-range filters, lookups by id,
// single-field updates, insert and delete.
package article

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"news-api/internal/domain/entity"
	"news-api/internal/repository"
)

// DTO represents the JSON structure for article data transfer.
type DTO struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Title          string    `json:"title"`
	Date           time.Time `json:"date"`
	Language       string    `json:"language"`
	Summary        *string   `json:"summary"`
	Keyword        *string   `json:"keyword"`
	Classification *string   `json:"classification"`
	Background     *string   `json:"background"`
	Memo           *string   `json:"memo"`
}

// DetailsDTO is the annotation projection returned by /news/articleDetails/{id}.
type DetailsDTO struct {
	Summary        *string `json:"summary"`
	Keyword        *string `json:"keyword"`
	Classification *string `json:"classification"`
	Background     *string `json:"background"`
	Memo           *string `json:"memo"`
}

// UpdateResponse is returned by the single-field update routes.
type UpdateResponse struct {
	Message      string `json:"message"`
	AffectedRows int64  `json:"affectedRows"`
}

// CreateResponse is returned by POST /news.
type CreateResponse struct {
	Message  string `json:"message"`
	InsertID int64  `json:"insertId"`
}

func toDTO(a *entity.Article) DTO {
	return DTO{
		ID:             a.ID,
		Name:           a.Name,
		Title:          a.Title,
		Date:           localWallClock(a.Date),
		Language:       a.Language,
		Summary:        a.Summary,
		Keyword:        a.Keyword,
		Classification: a.Classification,
		Background:     a.Background,
		Memo:           a.Memo,
	}
}

// toDTOs never returns nil so that empty results encode as [].
func toDTOs(articles []*entity.Article) []DTO {
	out := make([]DTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, toDTO(a))
	}
	return out
}

func toDetailsDTO(d *entity.ArticleDetails) DetailsDTO {
	return DetailsDTO{
		Summary:        d.Summary,
		Keyword:        d.Keyword,
		Classification: d.Classification,
		Background:     d.Background,
		Memo:           d.Memo,
	}
}

// createRequest is the POST /news body. Every field is optional here; the
// storage schema decides which ones are required.
type createRequest struct {
	Name           *string    `json:"name"`
	Title          *string    `json:"title"`
	Date           *inputDate `json:"date"`
	Language       *string    `json:"language"`
	Summary        *string    `json:"summary"`
	Keyword        *string    `json:"keyword"`
	Classification *string    `json:"classification"`
	Background     *string    `json:"background"`
	Memo           *string    `json:"memo"`
}

var errDateFormat = errors.New("date must be YYYY-MM-DD or RFC 3339")

// inputDate accepts "2024-01-15" (server-local midnight) or an RFC 3339 timestamp.
// Either way the value is converted to server-local time, because the date
// column stores a zone-less wall clock that is compared to the local day.
type inputDate struct {
	time.Time
}

func (d *inputDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errDateFormat
	}
	t, err := parseInputDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func parseInputDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(repository.DateLayout, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(time.Local), nil
	}
	return time.Time{}, errDateFormat
}

// localWallClock reinterprets a stored zone-less timestamp, which drivers hand
// back labelled UTC, as the server-local wall clock it was written as.
func localWallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}

// decodeFieldValue extracts body[field] for a single-field update.
// JSON null clears the column; a missing key is rejected so that an empty
// body cannot wipe a field by accident.
func decodeFieldValue(body []byte, field entity.Field) (*string, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, errInvalidJSON
	}
	raw, ok := m[field.Column()]
	if !ok {
		return nil, &entity.ValidationError{Field: field.Column(), Message: "is required (use null to clear)"}
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &entity.ValidationError{Field: field.Column(), Message: "must be a string or null"}
	}
	return &v, nil
}

func (r createRequest) date() *time.Time {
	if r.Date == nil {
		return nil
	}
	t := r.Date.Time
	return &t
}
