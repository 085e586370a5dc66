package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidFormat indicates the inbound payload was not valid JSON.
	ErrInvalidFormat = errors.New("invalid application format")
	// ErrMissingUser indicates the payload carried no meta_data.user_id.
	ErrMissingUser = errors.New("invalid application data")
)

// Record is the structured grant-submission payload under review.
// It is created by the upstream submission channel and read-only here.
type Record struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Content      string         `json:"content"`
	MetaData     map[string]any `json:"meta_data"`
	DocumentType string         `json:"document_type"`
	CreatedAt    string         `json:"created_at"`
}

// Parse decodes a JSON-encoded application payload and validates the
// fields the review flow depends on.
func Parse(raw string) (*Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if rec.UserID() == "" {
		return nil, ErrMissingUser
	}
	if rec.DocumentType == "" {
		rec.DocumentType = "application"
	}
	return &rec, nil
}

// UserID returns meta_data.user_id as a string, tolerating numeric
// identifiers from upstream chat transports.
func (r *Record) UserID() string {
	return r.metaString("user_id")
}

// ChatID returns meta_data.chat_id as a string, or empty when absent.
func (r *Record) ChatID() string {
	return r.metaString("chat_id")
}

func (r *Record) metaString(key string) string {
	if r == nil || r.MetaData == nil {
		return ""
	}
	switch v := r.MetaData[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
