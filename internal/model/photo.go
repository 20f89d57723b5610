// Package model contains domain models/data structures.
package model

import "io"

// Photo is one uploaded photo as recorded in the relational store.
// The row identifier assigned by the database is not used by the application.
type Photo struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// UploadedFile is the transient view of a submitted "photoFile" part.
// It lives only for the duration of a request.
type UploadedFile struct {
	OriginalName string
	ContentType  string
	Size         int64
	Content      io.Reader
	// Err is set when the part was received but could not be opened.
	Err error
}

const (
	AlertSuccess = "success"
	AlertError   = "error"
)

// Alert is the user-facing outcome of an upload attempt.
type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
