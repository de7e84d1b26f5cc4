package faq

import "time"

// FAQ is a question/answer record owned by the primary store.
type FAQ struct {
	ID          int64
	Question    string
	Answer      string
	Instruction string
	URL         string
	Active      bool
	Comment     string
	Timestamp   time.Time
	Tags        []string
}

// Tag labels FAQs. Its name is the identity and cannot change.
type Tag struct {
	Name        string
	Description string
	Active      bool
}

// Request captures a FAQ create/update payload.
type Request struct {
	Question    string   `json:"question" binding:"required"`
	Answer      string   `json:"answer" binding:"required"`
	Instruction string   `json:"instruction"`
	URL         string   `json:"url"`
	Active      *bool    `json:"active"`
	Comment     string   `json:"comment"`
	Tags        []string `json:"tags"`
}

// Response is the FAQ representation returned to the HTTP transport.
type Response struct {
	ID          int64     `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Instruction string    `json:"instruction,omitempty"`
	URL         string    `json:"url,omitempty"`
	Active      bool      `json:"active"`
	Comment     string    `json:"comment,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Tags        []string  `json:"tags"`
}

// TagRequest captures a tag create/update payload.
type TagRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// TagResponse is the tag representation returned to the HTTP transport.
type TagResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

// Page wraps one page of FAQ responses.
type Page struct {
	Items         []Response `json:"content"`
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	TotalElements int64      `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
}
