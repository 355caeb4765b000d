// Package entity defines the entities and errors used in the application.
// It includes the Link and AccessRecord structs, the value types exchanged
// between layers, and the error taxonomy callers branch on.
package entity

import "time"

// Link maps a short code to the original URL it resolves to.
type Link struct {
	ID            int64          // ID is the unique identifier of the link in the store.
	Code          string         // Code is the generated short code. Immutable once created.
	OriginalURL   string         // OriginalURL is the scheme-prefixed URL the code resolves to.
	AccessRecords []AccessRecord // AccessRecords is populated only by eager-loading lookups.
}

// AccessRecord is one logged redirect of a Link.
type AccessRecord struct {
	ID         int64     // ID is the unique identifier of the record in the store.
	LinkID     int64     // LinkID references the Link that was accessed.
	AccessedAt time.Time // AccessedAt is the server-assigned time of the redirect.
	IPAddress  string    // IPAddress is the client address as seen by the server.
	UserAgent  string    // UserAgent is the client User-Agent header.
}

// ShortenedLink is the result of shortening a URL.
type ShortenedLink struct {
	URL         string // URL is the public short URL.
	OriginalURL string // OriginalURL is the URL exactly as supplied by the caller.
}

// AccessEvent describes a redirect that should be turned into an AccessRecord.
type AccessEvent struct {
	Code      string
	IPAddress string
	UserAgent string
}
