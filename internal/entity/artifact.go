package entity

import "time"

// Artifact is a downloadable result held on behalf of a session. URL is the
// handle the page binds its download link to; it stops resolving once the
// artifact is revoked.
type Artifact struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	URL         string    `json:"url"`
	PreviewURL  string    `json:"preview_url,omitempty"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Blob is a binary response body as received from the proxy.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

type ArtifactEventType string

const (
	ArtifactCreated ArtifactEventType = "created"
	ArtifactRevoked ArtifactEventType = "revoked"
)

type ArtifactEvent struct {
	Type       ArtifactEventType `json:"type"`
	ArtifactID string            `json:"artifact_id"`
	SessionID  string            `json:"session_id"`
	Size       int64             `json:"size,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Time       time.Time         `json:"time"`
}
