// Package library manages the user's picked media files and hands the
// player ready-to-play handles.
package library

// MediaKind classifies a playable file.
type MediaKind string

const (
	// KindVideo is a video file, played with the gesture surface active.
	KindVideo MediaKind = "video"
	// KindAudio is an audio file, played through a playlist queue.
	KindAudio MediaKind = "audio"
	// KindUnknown is a file with an unrecognized extension.
	KindUnknown MediaKind = "unknown"
)

// MediaItem is one playable entry in the user's library.
type MediaItem struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Path string    `json:"path"`
	URL  string    `json:"url"`
	Kind MediaKind `json:"kind"`
}

// ListRequest filters and bounds a library listing.
type ListRequest struct {
	Kind  MediaKind `json:"kind,omitempty"`
	Query string    `json:"query,omitempty"`
	Limit int       `json:"limit,omitempty"`
}

// ListResponse is the result of a library listing.
type ListResponse struct {
	Items      []MediaItem `json:"items"`
	TotalCount int         `json:"totalCount"`
}
