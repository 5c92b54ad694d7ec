package model

import "time"

// Format enumerates deliverable media formats.
type Format string

const (
	// FormatVideo delivers the watermark-free video asset.
	FormatVideo Format = "video"
	// FormatAudio delivers the soundtrack asset.
	FormatAudio Format = "audio"
	// FormatImages delivers the image slideshow as a media group.
	FormatImages Format = "images"
)

// MediaDescriptor is the asset bundle returned by the extraction
// collaborator for a single shared link.
type MediaDescriptor struct {
	SourceURL string
	Title     string
	VideoURL  string
	AudioURL  string
	ImageURLs []string
}

// HasFormat reports whether the descriptor carries an asset for the format.
func (d MediaDescriptor) HasFormat(f Format) bool {
	switch f {
	case FormatVideo:
		return d.VideoURL != ""
	case FormatAudio:
		return d.AudioURL != ""
	case FormatImages:
		return len(d.ImageURLs) > 0
	}
	return false
}

// MediaSession is the short-lived per-user state between a successful
// extraction and asset delivery. A user holds at most one; a newer
// extraction supersedes it. Generation distinguishes successive sessions
// so a stale pending release can recognize it was superseded.
type MediaSession struct {
	Owner      int64
	Media      MediaDescriptor
	Format     Format
	Generation uint64
	CreatedAt  time.Time
}
