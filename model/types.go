// Package model provides domain types shared across packages.
//
// Information Hiding:
// - The vector index library's document type never leaves the index package
// - Content identity is derived here, once, at construction time
package model

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// Evidence is one retrieved message fragment.
// Values are created by the index adapters and never mutated afterwards.
type Evidence struct {
	// ID identifies the content and is used for deduplication.
	ID string `json:"id"`
	// Content is the message text, usually "author: text" lines.
	Content string `json:"content"`
	// Timestamp is the source time in Unix milliseconds (nil if unknown).
	Timestamp *int64 `json:"timestamp,omitempty"`
	// Channel is the channel label (empty if unknown).
	Channel string `json:"channel,omitempty"`
	// URL links to the original message (empty if unknown).
	URL string `json:"url,omitempty"`
}

// NewEvidence creates an Evidence value. An empty id is replaced by a
// content hash so identical fragments share an identity.
func NewEvidence(id, content string) Evidence {
	if id == "" {
		id = ContentID(content)
	}
	return Evidence{ID: id, Content: content}
}

// WithTimestamp sets the source timestamp in Unix milliseconds.
func (e Evidence) WithTimestamp(ms int64) Evidence {
	e.Timestamp = &ms
	return e
}

// WithChannel sets the channel label.
func (e Evidence) WithChannel(channel string) Evidence {
	e.Channel = channel
	return e
}

// WithURL sets the origin URL.
func (e Evidence) WithURL(url string) Evidence {
	e.URL = url
	return e
}

// Time returns the source instant and whether one is present.
func (e Evidence) Time() (time.Time, bool) {
	if e.Timestamp == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*e.Timestamp), true
}

// ContentID returns the stable identity of a content body.
func ContentID(content string) string {
	sum := sha1.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NumberedSource is an Evidence item with its session-scoped citation number.
type NumberedSource struct {
	Number int `json:"source_number"`
	Evidence
}

// Citation is the caller-facing record of a cited source.
type Citation struct {
	SourceNumber int      `json:"source_number"`
	Snippet      string   `json:"snippet"`
	URLs         []string `json:"urls"`
	Timestamp    *int64   `json:"timestamp"`
	Channel      *string  `json:"channel"`
	// Message holds the ids parsed from the source URL, if it is a message link.
	Message *MessageRef `json:"message,omitempty"`
}

// MessageRef identifies one chat message.
type MessageRef struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// ToolCall records one dispatched tool invocation.
// Used for tracking and analytics in both agent and event contexts.
type ToolCall struct {
	Name        string         `json:"name"`
	Arguments   map[string]any `json:"arguments"`
	Iteration   int            `json:"iteration"`
	ResultCount int            `json:"result_count"`
	DurationMs  uint64         `json:"duration_ms"`
}
