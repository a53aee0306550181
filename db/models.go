package db

import (
	"time"

	"github.com/google/uuid"
)

// User is an application account.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"-"`
}

// Photo is an uploaded photo with its metadata and associations.
type Photo struct {
	ID               string   `json:"id"`
	UserID           string   `json:"-"`
	URL              string   `json:"url"`
	Title            string   `json:"title"`
	Filename         string   `json:"filename"`
	OriginalFilename string   `json:"original_filename"`
	Filepath         string   `json:"-"`
	MimeType         string   `json:"mime_type,omitempty"`
	FileSize         int64    `json:"file_size"`
	IsFavorite       bool     `json:"is_favorite"`
	FileHash         string   `json:"-"`
	UploadedAt       int64    `json:"-"`
	UploadedAtISO    string   `json:"uploaded_at"`
	Date             string   `json:"date"`
	Categories       []string `json:"categories"`
	Tags             []string `json:"tags"`
	FacesCount       int      `json:"faces_count"`
	Faces            []Face   `json:"faces,omitempty"`

	// Set only when listing duplicate groups
	DuplicateGroup string `json:"duplicate_group,omitempty"`
}

// Face is a detected face in a photo, optionally linked to a person.
type Face struct {
	ID             string  `json:"id"`
	PhotoID        string  `json:"photo_id"`
	PersonID       string  `json:"person_id,omitempty"`
	PersonName     string  `json:"person_name,omitempty"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Confidence     float64 `json:"confidence"`
	HasEmbedding   bool    `json:"has_embedding"`
	EmbeddingModel string  `json:"embedding_model,omitempty"`
}

// Person is a named person identified across photos.
type Person struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	PhotoCount int    `json:"photoCount"`
	CreatedAt  string `json:"created_at"`
}

// Folder groups photos under a user-chosen name.
// Names are not unique: creating "Trip" twice yields two distinct folders.
type Folder struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PhotoCount int     `json:"photo_count"`
	CreatedAt  string  `json:"created_at"`
	Photos     []Photo `json:"photos,omitempty"`
}

// Category is one of the fixed upload categories.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag is a free-form photo tag, created on first use.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NameCount is a (name, count) aggregate row.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NewID returns a fresh identifier for stored records
func NewID() string {
	return uuid.New().String()
}

// NowMs returns the current time as epoch milliseconds
func NowMs() int64 {
	return time.Now().UnixMilli()
}

// MsToISO formats epoch milliseconds as RFC3339 UTC
func MsToISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// MsToDate formats epoch milliseconds as MM/DD/YYYY for gallery display
func MsToDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("01/02/2006")
}
