package ingest

// RawFile is one submitted file as received from the client.
type RawFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// UploadRequest is a batch of files to combine into one note.
type UploadRequest struct {
	UserID      string
	Title       string
	Description *string
	Files       []RawFile
}

// TextRequest creates a note from pasted text.
type TextRequest struct {
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Content     string  `json:"content"`
}
