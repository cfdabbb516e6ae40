package attachment

// Attachment is an opaque uploaded file. The metadata lives in the
// Directory registry; the bytes live in the Store under ID.
// Attachments are immutable after creation and are referenced (never
// owned) by classroom items and submissions.
type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	OwnerID     string `json:"owner_id"`
	Size        int    `json:"size"`
}
