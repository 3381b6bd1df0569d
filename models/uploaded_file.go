package models

// Document kinds accepted by the wizard.
const (
	DocPassport = "passport"
	DocPhoto    = "photo"
	DocDocument = "document"
)

// IsValidDocumentKind reports whether kind is accepted by the wizard.
func IsValidDocumentKind(kind string) bool {
	switch kind {
	case DocPassport, DocPhoto, DocDocument:
		return true
	}
	return false
}

// UploadedFile is a document attached during the wizard. Either URL is set, or
// IsLocalPreview is true and LocalPath points at the retained temp file.
type UploadedFile struct {
	Kind           string `json:"kind"`
	FileName       string `json:"fileName"`
	ContentType    string `json:"contentType"`
	Size           int64  `json:"size"`
	URL            string `json:"url,omitempty"`
	IsLocalPreview bool   `json:"isLocalPreview"`
	DataURL        string `json:"dataUrl,omitempty"`
	LocalPath      string `json:"localPath,omitempty"`
	Warning        string `json:"warning,omitempty"`
}
