package docstore

import (
	"path"
	"strings"
)

// Fields is an ordered list of accepted source field names for one concept.
// The first present, non-empty value wins.
type Fields []string

// Accepted source fields for concepts that appear under more than one name in
// stored records.
var (
	FieldFileName   = Fields{"FileName", "name"}
	FieldFileID     = Fields{"FileId", "fileId"}
	FieldContent    = Fields{"filecontent", "FileContent"}
	FieldAssignee   = Fields{"assigneeId", "AssigneeId"}
	FieldRaciID     = Fields{"raciId", "RaciId"}
	FieldRaciGroup  = Fields{"raciGroup", "RaciGroup"}
	FieldCreated    = Fields{"CreatedDate", "createdDate", "createdAt"}
	FieldFileType   = Fields{"FileType", "fileType", "ContentType", "contentType"}
	FieldFileSize   = Fields{"FileSize", "fileSize", "size"}
	FieldStorageKey = Fields{"StoragePath", "storagePath", "gcsPath", "GcsPath"}
)

// Pick returns the first accepted field present in doc whose value is not
// nil and not an empty string.
func (f Fields) Pick(doc map[string]any) (any, bool) {
	for _, name := range f {
		v, ok := doc[name]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// String is Pick for textual concepts.
func (f Fields) String(doc map[string]any) string {
	v, ok := f.Pick(doc)
	if !ok {
		return ""
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	return ""
}

// Coalesce returns the first non-empty string.
func Coalesce(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DefaultAllowedExts is the extension allow-list applied to file records.
var DefaultAllowedExts = []string{".docx", ".pdf", ".xlsx"}

// ExtFilter is a case-insensitive file-name suffix allow-list.
type ExtFilter struct {
	exts []string
}

// NewExtFilter builds a filter; an empty list falls back to
// DefaultAllowedExts. Entries without a leading dot get one.
func NewExtFilter(exts []string) ExtFilter {
	if len(exts) == 0 {
		exts = DefaultAllowedExts
	}
	f := ExtFilter{exts: make([]string, 0, len(exts))}
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		f.exts = append(f.exts, e)
	}
	return f
}

// Allows reports whether name ends with an allowed extension.
func (f ExtFilter) Allows(name string) bool {
	s := strings.ToLower(name)
	for _, e := range f.exts {
		if strings.HasSuffix(s, e) {
			return true
		}
	}
	return false
}

// FileType derives a short type label from a file name ("pdf", "docx").
func FileType(name string) string {
	ext := path.Ext(strings.TrimSpace(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
