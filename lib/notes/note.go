package notes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format is the markup of a note body
type Format int

const (
	FormatInvalid  Format = 0
	FormatText     Format = 1
	FormatMarkdown Format = 2
	FormatHTML     Format = 3
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	default:
		return "invalid"
	}
}

// Flag bits of the compact note encoding
const (
	FlagStarred   = 1 << 0
	FlagDeleted   = 1 << 1
	FlagPublic    = 1 << 2
	FlagPartial   = 1 << 3
	FlagTruncated = 1 << 4
)

// Positions in the compact note array
const (
	idxIDVer = iota
	idxTitle
	idxSize
	idxFlags
	idxCreatedAt
	idxUpdatedAt
	idxFormat
	idxTags
	idxSnippet
	idxContent

	compactFields = idxContent // without the optional content
)

// Note is a decoded note. On the wire the server sends notes as compact arrays
// [idVer, title, size, flags, createdAtMs, updatedAtMs, format, tags, snippet, content?].
type Note struct {
	HashID    string    `json:"hashID"`
	Version   int       `json:"version"`
	Title     string    `json:"title"`
	Size      int       `json:"size"`
	Flags     int       `json:"flags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Format    Format    `json:"format"`
	Tags      []string  `json:"tags"`
	Snippet   string    `json:"snippet"`
	Content   *string   `json:"content,omitempty"` // nil if the server did not send the body
}

func (n *Note) IsStarred() bool   { return n.Flags&FlagStarred != 0 }
func (n *Note) IsDeleted() bool   { return n.Flags&FlagDeleted != 0 }
func (n *Note) IsPublic() bool    { return n.Flags&FlagPublic != 0 }
func (n *Note) IsPartial() bool   { return n.Flags&FlagPartial != 0 }
func (n *Note) IsTruncated() bool { return n.Flags&FlagTruncated != 0 }

// IDVer returns the "hashID-version" key of the note
func (n *Note) IDVer() string {
	return fmt.Sprintf("%s-%d", n.HashID, n.Version)
}

// UnmarshalJSON accepts the compact array as well as the object form produced by json.Marshal
func (n *Note) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		decoded, err := DecodeCompactNote(b)
		if err != nil {
			return err
		}
		*n = decoded
		return nil
	}
	type plain Note
	return json.Unmarshal(b, (*plain)(n))
}

// DecodeCompactNote decodes one compact note array
func DecodeCompactNote(raw json.RawMessage) (Note, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Note{}, fmt.Errorf("compact note is not an array: %w", err)
	}
	if len(fields) != compactFields && len(fields) != compactFields+1 {
		return Note{}, fmt.Errorf("compact note has %d fields, want %d or %d", len(fields), compactFields, compactFields+1)
	}

	var (
		n                    Note
		idVer                string
		createdMs, updatedMs int64
	)
	targets := []struct {
		name string
		dst  any
	}{
		{"idVer", &idVer},
		{"title", &n.Title},
		{"size", &n.Size},
		{"flags", &n.Flags},
		{"createdAt", &createdMs},
		{"updatedAt", &updatedMs},
		{"format", &n.Format},
		{"tags", &n.Tags},
		{"snippet", &n.Snippet},
	}
	for i, target := range targets {
		if err := json.Unmarshal(fields[i], target.dst); err != nil {
			return Note{}, fmt.Errorf("compact note field %s: %w", target.name, err)
		}
	}

	hashID, version, err := splitIDVer(idVer)
	if err != nil {
		return Note{}, err
	}
	n.HashID, n.Version = hashID, version
	n.CreatedAt = time.UnixMilli(createdMs)
	n.UpdatedAt = time.UnixMilli(updatedMs)

	if len(fields) > idxContent {
		var content string
		if err := json.Unmarshal(fields[idxContent], &content); err != nil {
			return Note{}, fmt.Errorf("compact note field content: %w", err)
		}
		n.Content = &content
	}
	return n, nil
}

// DecodeCompactNotes decodes a list of compact notes
func DecodeCompactNotes(raw json.RawMessage) ([]Note, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("note list is not an array: %w", err)
	}
	out := make([]Note, 0, len(list))
	for i, item := range list {
		n, err := DecodeCompactNote(item)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// splitIDVer splits "hashID-version"; the hash id itself may contain dashes
func splitIDVer(idVer string) (string, int, error) {
	i := strings.LastIndexByte(idVer, '-')
	if i <= 0 || i == len(idVer)-1 {
		return "", 0, fmt.Errorf("invalid note id %q, want hashID-version", idVer)
	}
	version, err := strconv.Atoi(idVer[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid version in note id %q: %w", idVer, err)
	}
	return idVer[:i], version, nil
}
