package notes

import (
	"encoding/json"
	"slices"
	"testing"
	"time"
)

func TestDecodeCompactNote(t *testing.T) {
	n, err := DecodeCompactNote(json.RawMessage(noteStarred))
	if err != nil {
		t.Fatalf("DecodeCompactNote failed: %v", err)
	}

	if n.HashID != "abc" || n.Version != 3 || n.IDVer() != "abc-3" {
		t.Errorf("id = %q version %d", n.HashID, n.Version)
	}
	if n.Title != "Shopping" || n.Size != 120 || n.Snippet != "eggs, milk" {
		t.Errorf("fields = %+v", n)
	}
	if n.Format != FormatMarkdown {
		t.Errorf("format = %s, want markdown", n.Format)
	}
	if !slices.Equal(n.Tags, []string{"todo", "home"}) {
		t.Errorf("tags = %v", n.Tags)
	}
	if !n.CreatedAt.Equal(time.UnixMilli(1500000000000)) || n.UpdatedAt.Sub(n.CreatedAt) != 10*time.Minute {
		t.Errorf("times = %s / %s", n.CreatedAt, n.UpdatedAt)
	}
	if n.Content != nil {
		t.Errorf("content = %q, want none", *n.Content)
	}
}

func TestCompactNoteFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags int
		check func(*Note) bool
	}{
		{name: "starred", flags: FlagStarred, check: (*Note).IsStarred},
		{name: "deleted", flags: FlagDeleted, check: (*Note).IsDeleted},
		{name: "public", flags: FlagPublic, check: (*Note).IsPublic},
		{name: "partial", flags: FlagPartial, check: (*Note).IsPartial},
		{name: "truncated", flags: FlagTruncated, check: (*Note).IsTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := &Note{Flags: tt.flags}
			if !tt.check(set) {
				t.Errorf("flag %d not reported", tt.flags)
			}
			others := &Note{Flags: 0x1f &^ tt.flags}
			if tt.check(others) {
				t.Errorf("flag %d reported although only other bits are set", tt.flags)
			}
		})
	}
}

func TestDecodeCompactNoteWithContent(t *testing.T) {
	var n Note
	if err := json.Unmarshal([]byte(noteFull), &n); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if n.HashID != "x-y" || n.Version != 7 {
		t.Errorf("id = %q version %d, want x-y / 7", n.HashID, n.Version)
	}
	if n.Content == nil || *n.Content != "dear diary, today" {
		t.Errorf("content = %v", n.Content)
	}
	if !n.IsPublic() || !n.IsTruncated() || n.IsStarred() {
		t.Errorf("flags %d decoded wrong", n.Flags)
	}
	if n.Tags != nil {
		t.Errorf("tags = %v, want nil", n.Tags)
	}
}

func TestDecodeCompactNoteErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not an array", raw: `{"title":"x"}`},
		{name: "too short", raw: `["a-1","t",1,0]`},
		{name: "too long", raw: `["a-1","t",1,0,0,0,1,[],"s","c","extra"]`},
		{name: "no version", raw: `["abc","t",1,0,0,0,1,[],"s"]`},
		{name: "bad version", raw: `["abc-x","t",1,0,0,0,1,[],"s"]`},
		{name: "bad size", raw: `["abc-1","t","big",0,0,0,1,[],"s"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeCompactNote(json.RawMessage(tt.raw)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// TestNoteObjectForm checks that a marshalled note can be read back
func TestNoteObjectForm(t *testing.T) {
	n, err := DecodeCompactNote(json.RawMessage(noteFull))
	if err != nil {
		t.Fatalf("DecodeCompactNote failed: %v", err)
	}
	b, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back Note
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.IDVer() != n.IDVer() || back.Content == nil || *back.Content != *n.Content {
		t.Errorf("object form lost data: %+v", back)
	}
}

func TestDecodeCompactNotes(t *testing.T) {
	list, err := DecodeCompactNotes(json.RawMessage("[" + noteStarred + "," + noteFull + "]"))
	if err != nil {
		t.Fatalf("DecodeCompactNotes failed: %v", err)
	}
	if len(list) != 2 || list[0].HashID != "abc" || list[1].HashID != "x-y" {
		t.Errorf("list = %+v", list)
	}
	if _, err := DecodeCompactNotes(json.RawMessage(`[` + noteStarred + `,["bad"]]`)); err == nil {
		t.Error("expected an error for a broken entry")
	}
}
