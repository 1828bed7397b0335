package notes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/qnclient/rpc/client"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("lib/notes")

// Command names understood by the notes server
const (
	CmdGetUserInfo         = "getUserInfo"
	CmdGetNotes            = "getNotes"
	CmdGetRecentNotes      = "getRecentNotes"
	CmdGetNote             = "getNote"
	CmdPermanentDeleteNote = "permanentDeleteNote"
	CmdUndeleteNote        = "undeleteNote"
	CmdDeleteNote          = "deleteNote"
	CmdMakeNotePrivate     = "makeNotePrivate"
	CmdMakeNotePublic      = "makeNotePublic"
	CmdStarNote            = "starNote"
	CmdUnstarNote          = "unstarNote"
	CmdCreateOrUpdateNote  = "createOrUpdateNote"
	CmdSearchUserNotes     = "searchUserNotes"

	// BroadcastUserNotes is pushed by the server when the notes of the logged in user change
	BroadcastUserNotes = "broadcastUserNotes"
)

// Conn is the part of client.Client the notes API needs
type Conn interface {
	client.Sender
	OnBroadcast(cmd string, handler client.BroadcastHandler, transform client.Transform) func()
}

// UserSummary identifies a user
type UserSummary struct {
	HashID string
	Handle string
}

// UserNotes is the result of getNotes and the payload of broadcastUserNotes
type UserNotes struct {
	LoggedUser *UserSummary
	Notes      []Note
}

// NewNote is sent by CreateOrUpdateNote. An empty HashID creates a note.
type NewNote struct {
	HashID   string   `json:"HashID,omitempty"`
	Title    string   `json:"Title"`
	Format   Format   `json:"Format"`
	Content  string   `json:"Content"`
	Tags     []string `json:"Tags,omitempty"`
	IsPublic bool     `json:"IsPublic"`
}

// API offers one typed method per server command. All methods block until
// the result arrives or ctx is done.
type API struct {
	conn Conn
}

// New creates the notes API on top of conn (usually a *client.Client)
func New(conn Conn) *API {
	return &API{conn: conn}
}

// --------------------------------------------------------------------------
// User and note lists
// --------------------------------------------------------------------------

// GetUserInfo returns the public profile of a user
func (a *API) GetUserInfo(ctx context.Context, userIDHash string) (map[string]any, error) {
	return client.Call[map[string]any](ctx, a.conn, CmdGetUserInfo, map[string]any{"userIDHash": userIDHash})
}

// GetNotes returns all notes of a user visible to the logged in user
func (a *API) GetNotes(ctx context.Context, userIDHash string) (*UserNotes, error) {
	return client.Call[*UserNotes](ctx, a.conn, CmdGetNotes, map[string]any{"userIDHash": userIDHash})
}

// GetRecentNotes returns the most recent public notes. A null result is an empty list.
func (a *API) GetRecentNotes(ctx context.Context) ([]Note, error) {
	res, err := client.Call[*struct{ Notes []Note }](ctx, a.conn, CmdGetRecentNotes, nil)
	if err != nil || res == nil {
		return nil, err
	}
	return res.Notes, nil
}

// SearchUserNotes searches the notes of a user. Results arrive in the server's ranking order.
func (a *API) SearchUserNotes(ctx context.Context, userIDHash, term string) (*SearchResults, error) {
	return client.Call[*SearchResults](ctx, a.conn, CmdSearchUserNotes, map[string]any{
		"userIDHash": userIDHash,
		"searchTerm": term,
	})
}

// --------------------------------------------------------------------------
// Single note operations
// --------------------------------------------------------------------------

// GetNote returns a note including its content
func (a *API) GetNote(ctx context.Context, noteHashID string) (Note, error) {
	return a.noteOp(ctx, CmdGetNote, noteHashID)
}

func (a *API) DeleteNote(ctx context.Context, noteHashID string) (Note, error) {
	return a.noteOp(ctx, CmdDeleteNote, noteHashID)
}

func (a *API) UndeleteNote(ctx context.Context, noteHashID string) (Note, error) {
	return a.noteOp(ctx, CmdUndeleteNote, noteHashID)
}

func (a *API) MakeNotePrivate(ctx context.Context, noteHashID string) (Note, error) {
	return a.noteOp(ctx, CmdMakeNotePrivate, noteHashID)
}

func (a *API) MakeNotePublic(ctx context.Context, noteHashID string) (Note, error) {
	return a.noteOp(ctx, CmdMakeNotePublic, noteHashID)
}

func (a *API) StarNote(ctx context.Context, noteHashID string) (Note, error) {
	return a.noteOp(ctx, CmdStarNote, noteHashID)
}

func (a *API) UnstarNote(ctx context.Context, noteHashID string) (Note, error) {
	return a.noteOp(ctx, CmdUnstarNote, noteHashID)
}

// PermanentDeleteNote removes a note for good and returns the server's message
func (a *API) PermanentDeleteNote(ctx context.Context, noteHashID string) (string, error) {
	res, err := client.Call[struct{ Msg string }](ctx, a.conn, CmdPermanentDeleteNote, map[string]any{"noteHashID": noteHashID})
	return res.Msg, err
}

// CreateOrUpdateNote stores n. The note travels as a json string in the noteJSON argument.
func (a *API) CreateOrUpdateNote(ctx context.Context, n NewNote) (json.RawMessage, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal note: %w", err)
	}
	return client.Call[json.RawMessage](ctx, a.conn, CmdCreateOrUpdateNote, map[string]any{"noteJSON": string(b)})
}

// noteOp runs a command that takes a noteHashID and answers with the compact note
func (a *API) noteOp(ctx context.Context, cmd, noteHashID string) (Note, error) {
	return client.Call[Note](ctx, a.conn, cmd, map[string]any{"noteHashID": noteHashID})
}

// --------------------------------------------------------------------------
// Server pushes
// --------------------------------------------------------------------------

// OnUserNotes registers handler for broadcastUserNotes pushes. The returned function unregisters it.
func (a *API) OnUserNotes(handler func(*UserNotes)) (unregister func()) {
	return a.conn.OnBroadcast(BroadcastUserNotes, func(result any) {
		handler(result.(*UserNotes))
	}, UserNotesTransform)
}

// UserNotesTransform decodes a getNotes result, for use with client.Client.Send
func UserNotesTransform(raw json.RawMessage) (any, error) {
	var v UserNotes
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			Logger.Warningf("Failed to decode user notes: %v", err)
			return nil, err
		}
	}
	return &v, nil
}

// NoteTransform decodes a single compact note, for use with client.Client.Send
func NoteTransform(raw json.RawMessage) (any, error) {
	return DecodeCompactNote(raw)
}
