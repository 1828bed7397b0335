package notes

import (
	"encoding/json"
	"sync"

	"github.com/ValentinKolb/qnclient/rpc/client"
)

// SearchResultItem is one matching line of a note
type SearchResultItem struct {
	Type   int
	LineNo int
	HTML   string
}

// SearchResult lists the matches within one note
type SearchResult struct {
	NoteIDStr string
	Items     []SearchResultItem
}

// SearchResults is the answer to searchUserNotes
type SearchResults struct {
	Term    string
	Results []SearchResult
}

// Searcher runs search-as-you-type queries. Every Search supersedes the previous one;
// answers to superseded terms are dropped instead of delivered.
type Searcher struct {
	sender     client.Sender
	userIDHash string
	onResults  func(*SearchResults)
	onError    func(term string, err error)

	mu      sync.Mutex
	current string
}

// NewSearcher creates a searcher for the notes of userIDHash. onResults receives the
// results of the current term, onError (optional) its failure.
func NewSearcher(sender client.Sender, userIDHash string, onResults func(*SearchResults), onError func(string, error)) *Searcher {
	return &Searcher{
		sender:     sender,
		userIDHash: userIDHash,
		onResults:  onResults,
		onError:    onError,
	}
}

// Search issues a query for term. An empty term only clears the current one.
func (s *Searcher) Search(term string) {
	s.mu.Lock()
	s.current = term
	s.mu.Unlock()
	if term == "" {
		return
	}

	args := map[string]any{"userIDHash": s.userIDHash, "searchTerm": term}
	s.sender.Send(CmdSearchUserNotes, args, func(result any, err error) {
		if !s.isCurrent(term) {
			Logger.Debugf("Dropping stale search results for %q", term)
			return
		}
		if err != nil {
			if s.onError != nil {
				s.onError(term, err)
			}
			return
		}
		s.onResults(result.(*SearchResults))
	}, searchTransform)
}

// Clear forgets the current term; answers still in flight are dropped
func (s *Searcher) Clear() {
	s.Search("")
}

// Current returns the term results are currently accepted for
func (s *Searcher) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Searcher) isCurrent(term string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == term
}

func searchTransform(raw json.RawMessage) (any, error) {
	var v SearchResults
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
	}
	return &v, nil
}
