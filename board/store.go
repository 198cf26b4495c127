package board

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/whiteboard"
)

// Limits and defaults.
const (
	MaxWhiteboards        = 10
	MaxPagesPerWhiteboard = 10
	DefaultName           = "Untitled Whiteboard"
)

// Sentinel errors returned by Store.
var (
	ErrLimitReached   = errors.New("board: limit reached")
	ErrNotFound       = errors.New("board: whiteboard not found")
	ErrPageIndex      = errors.New("board: page index out of range")
	ErrLastWhiteboard = errors.New("board: cannot delete the last whiteboard")
	ErrLastPage       = errors.New("board: cannot delete the last page")
)

// Page is one page of a whiteboard. DataURI holds the serialized committed
// surface; empty means a blank page.
type Page struct {
	ID      string
	DataURI string
}

// Whiteboard is a named, ordered collection of pages sharing a background.
type Whiteboard struct {
	ID         string
	Name       string
	Pages      []Page
	ActivePage int
	Background whiteboard.BackgroundSpec
	Modified   time.Time
}

// Page returns the active page.
func (w Whiteboard) Page() Page {
	if w.ActivePage < 0 || w.ActivePage >= len(w.Pages) {
		return Page{}
	}
	return w.Pages[w.ActivePage]
}

// ExportFilename returns the file name used when exporting the active page,
// for example "Sketches_page2.png".
func (w Whiteboard) ExportFilename() string {
	name := strings.TrimSpace(w.Name)
	if name == "" {
		name = "whiteboard"
	}
	return fmt.Sprintf("%s_page%d.png", name, w.ActivePage+1)
}

func (w *Whiteboard) clone() Whiteboard {
	c := *w
	c.Pages = append([]Page(nil), w.Pages...)
	return c
}

// Store is an in-memory collection of whiteboards with one active board.
// It always holds at least one whiteboard with at least one page.
//
// Store is safe for concurrent use. Methods return copies; mutate through
// the Store's methods.
type Store struct {
	mu     sync.RWMutex
	boards []*Whiteboard
	active string
	now    func() time.Time
}

// NewStore returns a store holding one blank whiteboard named DefaultName.
func NewStore() *Store {
	s := &Store{now: time.Now}
	wb := s.newWhiteboard(DefaultName)
	s.boards = append(s.boards, wb)
	s.active = wb.ID
	return s
}

func (s *Store) newWhiteboard(name string) *Whiteboard {
	return &Whiteboard{
		ID:         uuid.NewString(),
		Name:       name,
		Pages:      []Page{{ID: uuid.NewString()}},
		Background: whiteboard.DefaultBackground(),
		Modified:   s.now(),
	}
}

func (s *Store) find(id string) (*Whiteboard, error) {
	for _, wb := range s.boards {
		if wb.ID == id {
			return wb, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Store) touch(wb *Whiteboard) {
	wb.Modified = s.now()
}

// List returns every whiteboard in creation order.
func (s *Store) List() []Whiteboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Whiteboard, len(s.boards))
	for i, wb := range s.boards {
		out[i] = wb.clone()
	}
	return out
}

// Len returns the number of whiteboards.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boards)
}

// Get returns the whiteboard with the given ID.
func (s *Store) Get(id string) (Whiteboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wb, err := s.find(id)
	if err != nil {
		return Whiteboard{}, err
	}
	return wb.clone(), nil
}

// Active returns the active whiteboard.
func (s *Store) Active() Whiteboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wb, err := s.find(s.active)
	if err != nil {
		return Whiteboard{}
	}
	return wb.clone()
}

// Create adds a blank whiteboard named "Untitled Whiteboard N", where N is
// the new board count, and makes it active.
func (s *Store) Create() (Whiteboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.boards) >= MaxWhiteboards {
		return Whiteboard{}, fmt.Errorf("%w: at most %d whiteboards", ErrLimitReached, MaxWhiteboards)
	}
	wb := s.newWhiteboard(fmt.Sprintf("%s %d", DefaultName, len(s.boards)+1))
	s.boards = append(s.boards, wb)
	s.active = wb.ID
	return wb.clone(), nil
}

// Select makes the whiteboard with the given ID active.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.find(id); err != nil {
		return err
	}
	s.active = id
	return nil
}

// Rename sets a whiteboard's name.
func (s *Store) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb, err := s.find(id)
	if err != nil {
		return err
	}
	wb.Name = name
	s.touch(wb)
	return nil
}

// Delete removes a whiteboard. Deleting the active board activates the
// first remaining one. The last whiteboard cannot be deleted.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.find(id); err != nil {
		return err
	}
	if len(s.boards) <= 1 {
		return ErrLastWhiteboard
	}
	kept := s.boards[:0]
	for _, wb := range s.boards {
		if wb.ID != id {
			kept = append(kept, wb)
		}
	}
	clear(s.boards[len(kept):])
	s.boards = kept
	if s.active == id {
		s.active = s.boards[0].ID
	}
	return nil
}

// SetBackground sets a whiteboard's background.
func (s *Store) SetBackground(id string, bg whiteboard.BackgroundSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb, err := s.find(id)
	if err != nil {
		return err
	}
	wb.Background = bg
	s.touch(wb)
	return nil
}

// AddPage appends a blank page to a whiteboard, makes it the active page
// and returns its index.
func (s *Store) AddPage(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb, err := s.find(id)
	if err != nil {
		return 0, err
	}
	if len(wb.Pages) >= MaxPagesPerWhiteboard {
		return 0, fmt.Errorf("%w: at most %d pages", ErrLimitReached, MaxPagesPerWhiteboard)
	}
	wb.Pages = append(wb.Pages, Page{ID: uuid.NewString()})
	wb.ActivePage = len(wb.Pages) - 1
	s.touch(wb)
	return wb.ActivePage, nil
}

// SelectPage makes page index active on a whiteboard.
func (s *Store) SelectPage(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb, err := s.find(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(wb.Pages) {
		return fmt.Errorf("%w: %d of %d", ErrPageIndex, index, len(wb.Pages))
	}
	wb.ActivePage = index
	return nil
}

// DeletePage removes a page. The active page index follows the page that
// was active, or moves to the previous page when the active one is removed.
func (s *Store) DeletePage(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb, err := s.find(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(wb.Pages) {
		return fmt.Errorf("%w: %d of %d", ErrPageIndex, index, len(wb.Pages))
	}
	if len(wb.Pages) <= 1 {
		return ErrLastPage
	}
	wb.Pages = append(wb.Pages[:index], wb.Pages[index+1:]...)
	if wb.ActivePage >= index && wb.ActivePage > 0 {
		wb.ActivePage--
	}
	s.touch(wb)
	return nil
}

// SetPageData stores the serialized surface of a page.
func (s *Store) SetPageData(id string, index int, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb, err := s.find(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(wb.Pages) {
		return fmt.Errorf("%w: %d of %d", ErrPageIndex, index, len(wb.Pages))
	}
	wb.Pages[index].DataURI = uri
	s.touch(wb)
	return nil
}

// SetActivePageData stores the serialized surface of the active page of
// the active whiteboard.
func (s *Store) SetActivePageData(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb, err := s.find(s.active)
	if err != nil {
		return err
	}
	wb.Pages[wb.ActivePage].DataURI = uri
	s.touch(wb)
	return nil
}
