package jsonform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"assistante-suite/utils/contentstore"
)

const DefaultHistoryLimit = 10

var (
	ErrInvalidState  = errors.New("operation not allowed in the current editor mode")
	ErrInvalidMove   = errors.New("invalid reorder position")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNotLoaded     = errors.New("editor session has no document loaded")
)

type Mode string

const (
	ModeViewing  Mode = "viewing"
	ModeRenaming Mode = "renaming"
	ModeAdding   Mode = "adding"
)

type PendingRename struct {
	Path    Path   `json:"path" msgpack:"path"`
	NewName string `json:"new_name" msgpack:"new_name"`
}

type PendingAdd struct {
	SectionPath Path      `json:"section_path" msgpack:"section_path"`
	FieldName   string    `json:"field_name" msgpack:"field_name"`
	FieldType   FieldType `json:"field_type" msgpack:"field_type"`
}

// HistoryEntry holds the document text as it was before a committed change.
type HistoryEntry struct {
	Snapshot    string    `json:"-" msgpack:"snapshot"`
	Description string    `json:"description" msgpack:"description"`
	At          time.Time `json:"at" msgpack:"at"`
}

// State is the persistable part of a Session.
type State struct {
	DocumentID    string         `msgpack:"document_id"`
	Serialized    string         `msgpack:"serialized"`
	Revision      int64          `msgpack:"revision"`
	Loaded        bool           `msgpack:"loaded"`
	Expanded      []string       `msgpack:"expanded"`
	Mode          Mode           `msgpack:"mode"`
	PendingRename *PendingRename `msgpack:"pending_rename"`
	PendingAdd    *PendingAdd    `msgpack:"pending_add"`
	History       []HistoryEntry `msgpack:"history"`
}

func (st State) clone() State {
	out := st
	out.Expanded = append([]string(nil), st.Expanded...)
	out.History = append([]HistoryEntry(nil), st.History...)
	if st.PendingRename != nil {
		pr := *st.PendingRename
		pr.Path = pr.Path.Clone()
		out.PendingRename = &pr
	}
	if st.PendingAdd != nil {
		pa := *st.PendingAdd
		pa.SectionPath = pa.SectionPath.Clone()
		out.PendingAdd = &pa
	}
	return out
}

type SessionOptions struct {
	ExpandKeys   []string
	Labels       Labels
	HistoryLimit int
	Now          func() time.Time
}

// Session is one editor working on one document. Every committed change is
// written through the store with the revision the session last saw.
type Session struct {
	mu           sync.Mutex
	store        contentstore.DocumentStore
	flattener    *Flattener
	grouper      *Grouper
	historyLimit int
	now          func() time.Time

	state    State
	fields   []Field
	sections []Section
	invalid  error
}

func NewSession(store contentstore.DocumentStore, documentID string, opts SessionOptions) *Session {
	labels := opts.Labels
	if labels.Root == "" {
		labels = FrenchLabels
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		store:        store,
		flattener:    NewFlattener(opts.ExpandKeys),
		grouper:      NewGrouper(labels),
		historyLimit: limit,
		now:          now,
		state:        State{DocumentID: documentID, Mode: ModeViewing},
	}
}

// RestoreSession rebuilds a session from a saved State without touching the store.
func RestoreSession(store contentstore.DocumentStore, state State, opts SessionOptions) *Session {
	s := NewSession(store, state.DocumentID, opts)
	s.state = state.clone()
	if s.state.Mode == "" {
		s.state.Mode = ModeViewing
	}
	if s.state.Loaded {
		s.refresh()
	}
	return s
}

// Load reads the document from the store. A malformed document is not an
// error here: the session enters the invalid state reported by Err.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.store.LoadDocument(ctx, s.state.DocumentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", s.state.DocumentID, err)
	}
	s.state.Serialized = string(doc.Content)
	s.state.Revision = doc.Revision
	s.state.Loaded = true
	s.state.Mode = ModeViewing
	s.state.PendingRename = nil
	s.state.PendingAdd = nil
	s.refresh()
	return nil
}

func (s *Session) refresh() {
	doc, err := ParseDocument([]byte(s.state.Serialized))
	if err != nil {
		s.invalid = err
		s.fields = nil
		s.sections = nil
		return
	}
	s.invalid = nil
	s.fields = s.flattener.Flatten(doc)
	s.sections = s.grouper.Group(s.fields)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Session) Sections() []Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Section(nil), s.sections...)
}

func (s *Session) Fields() []Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Field(nil), s.fields...)
}

// Err reports why the loaded document cannot be edited, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalid
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Mode
}

func (s *Session) IsExpanded(sectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isExpanded(sectionID)
}

func (s *Session) isExpanded(sectionID string) bool {
	i := sort.SearchStrings(s.state.Expanded, sectionID)
	return i < len(s.state.Expanded) && s.state.Expanded[i] == sectionID
}

// ToggleSection flips the expanded flag of a section and returns the new value.
func (s *Session) ToggleSection(sectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.SearchStrings(s.state.Expanded, sectionID)
	if i < len(s.state.Expanded) && s.state.Expanded[i] == sectionID {
		s.state.Expanded = append(s.state.Expanded[:i], s.state.Expanded[i+1:]...)
		return false
	}
	s.state.Expanded = append(s.state.Expanded, "")
	copy(s.state.Expanded[i+1:], s.state.Expanded[i:])
	s.state.Expanded[i] = sectionID
	return true
}

func (s *Session) ready() error {
	if !s.state.Loaded {
		return ErrNotLoaded
	}
	return s.invalid
}

func (s *Session) requireViewing() error {
	if err := s.ready(); err != nil {
		return err
	}
	if s.state.Mode != ModeViewing {
		return fmt.Errorf("%w: %s", ErrInvalidState, s.state.Mode)
	}
	return nil
}

// BeginRename enters renaming mode for the key at path, prefilled with the
// current key.
func (s *Session) BeginRename(path Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireViewing(); err != nil {
		return err
	}
	last, ok := path.Last()
	if !ok {
		return ErrRootPath
	}
	if last.IsIndex() {
		return ErrNotRenamable
	}
	doc, err := ParseDocument([]byte(s.state.Serialized))
	if err != nil {
		return err
	}
	if _, ok := Resolve(doc, path); !ok {
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	s.state.Mode = ModeRenaming
	s.state.PendingRename = &PendingRename{Path: path.Clone(), NewName: last.Key}
	return nil
}

func (s *Session) CommitRename(ctx context.Context, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if s.state.Mode != ModeRenaming || s.state.PendingRename == nil {
		return fmt.Errorf("%w: no rename in progress", ErrInvalidState)
	}
	path := s.state.PendingRename.Path
	old, _ := path.Last()
	return s.mutate(ctx, fmt.Sprintf("Rename %q to %q", old.Key, newName), func(doc any) (any, error) {
		return Rename(doc, path, newName)
	})
}

// BeginAdd enters adding mode for the section at sectionPath.
func (s *Session) BeginAdd(sectionPath Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireViewing(); err != nil {
		return err
	}
	s.state.Mode = ModeAdding
	s.state.PendingAdd = &PendingAdd{SectionPath: sectionPath.Clone(), FieldType: FieldTypeString}
	return nil
}

func (s *Session) CommitAdd(ctx context.Context, name string, fieldType FieldType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if s.state.Mode != ModeAdding || s.state.PendingAdd == nil {
		return fmt.Errorf("%w: no add in progress", ErrInvalidState)
	}
	sectionPath := s.state.PendingAdd.SectionPath
	s.state.PendingAdd.FieldName = name
	s.state.PendingAdd.FieldType = fieldType
	desc := fmt.Sprintf("Add %s field %q", fieldType, name)
	if sectionPath.String() != "" {
		desc += " in " + sectionPath.String()
	}
	return s.mutate(ctx, desc, func(doc any) (any, error) {
		return Add(doc, sectionPath, name, fieldType)
	})
}

// Cancel drops a pending rename or add without contacting the store.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Mode = ModeViewing
	s.state.PendingRename = nil
	s.state.PendingAdd = nil
}

func (s *Session) Delete(ctx context.Context, path Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireViewing(); err != nil {
		return err
	}
	return s.mutate(ctx, "Delete "+path.String(), func(doc any) (any, error) {
		return Delete(doc, path)
	})
}

// Reorder moves the field at position from to position to inside a section,
// then rebuilds and saves the document. Items of an array are renumbered so
// the new order survives the rebuild.
func (s *Session) Reorder(ctx context.Context, sectionID string, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireViewing(); err != nil {
		return err
	}
	var section *Section
	for i := range s.sections {
		if s.sections[i].ID == sectionID {
			section = &s.sections[i]
			break
		}
	}
	if section == nil {
		return fmt.Errorf("%w: section %s", ErrPathNotFound, sectionID)
	}
	n := len(section.Fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: %d -> %d in %d fields", ErrInvalidMove, from, to, n)
	}
	if from == to {
		return nil
	}
	moved := append([]Field(nil), section.Fields...)
	f := moved[from]
	moved = append(moved[:from], moved[from+1:]...)
	moved = append(moved[:to], append([]Field{f}, moved[to:]...)...)
	if allIndexed(moved) {
		for i := range moved {
			moved[i] = renumber(moved[i], section.Path, i)
		}
	}

	fields := arrange(s.fields, section.ID, moved)
	data, err := MarshalDocument(Rebuild(fields))
	if err != nil {
		return err
	}
	return s.commit(ctx, string(data), fmt.Sprintf("Move %s from %d to %d", section.Name, from+1, to+1), true)
}

func allIndexed(fields []Field) bool {
	for _, f := range fields {
		last, ok := f.Path.Last()
		if !ok || !last.IsIndex() {
			return false
		}
	}
	return len(fields) > 0
}

func renumber(f Field, parent Path, i int) Field {
	f.Path = parent.Child(Index(i))
	f.ID = fieldID(f.Path)
	return f
}

// arrange replaces the fields of one section with a new ordering while every
// other field keeps its place.
func arrange(all []Field, sectionID string, ordered []Field) []Field {
	out := make([]Field, 0, len(all))
	next := 0
	for _, f := range all {
		if SectionID(f.Path.Parent()) == sectionID && next < len(ordered) {
			out = append(out, ordered[next])
			next++
			continue
		}
		out = append(out, f)
	}
	return out
}

// Submit rebuilds the document from an edited field list and saves it.
func (s *Session) Submit(ctx context.Context, fields []Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireViewing(); err != nil {
		return err
	}
	data, err := MarshalDocument(Rebuild(fields))
	if err != nil {
		return err
	}
	return s.commit(ctx, string(data), "Edit fields", true)
}

// Undo restores the newest history snapshot and removes it from history.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Loaded {
		return ErrNotLoaded
	}
	if len(s.state.History) == 0 {
		return ErrNothingToUndo
	}
	last := s.state.History[len(s.state.History)-1]
	if err := s.commit(ctx, last.Snapshot, "", false); err != nil {
		return err
	}
	s.state.History = s.state.History[:len(s.state.History)-1]
	return nil
}

func (s *Session) mutate(ctx context.Context, description string, fn func(doc any) (any, error)) error {
	doc, err := ParseDocument([]byte(s.state.Serialized))
	if err != nil {
		return err
	}
	next, err := fn(doc)
	if err != nil {
		return err
	}
	data, err := MarshalDocument(next)
	if err != nil {
		return err
	}
	return s.commit(ctx, string(data), description, true)
}

// commit saves serialized and only then moves the session forward. A failed
// save leaves the session exactly as it was.
func (s *Session) commit(ctx context.Context, serialized, description string, record bool) error {
	revision, err := s.store.SaveDocument(ctx, contentstore.StoredDocument{
		ID:       s.state.DocumentID,
		Content:  []byte(serialized),
		Revision: s.state.Revision,
	})
	if err != nil {
		return fmt.Errorf("save document %s: %w", s.state.DocumentID, err)
	}
	if record {
		s.state.History = append(s.state.History, HistoryEntry{
			Snapshot:    s.state.Serialized,
			Description: description,
			At:          s.now(),
		})
		if over := len(s.state.History) - s.historyLimit; over > 0 {
			s.state.History = append([]HistoryEntry(nil), s.state.History[over:]...)
		}
	}
	s.state.Serialized = serialized
	s.state.Revision = revision
	s.state.Mode = ModeViewing
	s.state.PendingRename = nil
	s.state.PendingAdd = nil
	s.refresh()
	return nil
}

type SectionView struct {
	Section
	Expanded bool `json:"expanded"`
}

type View struct {
	DocumentID    string         `json:"document_id"`
	Sections      []SectionView  `json:"sections"`
	Mode          Mode           `json:"mode"`
	PendingRename *PendingRename `json:"pending_rename,omitempty"`
	PendingAdd    *PendingAdd    `json:"pending_add,omitempty"`
	History       []HistoryEntry `json:"history"`
	Revision      int64          `json:"revision"`
	Error         string         `json:"error,omitempty"`
}

// View is the render model of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.clone()
	v := View{
		DocumentID:    st.DocumentID,
		Sections:      make([]SectionView, 0, len(s.sections)),
		Mode:          st.Mode,
		PendingRename: st.PendingRename,
		PendingAdd:    st.PendingAdd,
		History:       st.History,
		Revision:      st.Revision,
	}
	if v.History == nil {
		v.History = []HistoryEntry{}
	}
	if s.invalid != nil {
		v.Error = s.invalid.Error()
		return v
	}
	for _, sec := range s.sections {
		v.Sections = append(v.Sections, SectionView{Section: sec, Expanded: s.isExpanded(sec.ID)})
	}
	return v
}
