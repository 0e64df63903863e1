package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/layout/store"
	"mercator-hq/placement/pkg/security/auth"
	"mercator-hq/placement/pkg/vocabulary"
)

// LayoutList is the body of GET /v1/layouts.
type LayoutList struct {
	Layouts []*layout.Layout `json:"layouts"`
}

// Vocabulary is the body of GET /v1/vocabulary.
type Vocabulary struct {
	Categories       []vocabulary.Category `json:"categories"`
	Tags             []TagGroup            `json:"tags"`
	Slots            []layout.Slot         `json:"slots"`
	SidebarPositions []vocabulary.Option   `json:"sidebar_positions"`
}

// LayoutTags is the body of GET /v1/layouts/{id}/tags.
type LayoutTags struct {
	LayoutID string   `json:"layout_id"`
	Tags     []string `json:"tags"`
}

// TagGroup lists the magic tags offered by one (root, end) pair.
type TagGroup struct {
	vocabulary.Pair
	Tags []string `json:"tags"`
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := s.opts.Store.ListLayouts(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if slot := r.URL.Query().Get("slot"); slot != "" {
		want, _ := layout.ParseSlot(slot)
		filtered := layouts[:0]
		for _, l := range layouts {
			if l.Slot == want {
				filtered = append(filtered, l)
			}
		}
		layouts = filtered
	}
	if layouts == nil {
		layouts = []*layout.Layout{}
	}
	writeJSON(w, http.StatusOK, LayoutList{Layouts: layouts})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	l, err := s.opts.Store.GetLayout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleLayoutTags(w http.ResponseWriter, r *http.Request) {
	l, err := s.opts.Store.GetLayout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := LayoutTags{LayoutID: l.ID, Tags: []string{}}
	for _, tag := range s.opts.Renderer.AvailableTags(l) {
		out.Tags = append(out.Tags, tag.Token())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var l layout.Layout
	if err := decodeBody(r, &l); err != nil {
		writeDecodeError(w, err)
		return
	}
	if l.ID != "" && l.ID != id {
		writeError(w, http.StatusBadRequest, codeBadRequest, "layout id does not match the path")
		return
	}
	l.ID = id

	// A body without a schema version keeps the stored record's version,
	// so an edit never changes the default priority.
	if l.SchemaVersion == 0 {
		existing, err := s.opts.Store.GetLayout(r.Context(), id)
		switch {
		case err == nil:
			l.SchemaVersion = existing.SchemaVersion
		case errors.Is(err, store.ErrNotFound):
			l.SchemaVersion = layout.SchemaCurrent
		default:
			writeStoreError(w, err)
			return
		}
	}

	if err := s.opts.Store.PutLayout(r.Context(), &l); err != nil {
		writeStoreError(w, err)
		return
	}
	s.logWrite(r, "layout stored", &l)
	writeJSON(w, http.StatusOK, &l)
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var l layout.Layout
	if err := decodeBody(r, &l); err != nil {
		writeDecodeError(w, err)
		return
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.SchemaVersion == 0 {
		l.SchemaVersion = layout.SchemaCurrent
	}

	if err := s.opts.Store.PutLayout(r.Context(), &l); err != nil {
		writeStoreError(w, err)
		return
	}
	s.logWrite(r, "layout created", &l)
	w.Header().Set("Location", "/v1/layouts/"+l.ID)
	writeJSON(w, http.StatusCreated, &l)
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.opts.Store.DeleteLayout(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.logWrite(r, "layout deleted", &layout.Layout{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DescribeVocabulary(s.opts.Registry, s.opts.Capabilities))
}

// DescribeVocabulary lists what admins can target and substitute for the
// given capabilities.
func DescribeVocabulary(reg *vocabulary.Registry, caps layout.Capabilities) Vocabulary {
	pairs := reg.TagPairs()
	tags := make([]TagGroup, 0, len(pairs))
	for _, p := range pairs {
		group := TagGroup{Pair: p}
		for _, t := range reg.Tags(p) {
			group.Tags = append(group.Tags, t.Token())
		}
		tags = append(tags, group)
	}

	return Vocabulary{
		Categories:       reg.Categories(),
		Tags:             tags,
		Slots:            layout.AvailableSlots(caps),
		SidebarPositions: reg.SidebarPositions(),
	}
}

func (s *Server) logWrite(r *http.Request, msg string, l *layout.Layout) {
	keyName := ""
	if info, ok := auth.KeyInfoFromContext(r.Context()); ok {
		keyName = info.Name
	}
	s.logger.InfoContext(r.Context(), msg,
		"layout_id", l.ID,
		"slot", l.Slot,
		"key_name", keyName,
	)
}
