package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/placement"
	"mercator-hq/placement/pkg/render"
	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/telemetry/logging"
)

// ResolveRequest is the body of POST /v1/resolve.
type ResolveRequest struct {
	Slot    string           `json:"slot"`
	Hook    string           `json:"hook,omitempty"`
	Context *request.Context `json:"context,omitempty"`

	// Explain adds the per-candidate decisions to the response.
	Explain bool `json:"explain,omitempty"`
}

// ResolveResponse is the body returned by POST /v1/resolve.
type ResolveResponse struct {
	Slot      layout.Slot       `json:"slot"`
	Hook      string            `json:"hook,omitempty"`
	Fragments []render.Fragment `json:"fragments"`
	Trace     []TraceStep       `json:"trace,omitempty"`
}

// TraceStep is one candidate decision of an explained resolution.
type TraceStep struct {
	LayoutID string           `json:"layout_id"`
	Priority int              `json:"priority"`
	Selected bool             `json:"selected"`
	Reason   placement.Reason `json:"reason,omitempty"`
	Group    *int             `json:"group,omitempty"`
}

// IndividualRequest is the optional body of POST /v1/layouts/{id}/render.
type IndividualRequest struct {
	Context *request.Context `json:"context,omitempty"`
}

// IndividualResponse reports an individual render. Fragment is nil when
// the layout does not apply to the request.
type IndividualResponse struct {
	LayoutID string           `json:"layout_id"`
	Applied  bool             `json:"applied"`
	Fragment *render.Fragment `json:"fragment,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	slot, ok := layout.ParseSlot(req.Slot)
	switch {
	case !ok:
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("unknown slot %q", req.Slot))
		return
	case slot == layout.SlotIndividual:
		writeError(w, http.StatusBadRequest, codeBadRequest, "individual layouts are rendered by id")
		return
	case slot == layout.SlotHook && req.Hook == "":
		writeError(w, http.StatusBadRequest, codeBadRequest, "hook is required for the hook slot")
		return
	}

	ctx := logging.WithSlot(r.Context(), string(slot))
	rreq := render.Request{Slot: slot, Hook: req.Hook, Context: req.Context}

	var (
		fragments []render.Fragment
		trace     *placement.Trace
		err       error
	)
	if req.Explain {
		fragments, trace, err = s.opts.Renderer.Explain(ctx, rreq)
	} else {
		fragments, err = s.opts.Renderer.Render(ctx, rreq)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "resolve failed", "error", err)
		writeStoreError(w, err)
		return
	}

	resp := ResolveResponse{
		Slot:      slot,
		Hook:      req.Hook,
		Fragments: fragments,
		Trace:     TraceSteps(trace),
	}
	if resp.Fragments == nil {
		resp.Fragments = []render.Fragment{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRenderIndividual(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := logging.WithLayoutID(r.Context(), id)

	var req IndividualRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	f, applied, err := s.opts.Renderer.RenderIndividual(ctx, id, req.Context, time.Time{})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := IndividualResponse{LayoutID: id, Applied: applied}
	if applied {
		resp.Fragment = &f
	}
	writeJSON(w, http.StatusOK, resp)
}

// TraceSteps converts a resolution trace to its wire form.
func TraceSteps(tr *placement.Trace) []TraceStep {
	if tr == nil {
		return nil
	}
	steps := make([]TraceStep, len(tr.Steps))
	for i, st := range tr.Steps {
		steps[i] = TraceStep{
			LayoutID: st.LayoutID,
			Priority: st.Priority,
			Selected: st.Selected,
			Reason:   st.Reason,
		}
		if st.Selected && st.GroupIndex >= 0 {
			g := st.GroupIndex
			steps[i].Group = &g
		}
	}
	return steps
}
