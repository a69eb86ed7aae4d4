package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/conceptmap/pkg/buildinfo"
	"github.com/matzehuels/conceptmap/pkg/concept"
	cmerrors "github.com/matzehuels/conceptmap/pkg/errors"
	pkgio "github.com/matzehuels/conceptmap/pkg/io"
	"github.com/matzehuels/conceptmap/pkg/render/nodelink"
	"github.com/matzehuels/conceptmap/pkg/userdata"
)

type healthResponse struct {
	Status string         `json:"status"`
	Nodes  int            `json:"nodes"`
	Build  buildinfo.Info `json:"build"`
}

type nodeSummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Dependencies []string `json:"dependencies"`
}

type setResponse struct {
	ID  string   `json:"id"`
	IDs []string `json:"ids"`
}

type membershipResponse struct {
	ID     string `json:"id"`
	Other  string `json:"other"`
	Result bool   `json:"result"`
}

type errorResponse struct {
	Code  cmerrors.Code `json:"code"`
	Error string        `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Nodes: s.Graph().Len(), Build: buildinfo.Get()})
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.Graph().Nodes()
	out := make([]nodeSummary, 0, len(nodes))
	for _, n := range nodes {
		deps := n.DependencyIDs()
		if deps == nil {
			deps = []string{}
		}
		out = append(out, nodeSummary{ID: n.ID, Title: n.DisplayTitle(), Dependencies: deps})
	}
	writeJSON(w, http.StatusOK, out)
}

// getNode returns one node record. With ?set=map it returns the records
// of the node and all of its ancestors instead.
func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.nodeParam(w, r, "id")
	if !ok {
		return
	}
	g := s.Graph()
	switch set := r.URL.Query().Get("set"); set {
	case "":
		n, err := g.Get(id)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pkgio.FromRecord(n.Record()))
	case "map":
		sub, err := g.Subgraph(id)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pkgio.FromRecords(sub.Records()))
	default:
		s.fail(w, cmerrors.New(cmerrors.ErrCodeInvalidInput, "unknown set %q (want map)", set))
	}
}

func (s *Server) ancestors(w http.ResponseWriter, r *http.Request) {
	s.querySet(w, r, (*concept.Graph).Ancestors)
}

func (s *Server) unique(w http.ResponseWriter, r *http.Request) {
	s.querySet(w, r, (*concept.Graph).UniqueDependencies)
}

func (s *Server) isAncestor(w http.ResponseWriter, r *http.Request) {
	s.queryMember(w, r, "candidate", (*concept.Graph).IsAncestor)
}

func (s *Server) isUnique(w http.ResponseWriter, r *http.Request) {
	s.queryMember(w, r, "dep", (*concept.Graph).IsUniqueDependency)
}

func (s *Server) querySet(w http.ResponseWriter, r *http.Request, query func(*concept.Graph, string) (concept.Set, error)) {
	id, ok := s.nodeParam(w, r, "id")
	if !ok {
		return
	}
	set, err := query(s.Graph(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	ids := set.Sorted()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, setResponse{ID: id, IDs: ids})
}

func (s *Server) queryMember(w http.ResponseWriter, r *http.Request, param string, query func(*concept.Graph, string, string) (bool, error)) {
	id, ok := s.nodeParam(w, r, "id")
	if !ok {
		return
	}
	other, ok := s.nodeParam(w, r, param)
	if !ok {
		return
	}
	result, err := query(s.Graph(), id, other)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membershipResponse{ID: id, Other: other, Result: result})
}

func (s *Server) graphDOT(w http.ResponseWriter, r *http.Request) {
	dot, ok := s.dot(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) graphSVG(w http.ResponseWriter, r *http.Request) {
	dot, ok := s.dot(w, r)
	if !ok {
		return
	}
	svg, cached, err := s.renderer.SVG(r.Context(), dot)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	_, _ = w.Write(svg)
}

// dot builds the map for the query options unique, key and user.
func (s *Server) dot(w http.ResponseWriter, r *http.Request) (string, bool) {
	g := s.Graph()
	q := r.URL.Query()
	var opts nodelink.Options
	if v := q.Get("unique"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.fail(w, cmerrors.Wrap(cmerrors.ErrCodeInvalidInput, err, "invalid unique flag %q", v))
			return "", false
		}
		opts.UniqueOnly = b
	}
	if key := q.Get("key"); key != "" {
		if _, err := g.Get(key); err != nil {
			s.fail(w, err)
			return "", false
		}
		opts.KeyNode = key
	}
	if uid := q.Get("user"); uid != "" {
		st, ok := s.loadUser(w, r, uid)
		if !ok {
			return "", false
		}
		opts.Learned = st.Learned()
	}

	dot, err := nodelink.ToDOT(g, opts)
	if err != nil {
		s.fail(w, err)
		return "", false
	}
	return dot, true
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	st, err := s.users.Create(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadUser(w, r, chi.URLParam(r, "uid"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if err := cmerrors.ValidateUserID(uid); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.users.Delete(r.Context(), uid); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setLearned marks or unmarks a concept as learned. Only concepts in the
// served map can be marked.
func (s *Server) setLearned(status bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")
		if err := cmerrors.ValidateUserID(uid); err != nil {
			s.fail(w, err)
			return
		}
		id, ok := s.nodeParam(w, r, "id")
		if !ok {
			return
		}
		if _, err := s.Graph().Get(id); err != nil {
			s.fail(w, err)
			return
		}
		st, err := s.users.Update(r.Context(), uid, func(st *userdata.State) bool {
			if !st.SetLearned(id, status) {
				return false
			}
			st.SetClicked(id)
			return true
		})
		if err != nil {
			s.failUser(w, uid, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// unlearned lists what a reader still has to learn before a concept,
// prerequisites first.
func (s *Server) unlearned(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadUser(w, r, chi.URLParam(r, "uid"))
	if !ok {
		return
	}
	id, ok := s.nodeParam(w, r, "id")
	if !ok {
		return
	}
	ids, err := s.Graph().Unlearned(id, st.Learned())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, setResponse{ID: id, IDs: ids})
}

func (s *Server) loadUser(w http.ResponseWriter, r *http.Request, uid string) (*userdata.State, bool) {
	if err := cmerrors.ValidateUserID(uid); err != nil {
		s.fail(w, err)
		return nil, false
	}
	st, err := s.users.Get(r.Context(), uid)
	if err != nil {
		s.failUser(w, uid, err)
		return nil, false
	}
	return st, true
}

func (s *Server) failUser(w http.ResponseWriter, uid string, err error) {
	if errors.Is(err, userdata.ErrNotFound) {
		err = cmerrors.Wrap(cmerrors.ErrCodeNotFound, err, "no user %q", uid)
	}
	s.fail(w, err)
}

// nodeParam reads and validates a concept id from the route.
func (s *Server) nodeParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if err := cmerrors.ValidateNodeID(id); err != nil {
		s.fail(w, err)
		return "", false
	}
	return id, true
}

// fail writes err as a JSON error. Internal errors are logged and their
// details withheld from the client.
func (s *Server) fail(w http.ResponseWriter, err error) {
	err = cmerrors.FromGraph(err)
	code := cmerrors.GetCode(err)
	status := cmerrors.HTTPStatus(code)
	msg := cmerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
