package server

import (
	"net/http"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/trees"
)

const treePasswordHeader = "X-Tree-Password"

// GetTreeHandler returns a user's tree. A locked tree is only shown to its
// owner or with the password in the X-Tree-Password header.
func (s *Server) GetTreeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := s.deps.Trees.Get(r.Context(), currentUser(r), r.PathValue("userId"), r.Header.Get(treePasswordHeader))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tree)
	}
}

type saveTreeRequest struct {
	Decorations trees.Decorations `json:"decorations"`
}

func (s *Server) SaveTreeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveTreeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Decorations == nil {
			s.writeError(w, r, apperrors.Public(apperrors.ErrInvalidRequest, "decorations are required"))
			return
		}
		tree, err := s.deps.Trees.SaveDecorations(r.Context(), currentUser(r), req.Decorations)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tree)
	}
}
