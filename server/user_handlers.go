package server

import (
	"net/http"
	"strings"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/users"
)

// searchLimit caps GET /users/search results.
const searchLimit = 20

type meResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	StudentID          string    `json:"studentId"`
	CreatedAt          time.Time `json:"createdAt"`
	IsMailboxProtected bool      `json:"isMailboxProtected"`
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := currentUser(r)
		writeJSON(w, http.StatusOK, meResponse{
			ID:                 u.ID,
			Name:               u.Name,
			Email:              u.Email,
			StudentID:          u.StudentID,
			CreatedAt:          u.CreatedAt,
			IsMailboxProtected: u.MailboxProtected,
		})
	}
}

func (s *Server) SearchUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("query"))
		if query == "" {
			writeJSON(w, http.StatusOK, []users.Summary{})
			return
		}
		found, err := s.deps.Users.Search(r.Context(), query, searchLimit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out := make([]users.Summary, 0, len(found))
		for _, u := range found {
			out = append(out, u.Summary())
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type mailboxRequest struct {
	IsProtected *bool  `json:"isProtected"`
	Password    string `json:"password,omitempty"`
}

type mailboxResponse struct {
	IsMailboxProtected bool `json:"isMailboxProtected"`
}

func (s *Server) UpdateMailboxHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mailboxRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.IsProtected == nil {
			s.writeError(w, r, apperrors.Public(apperrors.ErrInvalidRequest, "isProtected is required"))
			return
		}

		hash, err := users.LockPasswordHash(*req.IsProtected, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.deps.Users.UpdateMailbox(r.Context(), currentUser(r).ID, *req.IsProtected, hash); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mailboxResponse{IsMailboxProtected: *req.IsProtected})
	}
}

type treeLockRequest struct {
	IsLocked *bool  `json:"isLocked"`
	Password string `json:"password,omitempty"`
}

func (s *Server) UpdateTreeLockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req treeLockRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.IsLocked == nil {
			s.writeError(w, r, apperrors.Public(apperrors.ErrInvalidRequest, "isLocked is required"))
			return
		}

		tree, err := s.deps.Trees.SetLock(r.Context(), currentUser(r), *req.IsLocked, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tree)
	}
}
