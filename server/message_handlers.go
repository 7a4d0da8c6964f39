package server

import (
	"net/http"

	"github.com/gistree/server/messages"
)

const mailboxPasswordHeader = "X-Mailbox-Password"

func (s *Server) SendMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messages.SendRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		m, err := s.deps.Messages.Send(r.Context(), currentUser(r), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

// InboxHandler lists received messages. A protected mailbox needs the
// password in the X-Mailbox-Password header.
func (s *Server) InboxHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.deps.Messages.Inbox(r.Context(), currentUser(r), r.Header.Get(mailboxPasswordHeader))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(list))
	}
}

func (s *Server) OutboxHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.deps.Messages.Outbox(r.Context(), currentUser(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(list))
	}
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
