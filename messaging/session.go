// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/huddle-chat/huddle/lib/backend"
	"github.com/huddle-chat/huddle/lib/ref"
	"github.com/huddle-chat/huddle/lib/schema"
	"github.com/huddle-chat/huddle/lib/secret"
)

// watchGrace is added to the client-side deadline of a watch request
// so the server's own timeout fires first.
const watchGrace = 10 * time.Second

// Session is an authenticated connection to the backend. It
// implements backend.Backend.
type Session struct {
	client *Client
	token  *secret.Buffer

	mu   sync.Mutex
	user *schema.User
}

var _ backend.Backend = (*Session)(nil)

// Client returns the client the session was created from.
func (s *Session) Client() *Client {
	return s.client
}

// Token returns the bearer token for persisting the session.
func (s *Session) Token() string {
	return s.token.String()
}

// User returns the account the session was issued for, when known from
// register, login, or a previous WhoAmI.
func (s *Session) User() (*schema.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.user != nil
}

// UserID returns the ID of the session's account, or the zero ID when
// it is not yet known.
func (s *Session) UserID() ref.UserID {
	if user, ok := s.User(); ok {
		return user.ID
	}
	return ref.UserID{}
}

// WhoAmI verifies the token and returns its account.
func (s *Session) WhoAmI(ctx context.Context) (*schema.User, error) {
	user, err := s.client.whoAmI(ctx, s.token)
	if err != nil {
		return nil, fmt.Errorf("messaging: whoami: %w", err)
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// Logout revokes the token on the server. The session is unusable
// afterwards but must still be closed.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.client.doJSON(ctx, http.MethodPost, backend.PathLogout, s.token, nil, nil); err != nil {
		return fmt.Errorf("messaging: logout: %w", err)
	}
	return nil
}

// Close releases the protected token memory.
func (s *Session) Close() error {
	return s.token.Close()
}

// CloseIdleConnections drops the client's pooled connections.
func (s *Session) CloseIdleConnections() {
	s.client.CloseIdleConnections()
}

func query[R any](ctx context.Context, s *Session, name string, args any) (R, error) {
	var result R
	if err := s.client.doJSON(ctx, http.MethodPost, backend.PathQuery+name, s.token, args, &result); err != nil {
		return result, fmt.Errorf("messaging: %s: %w", name, err)
	}
	return result, nil
}

func mutation[T any](ctx context.Context, s *Session, name string, args any) (T, error) {
	var result backend.IDResult[T]
	if err := s.client.doJSON(ctx, http.MethodPost, backend.PathMutation+name, s.token, args, &result); err != nil {
		return result.ID, fmt.Errorf("messaging: %s: %w", name, err)
	}
	return result.ID, nil
}

func (s *Session) CurrentUser(ctx context.Context) (*schema.User, error) {
	return query[*schema.User](ctx, s, backend.OpCurrentUser, nil)
}

func (s *Session) ListWorkspaces(ctx context.Context) ([]schema.Workspace, error) {
	return query[[]schema.Workspace](ctx, s, backend.OpListWorkspaces, nil)
}

func (s *Session) GetWorkspace(ctx context.Context, id ref.WorkspaceID) (*schema.Workspace, error) {
	return query[*schema.Workspace](ctx, s, backend.OpGetWorkspace, backend.IDArgs[ref.WorkspaceID]{ID: id})
}

func (s *Session) GetWorkspaceInfo(ctx context.Context, id ref.WorkspaceID) (*schema.WorkspaceInfo, error) {
	return query[*schema.WorkspaceInfo](ctx, s, backend.OpGetWorkspaceInfo, backend.IDArgs[ref.WorkspaceID]{ID: id})
}

func (s *Session) ListMembers(ctx context.Context, workspaceID ref.WorkspaceID) ([]schema.Member, error) {
	return query[[]schema.Member](ctx, s, backend.OpListMembers, backend.WorkspaceArgs{WorkspaceID: workspaceID})
}

func (s *Session) GetMember(ctx context.Context, id ref.MemberID) (*schema.Member, error) {
	return query[*schema.Member](ctx, s, backend.OpGetMember, backend.IDArgs[ref.MemberID]{ID: id})
}

func (s *Session) GetCurrentMember(ctx context.Context, workspaceID ref.WorkspaceID) (*schema.Member, error) {
	return query[*schema.Member](ctx, s, backend.OpGetCurrentMember, backend.WorkspaceArgs{WorkspaceID: workspaceID})
}

func (s *Session) ListChannels(ctx context.Context, workspaceID ref.WorkspaceID) ([]schema.Channel, error) {
	return query[[]schema.Channel](ctx, s, backend.OpListChannels, backend.WorkspaceArgs{WorkspaceID: workspaceID})
}

func (s *Session) GetChannel(ctx context.Context, id ref.ChannelID) (*schema.Channel, error) {
	return query[*schema.Channel](ctx, s, backend.OpGetChannel, backend.IDArgs[ref.ChannelID]{ID: id})
}

func (s *Session) GetConversation(ctx context.Context, id ref.ConversationID) (*schema.Conversation, error) {
	return query[*schema.Conversation](ctx, s, backend.OpGetConversation, backend.IDArgs[ref.ConversationID]{ID: id})
}

func (s *Session) GetMessage(ctx context.Context, id ref.MessageID) (*schema.MessageView, error) {
	return query[*schema.MessageView](ctx, s, backend.OpGetMessage, backend.IDArgs[ref.MessageID]{ID: id})
}

func (s *Session) GetMessages(ctx context.Context, q backend.MessagesQuery) (*backend.MessagePage, error) {
	return query[*backend.MessagePage](ctx, s, backend.OpGetMessages, q)
}

func (s *Session) CreateWorkspace(ctx context.Context, name string) (ref.WorkspaceID, error) {
	return mutation[ref.WorkspaceID](ctx, s, backend.OpCreateWorkspace, backend.NameArgs[ref.WorkspaceID]{Name: name})
}

func (s *Session) UpdateWorkspace(ctx context.Context, id ref.WorkspaceID, name string) (ref.WorkspaceID, error) {
	return mutation[ref.WorkspaceID](ctx, s, backend.OpUpdateWorkspace, backend.NameArgs[ref.WorkspaceID]{ID: id, Name: name})
}

func (s *Session) RemoveWorkspace(ctx context.Context, id ref.WorkspaceID) (ref.WorkspaceID, error) {
	return mutation[ref.WorkspaceID](ctx, s, backend.OpRemoveWorkspace, backend.IDArgs[ref.WorkspaceID]{ID: id})
}

func (s *Session) Join(ctx context.Context, id ref.WorkspaceID, joinCode string) (ref.WorkspaceID, error) {
	return mutation[ref.WorkspaceID](ctx, s, backend.OpJoin, backend.JoinArgs{ID: id, JoinCode: joinCode})
}

func (s *Session) NewJoinCode(ctx context.Context, id ref.WorkspaceID) (ref.WorkspaceID, error) {
	return mutation[ref.WorkspaceID](ctx, s, backend.OpNewJoinCode, backend.IDArgs[ref.WorkspaceID]{ID: id})
}

func (s *Session) UpdateMember(ctx context.Context, id ref.MemberID, role schema.Role) (ref.MemberID, error) {
	return mutation[ref.MemberID](ctx, s, backend.OpUpdateMember, backend.UpdateMemberArgs{ID: id, Role: role})
}

func (s *Session) RemoveMember(ctx context.Context, id ref.MemberID) (ref.MemberID, error) {
	return mutation[ref.MemberID](ctx, s, backend.OpRemoveMember, backend.IDArgs[ref.MemberID]{ID: id})
}

func (s *Session) CreateChannel(ctx context.Context, workspaceID ref.WorkspaceID, name string) (ref.ChannelID, error) {
	return mutation[ref.ChannelID](ctx, s, backend.OpCreateChannel, backend.CreateChannelArgs{WorkspaceID: workspaceID, Name: name})
}

func (s *Session) UpdateChannel(ctx context.Context, id ref.ChannelID, name string) (ref.ChannelID, error) {
	return mutation[ref.ChannelID](ctx, s, backend.OpUpdateChannel, backend.NameArgs[ref.ChannelID]{ID: id, Name: name})
}

func (s *Session) RemoveChannel(ctx context.Context, id ref.ChannelID) (ref.ChannelID, error) {
	return mutation[ref.ChannelID](ctx, s, backend.OpRemoveChannel, backend.IDArgs[ref.ChannelID]{ID: id})
}

func (s *Session) CreateOrGetConversation(ctx context.Context, workspaceID ref.WorkspaceID, memberID ref.MemberID) (ref.ConversationID, error) {
	return mutation[ref.ConversationID](ctx, s, backend.OpCreateOrGetConversation, backend.ConversationArgs{WorkspaceID: workspaceID, MemberID: memberID})
}

func (s *Session) CreateMessage(ctx context.Context, request backend.CreateMessageRequest) (ref.MessageID, error) {
	return mutation[ref.MessageID](ctx, s, backend.OpCreateMessage, request)
}

func (s *Session) UpdateMessage(ctx context.Context, id ref.MessageID, body string) (ref.MessageID, error) {
	return mutation[ref.MessageID](ctx, s, backend.OpUpdateMessage, backend.UpdateMessageArgs{ID: id, Body: body})
}

func (s *Session) RemoveMessage(ctx context.Context, id ref.MessageID) (ref.MessageID, error) {
	return mutation[ref.MessageID](ctx, s, backend.OpRemoveMessage, backend.IDArgs[ref.MessageID]{ID: id})
}

func (s *Session) ToggleReaction(ctx context.Context, messageID ref.MessageID, value string) (ref.MessageID, error) {
	return mutation[ref.MessageID](ctx, s, backend.OpToggleReaction, backend.ToggleReactionArgs{MessageID: messageID, Value: value})
}

// UploadMedia posts raw attachment bytes. The returned URL is relative
// to the backend unless the server was configured with an absolute
// media prefix; resolve it with MediaURL.
func (s *Session) UploadMedia(ctx context.Context, contentType string, data []byte) (string, error) {
	body, err := s.client.do(ctx, http.MethodPost, backend.PathMedia, s.token, contentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("messaging: upload media: %w", err)
	}
	var result backend.MediaResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("messaging: decoding upload response: %w", err)
	}
	return result.URL, nil
}

// MediaURL resolves a media URL returned by the backend into an
// absolute one.
func (s *Session) MediaURL(mediaURL string) string {
	if strings.HasPrefix(mediaURL, "/") {
		return s.client.baseURL + mediaURL
	}
	return mediaURL
}

// FetchMedia downloads an attachment by its media URL.
func (s *Session) FetchMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	if !strings.HasPrefix(mediaURL, "/") {
		return nil, fmt.Errorf("messaging: fetch media: %q is not served by this backend", mediaURL)
	}
	data, err := s.client.do(ctx, http.MethodGet, mediaURL, nil, "", nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: fetch media: %w", err)
	}
	return data, nil
}

// Watch long-polls the backend's change feed. The request deadline is
// the watch timeout plus a grace period, so a hung server surfaces as
// an error rather than blocking forever.
func (s *Session) Watch(ctx context.Context, since uint64, timeout time.Duration) (*backend.ChangeSet, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout+watchGrace)
	defer cancel()

	params := url.Values{}
	params.Set("since", strconv.FormatUint(since, 10))
	params.Set("timeout", strconv.FormatInt(timeout.Milliseconds(), 10))

	var changes backend.ChangeSet
	if err := s.client.doJSON(ctx, http.MethodGet, backend.PathWatch, s.token, nil, &changes, params); err != nil {
		return nil, fmt.Errorf("messaging: watch: %w", err)
	}
	return &changes, nil
}
