package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/michaelbrown/crucible/internal/config"
	"github.com/michaelbrown/crucible/internal/llm"
	"github.com/michaelbrown/crucible/internal/storage"
)

// ActiveChat serializes the chat turns of one conversation and caches its
// provider client.
type ActiveChat struct {
	client llm.Client
	model  string
	mu     sync.Mutex // one chat turn at a time per conversation
}

// ChatManager tracks which conversations have an ActiveChat in memory.
type ChatManager struct {
	mu    sync.RWMutex
	chats map[string]*ActiveChat
}

// NewChatManager creates an empty ChatManager.
func NewChatManager() *ChatManager {
	return &ChatManager{chats: make(map[string]*ActiveChat)}
}

// GetOrCreate returns the active chat for a conversation, building the
// provider client on first use.
func (cm *ChatManager) GetOrCreate(conv *storage.Conversation, cfg *config.Config) (*ActiveChat, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if ac, ok := cm.chats[conv.ID]; ok {
		return ac, nil
	}

	provider, err := cfg.Provider(conv.Provider)
	if err != nil {
		return nil, err
	}

	model := conv.Model
	if model == "" {
		model = provider.Models["default"]
	}

	ac := &ActiveChat{
		client: llm.NewClient(provider.BaseURL, provider.APIKey, model),
		model:  model,
	}
	cm.chats[conv.ID] = ac
	return ac, nil
}

// Remove drops a conversation's active chat.
func (cm *ChatManager) Remove(conversationID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.chats, conversationID)
}

// --- Conversation handlers ---

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	opts := storage.ConversationListOptions{}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			opts.Offset = n
		}
	}

	conversations, err := s.store.ListConversations(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if conversations == nil {
		conversations = []storage.Conversation{}
	}
	writeData(w, http.StatusOK, conversations)
}

type createConversationRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Title    string `json:"title"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	providerName := req.Provider
	if providerName == "" {
		providerName = s.cfg.DefaultProvider
	}

	conv := &storage.Conversation{
		ID:       uuid.New().String(),
		Title:    req.Title,
		Provider: providerName,
		Model:    req.Model,
	}

	if err := s.store.CreateConversation(r.Context(), conv); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeData(w, http.StatusCreated, conv)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.store.GetConversation(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "conversation not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeData(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Drop the in-memory chat first
	s.chats.Remove(id)

	if err := s.store.DeleteConversation(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "conversation not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conv, err := s.store.GetConversation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	messages, err := s.store.LoadMessages(r.Context(), conv.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, storage.ExportMarkdown(conv, messages))
}

// --- Message handlers ---

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	messages, err := s.store.LoadMessages(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if messages == nil {
		messages = []llm.Message{}
	}
	writeData(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	conv, err := s.store.GetConversation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	reply, err := s.chatTurn(r.Context(), conv, req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeData(w, http.StatusOK, reply)
}

// chatTurn appends a user message to a conversation, asks the provider for a
// reply, and persists the updated history.
func (s *Server) chatTurn(ctx context.Context, conv *storage.Conversation, content string) (llm.Message, error) {
	if !s.cfg.HasProviders() {
		return llm.Message{}, fmt.Errorf("no chat provider configured")
	}

	ac, err := s.chats.GetOrCreate(conv, s.cfg)
	if err != nil {
		return llm.Message{}, fmt.Errorf("initializing chat: %w", err)
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()

	// Auto-generate title from first message
	if conv.Title == "" {
		conv.Title = generateTitle(content)
		s.store.UpdateConversation(ctx, conv)
	}

	history, err := s.store.LoadMessages(ctx, conv.ID)
	if err != nil {
		return llm.Message{}, fmt.Errorf("loading history: %w", err)
	}
	history = append(history, llm.UserMessage(content))

	resp, err := ac.client.ChatCompletion(ctx, history)
	if err != nil {
		return llm.Message{}, fmt.Errorf("chat error: %w", err)
	}
	history = append(history, resp.Message)

	if err := s.store.SaveMessages(ctx, conv.ID, history); err != nil {
		return llm.Message{}, fmt.Errorf("saving messages: %w", err)
	}
	return resp.Message, nil
}

// generateTitle creates a conversation title from the first user message.
func generateTitle(firstMessage string) string {
	t := strings.TrimSpace(firstMessage)
	if len(t) > 80 {
		t = t[:80] + "..."
	}
	return t
}
