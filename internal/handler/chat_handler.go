package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
)

// OpenChat returns the chat with a participant, creating it on first contact.
func (h *Handler) OpenChat(c *gin.Context) {
	var req domain.CreateChatRequest
	if !bindJSON(c, &req) {
		return
	}

	chat, created, err := h.svc.Chats.Open(c.Request.Context(), actor(c), &req)
	if err != nil {
		handleError(c, err, "failed to open chat")
		return
	}

	if created {
		response.Created(c, chat)
		return
	}
	response.Success(c, chat)
}

func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.svc.Chats.List(c.Request.Context(), actor(c))
	if err != nil {
		handleError(c, err, "failed to list chats")
		return
	}

	response.Success(c, chats)
}

// ListMessages pages backwards through a chat with ?before and ?limit.
func (h *Handler) ListMessages(c *gin.Context) {
	var q domain.MessageQuery
	if !bindQuery(c, &q) {
		return
	}
	before, err := q.BeforeTime()
	if err != nil {
		response.BadRequest(c, "before must be an RFC3339 timestamp")
		return
	}

	messages, err := h.svc.Chats.Messages(c.Request.Context(), actor(c), c.Param("id"), before, q.Limit)
	if err != nil {
		handleError(c, err, "failed to list messages")
		return
	}

	response.Success(c, messages)
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req domain.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.svc.Chats.Send(c.Request.Context(), actor(c), c.Param("id"), req.Content)
	if err != nil {
		handleError(c, err, "failed to send message")
		return
	}

	response.Created(c, msg)
}

func (h *Handler) MarkChatRead(c *gin.Context) {
	count, err := h.svc.Chats.MarkRead(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "failed to mark chat read")
		return
	}

	response.Success(c, gin.H{"updated": count})
}
