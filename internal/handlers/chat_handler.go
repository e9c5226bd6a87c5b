package handlers

import (
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ChatHandler handles direct message requests
type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// RegisterChatRoutes registers chat routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chats", h.GetChats)
	g.POST("/chats", h.GetOrCreateChat)
	g.GET("/chats/unread-count", h.GetUnreadCount)
	g.GET("/chats/:id/messages", h.GetMessages)
	g.POST("/chats/:id/messages", h.SendMessage)
	g.POST("/chats/:id/media", h.SendMediaMessage)
	g.POST("/chats/:id/read", h.MarkRead)
	g.POST("/chats/:id/delivered", h.MarkDelivered)
}

func (h *ChatHandler) GetChats(c echo.Context) error {
	chats, err := h.chat.GetChats(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, chats)
}

func (h *ChatHandler) GetOrCreateChat(c echo.Context) error {
	var req models.CreateChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	chat, err := h.chat.GetOrCreateChat(c.Request().Context(), getUserIDFromContext(c), req.OtherUserID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"chat_id": chat.ID})
}

func (h *ChatHandler) GetUnreadCount(c echo.Context) error {
	total, err := h.chat.GetUnreadCount(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"unread": total})
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	messages, err := h.chat.GetMessages(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.chat.SendMessage(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), req.Content)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respond(c, http.StatusCreated, msg)
}

func (h *ChatHandler) SendMediaMessage(c echo.Context) error {
	var req models.SendMediaMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.chat.SendMediaMessage(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respond(c, http.StatusCreated, msg)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	n, err := h.chat.MarkRead(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"updated": n})
}

func (h *ChatHandler) MarkDelivered(c echo.Context) error {
	n, err := h.chat.MarkDelivered(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return respondOK(c, echo.Map{"updated": n})
}
