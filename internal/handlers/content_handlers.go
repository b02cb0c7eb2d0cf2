package handlers

import (
	"net/http"

	"game_store_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the blog and the public contact form.
type ContentHandler struct {
	blog    services.BlogService
	contact services.ContactService
}

func NewContentHandler(bs services.BlogService, cs services.ContactService) *ContentHandler {
	return &ContentHandler{blog: bs, contact: cs}
}

func (h *ContentHandler) ListPublishedPosts(c *gin.Context) {
	page, pageSize := pageParams(c)
	posts, total, err := h.blog.ListPublished(c.Request.Context(), optString(c, "category"), page, pageSize)
	if err != nil {
		respondServiceError(c, err, "ListPublishedPosts: blogService.ListPublished failed", "Failed to fetch posts.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: posts, Total: total, Page: page, PageSize: pageSize})
}

func (h *ContentHandler) GetPublishedPost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, err := h.blog.GetPublished(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetPublishedPost: blogService.GetPublished failed", "Failed to fetch post.")
		return
	}
	c.JSON(http.StatusOK, post)
}

// RegisterView increments the view counter of a published post.
func (h *ContentHandler) RegisterView(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	views, err := h.blog.IncrementViews(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "RegisterView: blogService.IncrementViews failed", "Failed to register view.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

func (h *ContentHandler) ListPosts(c *gin.Context) {
	page, pageSize := pageParams(c)
	posts, total, err := h.blog.ListAll(c.Request.Context(), optString(c, "category"), page, pageSize)
	if err != nil {
		respondServiceError(c, err, "ListPosts: blogService.ListAll failed", "Failed to fetch posts.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: posts, Total: total, Page: page, PageSize: pageSize})
}

func (h *ContentHandler) GetPost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, err := h.blog.GetPost(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetPost: blogService.GetPost failed", "Failed to fetch post.")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *ContentHandler) CreatePost(c *gin.Context) {
	var req services.BlogPostRequest
	if !bindJSON(c, &req, "CreatePost") {
		return
	}
	post, err := h.blog.CreatePost(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "CreatePost: blogService.CreatePost failed", "Failed to create post.")
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *ContentHandler) UpdatePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.BlogPostRequest
	if !bindJSON(c, &req, "UpdatePost") {
		return
	}
	post, err := h.blog.UpdatePost(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdatePost: blogService.UpdatePost failed", "Failed to update post.")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *ContentHandler) DeletePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.blog.DeletePost(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeletePost: blogService.DeletePost failed", "Failed to delete post.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// SendContact godoc
// @Summary  Relay the public contact form to the store inbox
// @Tags     contact
// @Param    body body services.ContactRequest true "Message"
// @Success  200 {object} map[string]interface{}
// @Failure  504 {object} utils.APIError
// @Router   /api/v1/public/contact [post]
func (h *ContentHandler) SendContact(c *gin.Context) {
	var req services.ContactRequest
	if !bindJSON(c, &req, "SendContact") {
		return
	}
	if err := h.contact.Send(c.Request.Context(), req); err != nil {
		respondServiceError(c, err, "SendContact: contactService.Send failed", "Failed to send your message.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent"})
}
