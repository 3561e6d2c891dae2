package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CommentRequest is the body of a new comment.
type CommentRequest struct {
	Text string `json:"text" example:"A classic."`
}

// @Summary      List comments of a movie
// @Tags         comments
// @Produce      json
// @Param        id     path      int  true   "Movie ID"
// @Param        skip   query     int  false  "Offset"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {array}   models.Comment
// @Failure      404    {object}  ErrorResponse
// @Router       /movies/{id}/comments [get]
func (h *Handler) listComments(c *gin.Context) {
	movieID, ok := pathID(c, "id")
	if !ok {
		return
	}
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}
	comments, err := h.services.ListComments(c.Request.Context(), movieID, skip, limit)
	if err != nil {
		h.writeServiceError(c, err, "comments_list_failed", "movie_id", movieID)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// @Summary      Comment on a movie
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Movie ID"
// @Param        body  body      CommentRequest  true  "Comment"
// @Success      201   {object}  models.Comment
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ValidationErrorResponse
// @Router       /movies/{id}/comments [post]
// @Security     BearerAuth
func (h *Handler) createComment(c *gin.Context) {
	movieID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input CommentRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	comment, err := h.services.CreateComment(c.Request.Context(), currentUser(c), movieID, input.Text)
	if err != nil {
		h.writeServiceError(c, err, "comment_create_failed", "movie_id", movieID)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// @Summary      Delete a comment
// @Description  Allowed for the comment author and for admins.
// @Tags         comments
// @Param        id          path  int  true  "Movie ID"
// @Param        comment_id  path  int  true  "Comment ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /movies/{id}/comments/{comment_id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteComment(c *gin.Context) {
	movieID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	if err := h.services.DeleteComment(c.Request.Context(), currentUser(c), movieID, commentID); err != nil {
		h.writeServiceError(c, err, "comment_delete_failed", "movie_id", movieID, "comment_id", commentID)
		return
	}
	c.Status(http.StatusNoContent)
}
