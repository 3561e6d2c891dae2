package handlers

import (
	"net/http"

	"catframe/internal/models"

	"github.com/gin-gonic/gin"
)

// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        skip   query     int  false  "Offset"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {array}   models.UserResponse
// @Failure      403    {object}  ErrorResponse
// @Router       /users [get]
// @Security     BearerAuth
func (h *Handler) listUsers(c *gin.Context) {
	skip, limit, ok := pageParams(c)
	if !ok {
		return
	}
	users, err := h.services.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		h.writeServiceError(c, err, "users_list_failed")
		return
	}
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, out)
}

// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  models.UserResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := h.services.GetUser(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err, "user_get_failed", "user_id", id)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// @Summary      Toggle admin role
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  models.UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/admin [patch]
// @Security     BearerAuth
func (h *Handler) toggleAdmin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor := currentUser(c)
	u, err := h.services.ToggleAdmin(c.Request.Context(), actor, id)
	if err != nil {
		h.writeServiceError(c, err, "user_toggle_admin_failed", "user_id", id)
		return
	}
	h.log.Infow("user_admin_toggled", "user_id", u.ID, "is_admin", u.IsAdmin, "by", actor.Username)
	c.JSON(http.StatusOK, u.Public())
}

// @Summary      Delete a user
// @Tags         users
// @Param        id   path  int  true  "User ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	actor := currentUser(c)
	if err := h.services.DeleteUser(c.Request.Context(), actor, id); err != nil {
		h.writeServiceError(c, err, "user_delete_failed", "user_id", id)
		return
	}
	h.log.Infow("user_deleted", "user_id", id, "by", actor.Username)
	c.Status(http.StatusNoContent)
}
