package handlers

import (
	"net/http"

	"catframe/internal/models"
	"catframe/internal/service"
	"catframe/internal/validation"

	"github.com/gin-gonic/gin"
)

// @Summary      List movies
// @Description  Case-insensitive substring filters on title, director and genre; newest release first.
// @Tags         movies
// @Produce      json
// @Param        skip      query     int     false  "Offset"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Param        title     query     string  false  "Title contains"
// @Param        director  query     string  false  "Director contains"
// @Param        genre     query     string  false  "Genre contains"
// @Param        min_year  query     int     false  "Released in or after"
// @Param        max_year  query     int     false  "Released in or before"
// @Success      200       {array}   models.Movie
// @Failure      422       {object}  ValidationErrorResponse
// @Router       /movies [get]
func (h *Handler) listMovies(c *gin.Context) {
	var violations validation.Errors
	f := service.MovieFilter{
		Title:    c.Query("title"),
		Director: c.Query("director"),
		Genre:    c.Query("genre"),
		MinYear:  queryIntPtr(c, "min_year", &violations),
		MaxYear:  queryIntPtr(c, "max_year", &violations),
	}
	queryInt(c, "skip", &f.Skip, &violations)
	queryInt(c, "limit", &f.Limit, &violations)
	if len(violations) > 0 {
		writeValidationErrors(c, violations)
		return
	}

	movies, err := h.services.ListMovies(c.Request.Context(), f)
	if err != nil {
		h.writeServiceError(c, err, "movies_list_failed")
		return
	}
	c.JSON(http.StatusOK, movies)
}

// @Summary      Get a movie
// @Tags         movies
// @Produce      json
// @Param        id   path      int  true  "Movie ID"
// @Success      200  {object}  models.Movie
// @Failure      404  {object}  ErrorResponse
// @Router       /movies/{id} [get]
func (h *Handler) getMovie(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.services.GetMovie(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err, "movie_get_failed", "movie_id", id)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary      Create a movie
// @Tags         movies
// @Accept       json
// @Produce      json
// @Param        body  body      models.MovieInput  true  "Movie"
// @Success      201   {object}  models.Movie
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      422   {object}  ValidationErrorResponse
// @Router       /movies [post]
// @Security     BearerAuth
func (h *Handler) createMovie(c *gin.Context) {
	var input models.MovieInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	m, err := h.services.CreateMovie(c.Request.Context(), input)
	if err != nil {
		h.writeServiceError(c, err, "movie_create_failed")
		return
	}
	h.log.Infow("movie_created", "movie_id", m.ID, "by", currentUser(c).Username)
	c.JSON(http.StatusCreated, m)
}

// @Summary      Replace a movie
// @Description  Fields missing from the body are cleared.
// @Tags         movies
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Movie ID"
// @Param        body  body      models.MovieInput  true  "Movie"
// @Success      200   {object}  models.Movie
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ValidationErrorResponse
// @Router       /movies/{id} [put]
// @Security     BearerAuth
func (h *Handler) replaceMovie(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.MovieInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	m, err := h.services.ReplaceMovie(c.Request.Context(), id, input)
	if err != nil {
		h.writeServiceError(c, err, "movie_replace_failed", "movie_id", id)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary      Update some fields of a movie
// @Tags         movies
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Movie ID"
// @Param        body  body      models.MovieInput  true  "Fields to change"
// @Success      200   {object}  models.Movie
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ValidationErrorResponse
// @Router       /movies/{id} [patch]
// @Security     BearerAuth
func (h *Handler) patchMovie(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.MovieInput
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	m, err := h.services.PatchMovie(c.Request.Context(), id, input)
	if err != nil {
		h.writeServiceError(c, err, "movie_patch_failed", "movie_id", id)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary      Delete a movie
// @Tags         movies
// @Param        id   path  int  true  "Movie ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /movies/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteMovie(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.DeleteMovie(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err, "movie_delete_failed", "movie_id", id)
		return
	}
	h.log.Infow("movie_deleted", "movie_id", id, "by", currentUser(c).Username)
	c.Status(http.StatusNoContent)
}
