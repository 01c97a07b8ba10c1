package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SumireDoi/LocaConne/internal/service"
	"github.com/SumireDoi/LocaConne/pkg/response"
)

type submitForm struct {
	Username string `form:"username" binding:"required"`
	Text     string `form:"text" binding:"required"`
}

// SubmitPost accepts a post submission.
// @Summary Submit a post (text plus optional image)
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param username formData string true "author name"
// @Param text formData string true "post text"
// @Param image formData file false "image"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /post [post]
func (h *Handler) SubmitPost(c *gin.Context) {
	var form submitForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	in := service.SubmitInput{Username: form.Username, Text: form.Text}
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		in.Image = &service.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	if _, err := h.postService.Submit(c.Request.Context(), in); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "success"})
}

// Timeline returns all posts, newest first.
// @Summary Read the timeline
// @Tags posts
// @Produce json
// @Success 200 {object} response.Response{data=[]repository.TimelineItem}
// @Router /timeline [get]
func (h *Handler) Timeline(c *gin.Context) {
	items, err := h.postService.Timeline(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, items)
}

// PostDetail returns one post with its location fields.
// @Summary Read one post with its location detail
// @Tags posts
// @Param id path int true "post ID"
// @Produce json
// @Success 200 {object} response.Response{data=service.PostDetail}
// @Failure 404 {object} response.Response
// @Router /post/{id} [get]
func (h *Handler) PostDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}
	detail, err := h.postService.Detail(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, detail)
}
