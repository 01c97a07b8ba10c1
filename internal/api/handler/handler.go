package handler

import "github.com/SumireDoi/LocaConne/internal/service"

// Handler bundles the services exposed over HTTP.
type Handler struct {
	postService service.PostService
}

func New(postService service.PostService) *Handler {
	return &Handler{postService: postService}
}
