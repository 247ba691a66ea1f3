package handler

import (
	"net/http"

	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/utils"
)

func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.thread.GetAll(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to fetch threads")
		return
	}
	utils.WriteJSON(w, http.StatusOK, threads)
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	// closed window answers 403 even for bodies that would not decode
	if err := h.thread.CheckPostingWindow(); err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to create thread")
		return
	}

	var body api.CreatePostRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to create thread")
		return
	}

	thread, err := h.thread.Create(r.Context(), body.Body, body.UserId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to create thread")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, thread)
}
