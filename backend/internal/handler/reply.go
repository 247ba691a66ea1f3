package handler

import (
	"net/http"

	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/utils"
)

func (h *Handler) GetReplies(w http.ResponseWriter, r *http.Request) {
	threadId, err := parseThreadId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to fetch replies")
		return
	}

	thread, replies, err := h.thread.GetWithReplies(r.Context(), threadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to fetch replies")
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ThreadRepliesResponse{Thread: thread, Replies: replies})
}

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	if err := h.reply.CheckPostingWindow(); err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to create reply")
		return
	}

	threadId, err := parseThreadId(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to create reply")
		return
	}

	var body api.CreatePostRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to create reply")
		return
	}

	reply, err := h.reply.Create(r.Context(), threadId, body.Body, body.UserId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err, "Failed to create reply")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, reply)
}
