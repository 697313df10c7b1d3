package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	"mediconnect/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const sseKeepAlive = 25 * time.Second

type RealtimeHandler struct {
	subscriber repository.ChangeSubscriber
	log        *logrus.Logger
}

func NewRealtimeHandler(subscriber repository.ChangeSubscriber, log *logrus.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		subscriber: subscriber,
		log:        log,
	}
}

// Stream sends row changes of one table as server-sent events
// @Summary Subscribe to table changes
// @Description Event stream of INSERT, UPDATE and DELETE changes. Only changes visible to the caller are sent.
// @Tags Realtime
// @Security BearerAuth
// @Produce text/event-stream
// @Param table path string true "appointments, consultations, notifications, messages or community_posts"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} response.Response
// @Router /realtime/{table} [get]
func (h *RealtimeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	table := mux.Vars(r)["table"]
	if !entity.RealtimeTables[table] {
		response.NotFound(w, "Unknown realtime table")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	ctx := r.Context()
	events, closeSub, err := h.subscriber.Subscribe(ctx, table)
	if err != nil {
		h.log.Warnf("Failed to subscribe user %s to %s: %+v", userID, table, err)
		response.ServiceUnavailable(w, "Realtime is unavailable")
		return
	}
	defer closeSub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if !event.VisibleTo(userID) {
				continue
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Warnf("Failed to encode %s change: %+v", table, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}
}
