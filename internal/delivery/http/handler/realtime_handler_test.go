package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediconnect/internal/delivery/http/middleware"
	"mediconnect/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// replaySubscriber delivers a fixed set of events and then ends the stream.
type replaySubscriber struct {
	events []entity.ChangeEvent
	tables []string
}

func (s *replaySubscriber) Subscribe(ctx context.Context, table string) (<-chan entity.ChangeEvent, func() error, error) {
	s.tables = append(s.tables, table)
	ch := make(chan entity.ChangeEvent, len(s.events))
	for _, e := range s.events {
		ch <- e
	}
	close(ch)
	return ch, func() error { return nil }, nil
}

func streamRequest(userID uuid.UUID, table string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/"+table, nil)
	req = mux.SetURLVars(req, map[string]string{"table": table})
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRealtimeStream_OnlySendsVisibleEvents(t *testing.T) {
	me := uuid.New()
	other := uuid.New()
	sub := &replaySubscriber{events: []entity.ChangeEvent{
		{Table: "notifications", Type: entity.ChangeInsert, RecordID: "mine", Audience: []uuid.UUID{me}},
		{Table: "notifications", Type: entity.ChangeInsert, RecordID: "theirs", Audience: []uuid.UUID{other}},
	}}
	h := NewRealtimeHandler(sub, silentLogger())

	rec := httptest.NewRecorder()
	h.Stream(rec, streamRequest(me, "notifications"))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, `"record_id":"mine"`)
	assert.NotContains(t, body, "theirs")
	assert.Equal(t, 1, strings.Count(body, "event: INSERT"))
}

func TestRealtimeStream_PublicEventsReachEveryone(t *testing.T) {
	sub := &replaySubscriber{events: []entity.ChangeEvent{
		{Table: "community_posts", Type: entity.ChangeDelete, RecordID: "post-1"},
	}}
	h := NewRealtimeHandler(sub, silentLogger())

	rec := httptest.NewRecorder()
	h.Stream(rec, streamRequest(uuid.New(), "community_posts"))

	assert.Contains(t, rec.Body.String(), "event: DELETE")
	assert.Contains(t, rec.Body.String(), `"record_id":"post-1"`)
}

func TestRealtimeStream_RejectsUnknownTable(t *testing.T) {
	sub := &replaySubscriber{}
	h := NewRealtimeHandler(sub, silentLogger())

	rec := httptest.NewRecorder()
	h.Stream(rec, streamRequest(uuid.New(), "users"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, sub.tables)
}
