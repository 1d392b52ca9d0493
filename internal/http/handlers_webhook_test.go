package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tailfin-labs/tailfin/internal/domain/model"
	"github.com/tailfin-labs/tailfin/internal/mocks"
	"github.com/tailfin-labs/tailfin/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func webhookFixture(t *testing.T, ctrl *gomock.Controller, dir model.Directory) (*WebhookHandlers, *mocks.MockQueueRepository, *mocks.MockJobRepository) {
	t.Helper()

	jobs := mocks.NewMockJobRepository(ctrl)
	queue := mocks.NewMockQueueRepository(ctrl)
	cache := mocks.NewMockDirectoryCache(ctrl)
	cache.EXPECT().Get(gomock.Any()).Return(dir, true, nil).AnyTimes()

	directory := service.NewDirectoryService(service.DirectoryServiceOptions{
		Jobs:   jobs,
		Cache:  cache,
		Logger: testLogger(),
	})
	matcher := service.NewMatcher(service.MatcherOptions{
		Directory: directory,
		Queue:     queue,
		Jobs:      jobs,
		Logger:    testLogger(),
	})
	handlers := NewWebhookHandlers(WebhookHandlersOptions{
		Matcher:      matcher,
		MaxBodyBytes: 1 << 20,
		Logger:       testLogger(),
	})
	return handlers, queue, jobs
}

func postWebhook(h *WebhookHandlers, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/events", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Receive(w, req)
	return w
}

func TestWebhookReceive_Batch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := model.Directory{"MintA": {{JobID: "job-1", Category: model.CategoryMintActivity}}}
	handlers, queue, jobs := webhookFixture(t, ctrl, dir)

	queue.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).Return(1, nil)
	jobs.EXPECT().TouchLastEvent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	w := postWebhook(handlers, `[{"signature":"sig-1","feePayer":"MintA"},{"signature":"sig-2","feePayer":"Nobody"}]`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["events"])
	assert.Equal(t, 1, resp["matched"])
	assert.Equal(t, 1, resp["enqueued"])
}

func TestWebhookReceive_SingleObjectWrapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := model.Directory{"MintA": {{JobID: "job-1", Category: model.CategoryMintActivity}}}
	handlers, queue, jobs := webhookFixture(t, ctrl, dir)

	queue.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).Return(1, nil)
	jobs.EXPECT().TouchLastEvent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	w := postWebhook(handlers, `{"signature":"sig-1","feePayer":"MintA"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["events"])
}

func TestWebhookReceive_EmptyBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handlers, _, _ := webhookFixture(t, ctrl, model.Directory{})

	w := postWebhook(handlers, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp["events"])
}

func TestWebhookReceive_NonArrayScalarBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handlers, _, _ := webhookFixture(t, ctrl, model.Directory{})

	w := postWebhook(handlers, `"not a batch"`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp["events"])
}

func TestWebhookReceive_MalformedBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handlers, _, _ := webhookFixture(t, ctrl, model.Directory{})

	w := postWebhook(handlers, `not json at all`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookReceive_EmptyBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handlers, _, _ := webhookFixture(t, ctrl, model.Directory{})

	w := postWebhook(handlers, `[]`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp["events"])
}

func TestWebhookReceive_OversizedBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handlers, _, _ := webhookFixture(t, ctrl, model.Directory{})
	handlers.maxBodyBytes = 16

	w := postWebhook(handlers, `[{"signature":"this body is comfortably past sixteen bytes"}]`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestWebhookReceive_MatchFailureStillAcks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := model.Directory{"MintA": {{JobID: "job-1", Category: model.CategoryMintActivity}}}
	handlers, queue, _ := webhookFixture(t, ctrl, dir)

	queue.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).Return(0, errors.New("queue down"))

	w := postWebhook(handlers, `[{"signature":"sig-1","feePayer":"MintA"}]`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["events"])
	assert.Zero(t, resp["enqueued"])
}
