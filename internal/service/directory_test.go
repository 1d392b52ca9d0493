package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tailfin-labs/tailfin/internal/domain/model"
	"github.com/tailfin-labs/tailfin/internal/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildDirectory(t *testing.T) {
	jobs := []model.Job{
		{ID: "job-1", Category: model.CategoryMintActivity, Params: json.RawMessage(`{"mintAddress":"MintA"}`)},
		{ID: "job-2", Category: model.CategoryProgramInteractions, Params: json.RawMessage(`{"programId":"ProgB"}`)},
		{ID: "job-3", Category: model.CategoryMintActivity, Params: json.RawMessage(`{"mintAddress":"MintA"}`)},
		{ID: "job-4", Category: model.CategoryMintActivity, Params: json.RawMessage(`{"wrong":"key"}`)},
	}

	dir := BuildDirectory(jobs)
	require.Len(t, dir, 2)
	require.Len(t, dir["MintA"], 2)
	assert.Equal(t, "job-1", dir["MintA"][0].JobID)
	assert.Equal(t, "job-3", dir["MintA"][1].JobID)
	require.Len(t, dir["ProgB"], 1)
	assert.Equal(t, model.CategoryProgramInteractions, dir["ProgB"][0].Category)
}

func TestDirectoryService_Current_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cached := model.Directory{
		"MintA": {{JobID: "job-1", Category: model.CategoryMintActivity}},
	}

	mockJobs := mocks.NewMockJobRepository(ctrl)
	mockCache := mocks.NewMockDirectoryCache(ctrl)
	mockCache.EXPECT().Get(gomock.Any()).Return(cached, true, nil)

	svc := NewDirectoryService(DirectoryServiceOptions{
		Jobs:   mockJobs,
		Cache:  mockCache,
		Logger: testLogger(),
	})

	dir, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, dir)
}

func TestDirectoryService_Current_CacheMissRebuilds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockJobs := mocks.NewMockJobRepository(ctrl)
	mockJobs.EXPECT().ListActive(gomock.Any()).Return([]model.Job{
		{ID: "job-1", Category: model.CategoryMintActivity, Params: json.RawMessage(`{"mintAddress":"MintA"}`)},
	}, nil)

	mockCache := mocks.NewMockDirectoryCache(ctrl)
	mockCache.EXPECT().Get(gomock.Any()).Return(nil, false, nil)
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), time.Minute).Return(nil)

	svc := NewDirectoryService(DirectoryServiceOptions{
		Jobs:     mockJobs,
		Cache:    mockCache,
		CacheTTL: time.Minute,
		Logger:   testLogger(),
	})

	dir, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Len(t, dir["MintA"], 1)
}

func TestDirectoryService_Current_CacheErrorFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockJobs := mocks.NewMockJobRepository(ctrl)
	mockJobs.EXPECT().ListActive(gomock.Any()).Return(nil, nil)

	mockCache := mocks.NewMockDirectoryCache(ctrl)
	mockCache.EXPECT().Get(gomock.Any()).Return(nil, false, errors.New("redis down"))
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	svc := NewDirectoryService(DirectoryServiceOptions{
		Jobs:   mockJobs,
		Cache:  mockCache,
		Logger: testLogger(),
	})

	dir, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dir)
}

func TestDirectoryService_Rebuild_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockJobs := mocks.NewMockJobRepository(ctrl)
	mockJobs.EXPECT().ListActive(gomock.Any()).Return(nil, errors.New("db down"))

	svc := NewDirectoryService(DirectoryServiceOptions{
		Jobs:   mockJobs,
		Logger: testLogger(),
	})

	_, err := svc.Rebuild(context.Background())
	require.Error(t, err)
}

func TestDirectoryService_NilCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockJobs := mocks.NewMockJobRepository(ctrl)
	mockJobs.EXPECT().ListActive(gomock.Any()).Return(nil, nil)

	svc := NewDirectoryService(DirectoryServiceOptions{
		Jobs:   mockJobs,
		Logger: testLogger(),
	})

	_, err := svc.Current(context.Background())
	require.NoError(t, err)
	svc.Invalidate(context.Background())
}
