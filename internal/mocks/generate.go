// Package mocks provides mock implementations for testing the tailfin pipeline.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core ports. The mocks are generated using go:generate directives.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for JobRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/tailfin-labs/tailfin/internal/core JobRepository

// Generate mock for CredentialRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=credential_repository_mock.go github.com/tailfin-labs/tailfin/internal/core CredentialRepository

// Generate mock for QueueRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=queue_repository_mock.go github.com/tailfin-labs/tailfin/internal/core QueueRepository

// Generate mock for SubscriptionClient interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=subscription_client_mock.go github.com/tailfin-labs/tailfin/internal/core SubscriptionClient

// Generate mock for DirectoryCache interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=directory_cache_mock.go github.com/tailfin-labs/tailfin/internal/core DirectoryCache

// Generate mocks for DestinationPools and Destination interfaces from internal/core package.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=destination_pools_mock.go github.com/tailfin-labs/tailfin/internal/core DestinationPools,Destination
