// Package mocks provides gomock implementations of the portal's ports for service and handler tests.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	auth := mocks.NewMockAuthenticator(ctrl)
//	auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(grant, nil)
package mocks

// Generate mocks for every interface in internal/ports.
// Authenticator: Login, Register
// ClientStorage, LocalStorage: per-browser persisted session keys
// UserDirectory, PaymentLedger, EventCatalog, GalleryStore, ContactInbox, StatsSource: club API
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/debate-club/portal/internal/ports Authenticator,ClientStorage,ContactInbox,EventCatalog,GalleryStore,LocalStorage,PaymentLedger,StatsSource,UserDirectory
