package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/mocks"
)

type fakeSession struct {
	token      string
	identity   *domainauth.Identity
	loggedOut  bool
	updatedIDs []domainauth.Identity
}

func signedIn(role domainauth.Role) *fakeSession {
	return &fakeSession{
		token:    "tok",
		identity: &domainauth.Identity{ID: "me", Name: "Me", Email: "me@x.com", Role: role},
	}
}

func (f *fakeSession) Token() string { return f.token }

func (f *fakeSession) Identity() (domainauth.Identity, bool) {
	if f.identity == nil {
		return domainauth.Identity{}, false
	}
	return *f.identity, true
}

func (f *fakeSession) UpdateIdentity(_ context.Context, id domainauth.Identity) {
	f.identity = &id
	f.updatedIDs = append(f.updatedIDs, id)
}

func (f *fakeSession) Logout(context.Context) {
	f.loggedOut = true
	f.token = ""
	f.identity = nil
}

func TestWithToken_RequiresSignIn(t *testing.T) {
	called := false
	_, err := withToken(context.Background(), &fakeSession{}, func(string) (int, error) {
		called = true
		return 0, nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
	assert.False(t, called)
}

func TestWithToken_LogsOutOnRejectedToken(t *testing.T) {
	sess := signedIn(domainauth.RoleMember)
	_, err := withToken(context.Background(), sess, func(token string) (int, error) {
		assert.Equal(t, "tok", token)
		return 0, apperrors.Unauthenticated("expired")
	})
	require.Error(t, err)
	assert.True(t, sess.loggedOut)

	other := signedIn(domainauth.RoleMember)
	_, err = withToken(context.Background(), other, func(string) (int, error) {
		return 0, apperrors.Forbidden("no")
	})
	require.Error(t, err)
	assert.False(t, other.loggedOut)
}

func TestProfileService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserDirectory(ctrl)
	svc := NewProfileService(ProfileServiceOptions{Users: users})
	sess := signedIn(domainauth.RoleMember)
	upd := model.ProfileUpdate{Name: "New Name", Phone: "01700000000"}

	t.Run("uses backend result", func(t *testing.T) {
		saved := domainauth.Identity{ID: "me", Name: "New Name", Email: "me@x.com", Role: domainauth.RoleMember, Phone: "01700000000"}
		users.EXPECT().UpdateUser(gomock.Any(), "tok", "me", upd).Return(saved, nil)

		got, err := svc.Update(context.Background(), sess, upd)
		require.NoError(t, err)
		assert.Equal(t, saved, got)
		assert.Equal(t, saved, *sess.identity)
	})

	t.Run("falls back to local apply on empty body", func(t *testing.T) {
		users.EXPECT().UpdateUser(gomock.Any(), "tok", "me", upd).Return(domainauth.Identity{}, nil)

		got, err := svc.Update(context.Background(), sess, upd)
		require.NoError(t, err)
		assert.Equal(t, "New Name", got.Name)
		assert.Equal(t, domainauth.RoleMember, got.Role)
	})

	t.Run("expired token logs out", func(t *testing.T) {
		users.EXPECT().UpdateUser(gomock.Any(), "tok", "me", upd).Return(domainauth.Identity{}, apperrors.Unauthenticated("expired"))

		_, err := svc.Update(context.Background(), sess, upd)
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthenticated(err))
		assert.True(t, sess.loggedOut)
	})
}

func TestProfileService_CurrentRefreshesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserDirectory(ctrl)
	svc := NewProfileService(ProfileServiceOptions{Users: users})
	sess := signedIn(domainauth.RoleUser)

	promoted := *sess.identity
	promoted.Role = domainauth.RoleMember
	users.EXPECT().GetUser(gomock.Any(), "tok", "me").Return(promoted, nil)

	got, err := svc.Current(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleMember, got.Role)
	require.Len(t, sess.updatedIDs, 1)
	assert.Equal(t, domainauth.RoleMember, sess.identity.Role)
}

func TestMemberService_ListFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserDirectory(ctrl)
	svc := NewMemberService(MemberServiceOptions{Users: users})

	all := []domainauth.Identity{
		{ID: "1", Name: "zara", Email: "z@x.com", Role: domainauth.RoleMember},
		{ID: "2", Name: "Abir", Email: "abir@x.com", Role: domainauth.RoleAdmin},
		{ID: "3", Name: "Mou", Email: "mou@club.org", Role: domainauth.RoleMember},
	}
	users.EXPECT().ListUsers(gomock.Any(), "tok").Return(all, nil).Times(3)
	ctx := context.Background()
	sess := signedIn(domainauth.RoleAdmin)

	got, err := svc.List(ctx, sess, MemberFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Abir", "Mou", "zara"}, names(got))

	got, err = svc.List(ctx, sess, MemberFilter{Role: domainauth.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mou", "zara"}, names(got))

	got, err = svc.List(ctx, sess, MemberFilter{Query: "CLUB"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mou"}, names(got))
}

func names(ids []domainauth.Identity) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Name)
	}
	return out
}

func TestMemberService_AssignRoleGuards(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserDirectory(ctrl)
	svc := NewMemberService(MemberServiceOptions{Users: users})
	ctx := context.Background()
	sess := signedIn(domainauth.RoleAdmin)

	_, err := svc.AssignRole(ctx, sess, "u2", "superuser")
	require.Error(t, err)
	assert.Equal(t, "role", apperrors.GetField(err))

	_, err = svc.AssignRole(ctx, sess, "me", domainauth.RoleUser)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	users.EXPECT().AssignRole(gomock.Any(), "tok", "u2", domainauth.RoleModerator).
		Return(domainauth.Identity{ID: "u2", Role: domainauth.RoleModerator}, nil)
	got, err := svc.AssignRole(ctx, sess, "u2", domainauth.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleModerator, got.Role)

	err = svc.Delete(ctx, sess, "me")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPaymentService(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockPaymentLedger(ctrl)
	svc := NewPaymentService(PaymentServiceOptions{Ledger: ledger})
	ctx := context.Background()
	sess := signedIn(domainauth.RoleExecutiveMember)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("all filters and sorts", func(t *testing.T) {
		ledger.EXPECT().ListPayments(gomock.Any(), "tok").Return([]model.Payment{
			{ID: "a", Status: model.PaymentPending, CreatedAt: t0},
			{ID: "b", Status: model.PaymentCompleted, CreatedAt: t0.Add(time.Hour)},
			{ID: "c", Status: model.PaymentPending, CreatedAt: t0.Add(2 * time.Hour)},
		}, nil)
		got, err := svc.All(ctx, sess, model.PaymentPending)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "c", got[0].ID)
		assert.Equal(t, "a", got[1].ID)
	})

	t.Run("initiate rejects non-http gateway", func(t *testing.T) {
		req := model.InitiatePaymentRequest{Purpose: "membership", Amount: 500}
		ledger.EXPECT().InitiatePayment(gomock.Any(), "tok", req).
			Return(model.PaymentSession{PaymentID: "p1", GatewayURL: "javascript:alert(1)"}, nil)
		_, err := svc.Initiate(ctx, sess, req)
		require.Error(t, err)
		assert.True(t, apperrors.IsBackend(err))

		ledger.EXPECT().InitiatePayment(gomock.Any(), "tok", req).
			Return(model.PaymentSession{PaymentID: "p1", GatewayURL: "https://sandbox.gateway.test/pay/p1"}, nil)
		ps, err := svc.Initiate(ctx, sess, req)
		require.NoError(t, err)
		assert.Equal(t, "p1", ps.PaymentID)
	})

	t.Run("set status validates", func(t *testing.T) {
		_, err := svc.SetStatus(ctx, sess, "p1", "refunded")
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestEventService_Schedule(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockEventCatalog(ctrl)
	svc := NewEventService(EventServiceOptions{Catalog: catalog})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	catalog.EXPECT().ListEvents(gomock.Any()).Return([]model.ClubEvent{
		{ID: "far", StartsAt: now.Add(72 * time.Hour)},
		{ID: "old", StartsAt: now.Add(-72 * time.Hour)},
		{ID: "soon", StartsAt: now.Add(time.Hour)},
		{ID: "recent", StartsAt: now.Add(-time.Hour)},
	}, nil)

	sch, err := svc.Schedule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"soon", "far"}, eventIDs(sch.Upcoming))
	assert.Equal(t, []string{"recent", "old"}, eventIDs(sch.Past))
}

func eventIDs(es []model.ClubEvent) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

func TestEventService_UpdateRequiresChanges(t *testing.T) {
	svc := NewEventService(EventServiceOptions{Catalog: mocks.NewMockEventCatalog(gomock.NewController(t))})
	_, err := svc.Update(context.Background(), signedIn(domainauth.RoleModerator), "e1", model.UpdateEventRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestGalleryService_Lightbox(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockGalleryStore(ctrl)
	svc := NewGalleryService(GalleryServiceOptions{Store: store})
	imgs := []model.GalleryImage{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	store.EXPECT().ListImages(gomock.Any()).Return(imgs, nil).Times(3)
	ctx := context.Background()

	first, err := svc.Lightbox(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", first.Image.ID)
	assert.Equal(t, "c", first.PrevID)
	assert.Equal(t, "b", first.NextID)

	last, err := svc.Lightbox(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "a", last.NextID)
	assert.Equal(t, 3, last.Position.Position())

	_, err = svc.Lightbox(ctx, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestContactService_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	inbox := mocks.NewMockContactInbox(ctrl)
	svc := NewContactService(inbox, nil)

	inbox.EXPECT().SendContact(gomock.Any(), model.ContactMessage{
		Name: "Ana", Email: "ana@x.com", Subject: "Hi", Body: "Hello there club",
	}).Return(nil)
	require.NoError(t, svc.Send(context.Background(), model.ContactMessage{
		Name: " Ana ", Email: "ana@x.com ", Subject: "Hi", Body: "  Hello there club\n",
	}))

	inbox.EXPECT().SendContact(gomock.Any(), gomock.Any()).Return(apperrors.Backend("down"))
	err := svc.Send(context.Background(), model.ContactMessage{})
	assert.True(t, apperrors.IsBackend(err))
}

func newAdminMocks(t *testing.T) (*AdminService, *mocks.MockStatsSource, *mocks.MockUserDirectory, *mocks.MockPaymentLedger, *mocks.MockEventCatalog, *mocks.MockGalleryStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	stats := mocks.NewMockStatsSource(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	payments := mocks.NewMockPaymentLedger(ctrl)
	events := mocks.NewMockEventCatalog(ctrl)
	gallery := mocks.NewMockGalleryStore(ctrl)
	svc := NewAdminService(AdminServiceOptions{Sources: AdminSources{
		Stats: stats, Users: users, Payments: payments, Events: events, Gallery: gallery,
	}})
	return svc, stats, users, payments, events, gallery
}

func TestAdminService_OverviewComputesLocally(t *testing.T) {
	svc, stats, users, payments, events, gallery := newAdminMocks(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	stats.EXPECT().DashboardStats(gomock.Any(), "tok").Return(model.DashboardStats{}, apperrors.NotFound("no"))
	users.EXPECT().ListUsers(gomock.Any(), "tok").Return([]domainauth.Identity{
		{Role: domainauth.RoleUser}, {Role: domainauth.RoleMember}, {Role: domainauth.RoleAdmin}, {Role: "ghost"},
	}, nil)
	payments.EXPECT().ListPayments(gomock.Any(), "tok").Return([]model.Payment{
		{ID: "1", Status: model.PaymentCompleted, Amount: 500, CreatedAt: now.Add(-time.Hour)},
		{ID: "2", Status: model.PaymentPending, Amount: 200, CreatedAt: now},
		{ID: "3", Status: model.PaymentFailed, Amount: 100, CreatedAt: now.Add(-2 * time.Hour)},
	}, nil)
	events.EXPECT().ListEvents(gomock.Any()).Return([]model.ClubEvent{
		{ID: "past", StartsAt: now.Add(-time.Hour)},
		{ID: "next", StartsAt: now.Add(time.Hour)},
	}, nil)
	gallery.EXPECT().ListImages(gomock.Any()).Return([]model.GalleryImage{{ID: "i"}}, nil)

	ov, err := svc.Overview(context.Background(), signedIn(domainauth.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{
		Users: 4, Members: 2, Events: 2, UpcomingEvents: 1, Images: 1,
		Payments: 3, PendingPayments: 1, Collected: 500,
	}, ov.Stats)
	require.Len(t, ov.RecentPayments, 3)
	assert.Equal(t, "2", ov.RecentPayments[0].ID)
	assert.Equal(t, []string{"next"}, eventIDs(ov.NextEvents))
}

func TestAdminService_OverviewPrefersRemoteStats(t *testing.T) {
	svc, stats, users, payments, events, gallery := newAdminMocks(t)
	remote := model.DashboardStats{Users: 120, Members: 80}

	stats.EXPECT().DashboardStats(gomock.Any(), "tok").Return(remote, nil)
	users.EXPECT().ListUsers(gomock.Any(), "tok").Return(nil, nil)
	payments.EXPECT().ListPayments(gomock.Any(), "tok").Return(nil, nil)
	events.EXPECT().ListEvents(gomock.Any()).Return(nil, nil)
	gallery.EXPECT().ListImages(gomock.Any()).Return(nil, nil)

	ov, err := svc.Overview(context.Background(), signedIn(domainauth.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, remote, ov.Stats)
	assert.Empty(t, ov.RecentPayments)
}

func TestAdminService_OverviewLogsOutOnRejectedToken(t *testing.T) {
	svc, stats, users, payments, events, gallery := newAdminMocks(t)

	stats.EXPECT().DashboardStats(gomock.Any(), "tok").Return(model.DashboardStats{}, nil).AnyTimes()
	users.EXPECT().ListUsers(gomock.Any(), "tok").Return(nil, apperrors.Unauthenticated("expired"))
	payments.EXPECT().ListPayments(gomock.Any(), "tok").Return(nil, nil).AnyTimes()
	events.EXPECT().ListEvents(gomock.Any()).Return(nil, nil).AnyTimes()
	gallery.EXPECT().ListImages(gomock.Any()).Return(nil, nil).AnyTimes()

	sess := signedIn(domainauth.RoleAdmin)
	_, err := svc.Overview(context.Background(), sess)
	require.Error(t, err)
	assert.True(t, sess.loggedOut)
	assert.False(t, errors.Is(err, context.Canceled))
}
