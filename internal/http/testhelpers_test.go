package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/debate-club/portal/internal/adapters/memory"
	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/menu"
	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/http/validation"
	"github.com/debate-club/portal/internal/mocks"
	"github.com/debate-club/portal/internal/ports"
	"github.com/debate-club/portal/internal/service"
)

const testClientID = "0b8f6b8e-5c1d-4f3a-9d2e-7a4c1e9b3f21"

// RequireTemplateRenderer creates a TemplateRenderer for tests, skipping the test if templates are not available.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); os.IsNotExist(err) {
		t.Skip("Templates not available, skipping")
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
	})
	require.NoError(t, err)
	return tr
}

// ContainsAll checks if a string contains all the given substrings.
func ContainsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// testServices is the set of fakes behind a test UIHandlers.
type testServices struct {
	profile  *fakeProfile
	members  *fakeMembers
	payments *fakePayments
	events   *fakeEvents
	gallery  *fakeGallery
	contact  *fakeContact
	admin    *fakeAdmin
}

func newTestServices() *testServices {
	return &testServices{
		profile:  &fakeProfile{},
		members:  &fakeMembers{},
		payments: &fakePayments{},
		events:   &fakeEvents{},
		gallery:  &fakeGallery{},
		contact:  &fakeContact{},
		admin:    &fakeAdmin{},
	}
}

// newTestHandlers wires UIHandlers with real templates and fake services.
func newTestHandlers(t *testing.T) (*UIHandlers, *testServices) {
	t.Helper()
	svc := newTestServices()
	return &UIHandlers{
		T:         RequireTemplateRenderer(t),
		Menu:      menu.Default(menu.FallbackToUser),
		Validator: validation.New(),
		Profile:   svc.profile,
		Members:   svc.members,
		Payments:  svc.payments,
		Events:    svc.events,
		Gallery:   svc.gallery,
		Contact:   svc.contact,
		Admin:     svc.admin,
	}, svc
}

func testIdentity(role domainauth.Role) *domainauth.Identity {
	return &domainauth.Identity{ID: "u-1", Name: "Ada Lovelace", Email: "ada@example.com", Role: role}
}

// newSession returns an initialized session store, signed in as id when id is non-nil.
func newSession(t *testing.T, id *domainauth.Identity) *service.SessionStore {
	t.Helper()
	store := newSessionWithAuth(t, id, mocks.NewMockAuthenticator(gomock.NewController(t)))
	store.Initialize(context.Background())
	return store
}

// pendingSession returns a store holding a persisted admin that has not been initialized,
// so it still reports loading.
func pendingSession(t *testing.T) *service.SessionStore {
	t.Helper()
	return newSessionWithAuth(t, testIdentity(domainauth.RoleAdmin), mocks.NewMockAuthenticator(gomock.NewController(t)))
}

// newSessionWithAuth returns a store that has not been initialized yet.
func newSessionWithAuth(t *testing.T, id *domainauth.Identity, auth ports.Authenticator) *service.SessionStore {
	t.Helper()
	ctx := context.Background()
	storage := memory.NewClientStorage(0).For(testClientID)
	if id != nil {
		user, err := json.Marshal(id)
		require.NoError(t, err)
		require.NoError(t, storage.SetItem(ctx, ports.StorageKeyToken, "test-token"))
		require.NoError(t, storage.SetItem(ctx, ports.StorageKeyUser, string(user)))
	}
	return service.NewSessionStore(service.SessionStoreOptions{Storage: storage, Auth: auth})
}

func withSession(r *http.Request, store *service.SessionStore) *http.Request {
	return r.WithContext(SetSessionInContext(r.Context(), store))
}

func asBrowser(r *http.Request) *http.Request {
	r.Header.Set("Accept", "text/html")
	return r
}

func asHTMX(r *http.Request) *http.Request {
	r.Header.Set("Hx-Request", "true")
	return r
}

var errBackendDown = apperrors.Backend("The club server is unavailable. Please try again shortly.")

type fakeProfile struct {
	identity domainauth.Identity
	err      error
	updated  *model.ProfileUpdate
}

func (f *fakeProfile) Current(context.Context, service.Session) (domainauth.Identity, error) {
	return f.identity, f.err
}

func (f *fakeProfile) Update(_ context.Context, _ service.Session, upd model.ProfileUpdate) (domainauth.Identity, error) {
	if f.err != nil {
		return domainauth.Identity{}, f.err
	}
	f.updated = &upd
	return upd.Apply(f.identity), nil
}

type fakeMembers struct {
	users    []domainauth.Identity
	err      error
	filter   service.MemberFilter
	deleted  []string
	assigned map[string]domainauth.Role
}

func (f *fakeMembers) List(_ context.Context, _ service.Session, filter service.MemberFilter) ([]domainauth.Identity, error) {
	f.filter = filter
	return f.users, f.err
}

func (f *fakeMembers) Delete(_ context.Context, _ service.Session, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMembers) AssignRole(_ context.Context, _ service.Session, id string, role domainauth.Role) (domainauth.Identity, error) {
	if f.err != nil {
		return domainauth.Identity{}, f.err
	}
	if f.assigned == nil {
		f.assigned = map[string]domainauth.Role{}
	}
	f.assigned[id] = role
	return domainauth.Identity{ID: id, Role: role}, nil
}

type fakePayments struct {
	mine      []model.Payment
	all       []model.Payment
	err       error
	status    model.PaymentStatus
	initiated *model.InitiatePaymentRequest
	session   model.PaymentSession
}

func (f *fakePayments) Mine(context.Context, service.Session) ([]model.Payment, error) {
	return f.mine, f.err
}

func (f *fakePayments) All(_ context.Context, _ service.Session, status model.PaymentStatus) ([]model.Payment, error) {
	f.status = status
	return f.all, f.err
}

func (f *fakePayments) Initiate(_ context.Context, _ service.Session, req model.InitiatePaymentRequest) (model.PaymentSession, error) {
	if f.err != nil {
		return model.PaymentSession{}, f.err
	}
	f.initiated = &req
	return f.session, nil
}

func (f *fakePayments) SetStatus(_ context.Context, _ service.Session, id string, status model.PaymentStatus) (model.Payment, error) {
	if f.err != nil {
		return model.Payment{}, f.err
	}
	if !status.Valid() {
		return model.Payment{}, apperrors.ValidationField("status", "Choose a valid status.")
	}
	f.status = status
	return model.Payment{ID: id, Status: status}, nil
}

type fakeEvents struct {
	schedule service.Schedule
	event    model.ClubEvent
	err      error
	created  *model.CreateEventRequest
	updated  *model.UpdateEventRequest
	deleted  []string
}

func (f *fakeEvents) Schedule(context.Context) (service.Schedule, error) {
	return f.schedule, f.err
}

func (f *fakeEvents) Get(_ context.Context, id string) (model.ClubEvent, error) {
	if f.err != nil {
		return model.ClubEvent{}, f.err
	}
	if f.event.ID != id {
		return model.ClubEvent{}, apperrors.NotFound("Event not found.")
	}
	return f.event, nil
}

func (f *fakeEvents) Create(_ context.Context, _ service.Session, req model.CreateEventRequest) (model.ClubEvent, error) {
	if f.err != nil {
		return model.ClubEvent{}, f.err
	}
	f.created = &req
	return model.ClubEvent{ID: "e-new", Title: req.Title}, nil
}

func (f *fakeEvents) Update(
	_ context.Context,
	_ service.Session,
	id string,
	req model.UpdateEventRequest,
) (model.ClubEvent, error) {
	if f.err != nil {
		return model.ClubEvent{}, f.err
	}
	f.updated = &req
	return model.ClubEvent{ID: id}, nil
}

func (f *fakeEvents) Delete(_ context.Context, _ service.Session, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeGallery struct {
	images  []model.GalleryImage
	err     error
	added   *model.AddImageRequest
	deleted []string
}

func (f *fakeGallery) List(context.Context) ([]model.GalleryImage, error) {
	return f.images, f.err
}

func (f *fakeGallery) Lightbox(_ context.Context, index int) (service.LightboxView, error) {
	if f.err != nil {
		return service.LightboxView{}, f.err
	}
	pos, ok := model.NewLightbox(index, len(f.images))
	if !ok {
		return service.LightboxView{}, apperrors.NotFound("Image not found.")
	}
	return service.LightboxView{
		Image:    f.images[index],
		Position: pos,
		PrevID:   f.images[pos.Prev()].ID,
		NextID:   f.images[pos.Next()].ID,
	}, nil
}

func (f *fakeGallery) Add(_ context.Context, _ service.Session, req model.AddImageRequest) (model.GalleryImage, error) {
	if f.err != nil {
		return model.GalleryImage{}, f.err
	}
	f.added = &req
	return model.GalleryImage{ID: "img-new", Title: req.Title, URL: req.URL}, nil
}

func (f *fakeGallery) Delete(_ context.Context, _ service.Session, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeContact struct {
	sent []model.ContactMessage
	err  error
}

func (f *fakeContact) Send(_ context.Context, msg model.ContactMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeAdmin struct {
	overview service.Overview
	err      error
}

func (f *fakeAdmin) Overview(context.Context, service.Session) (service.Overview, error) {
	return f.overview, f.err
}
