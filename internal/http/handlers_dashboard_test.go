package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	"github.com/debate-club/portal/internal/service"
)

func testPayments() []model.Payment {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]model.Payment, 0, 7)
	for i := range 7 {
		out = append(out, model.Payment{
			ID:            "p-" + string(rune('a'+i)),
			Purpose:       "membership",
			Amount:        500,
			Status:        model.PaymentCompleted,
			TransactionID: "TXN-" + string(rune('A'+i)),
			CreatedAt:     base.AddDate(0, 0, -i),
		})
	}
	return out
}

func TestDashboard_MenuFollowsRole(t *testing.T) {
	tests := []struct {
		name    string
		role    domainauth.Role
		want    []string
		notWant []string
	}{
		{
			name:    "plain user",
			role:    domainauth.RoleUser,
			want:    []string{"My Profile", "My Payments"},
			notWant: []string{"Club Events", "Manage Users", "Admin Console"},
		},
		{
			name:    "moderator",
			role:    domainauth.RoleModerator,
			want:    []string{"Club Events", "Manage Events", "Manage Gallery"},
			notWant: []string{"Manage Users", "Manage Payments", "Assign Roles"},
		},
		{
			name: "president",
			role: domainauth.RolePresident,
			want: []string{"Manage Users", "Manage Payments", "Admin Console", "Assign Roles"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandlers(t)
			r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			rec := httptest.NewRecorder()
			h.Dashboard(rec, withSession(r, newSession(t, testIdentity(tt.role))))

			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.True(t, ContainsAll(body, tt.want), "missing entries for %s", tt.role)
			for _, s := range tt.notWant {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestDashboard_RecentActivity(t *testing.T) {
	h, svc := newTestHandlers(t)
	svc.payments.mine = testPayments()
	svc.events.schedule = testSchedule()

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.Dashboard(rec, withSession(r, newSession(t, testIdentity(domainauth.RoleMember))))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Welcome back, Ada Lovelace")
	assert.Contains(t, body, "TXN-E")
	assert.NotContains(t, body, "TXN-F", "only the most recent payments are shown")
}

func TestDashboard_BackendError(t *testing.T) {
	h, svc := newTestHandlers(t)
	svc.payments.err = errBackendDown

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.Dashboard(rec, withSession(r, newSession(t, testIdentity(domainauth.RoleMember))))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "The club server is unavailable.")
}

func TestProfilePage_Prefilled(t *testing.T) {
	h, svc := newTestHandlers(t)
	svc.profile.identity = domainauth.Identity{ID: "u-1", Name: "Ada Lovelace", Department: "Mathematics", Batch: "1843"}

	r := httptest.NewRequest(http.MethodGet, "/dashboard/profile", nil)
	rec := httptest.NewRecorder()
	h.ProfilePage(rec, withSession(r, newSession(t, testIdentity(domainauth.RoleMember))))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ContainsAll(rec.Body.String(), []string{`value="Mathematics"`, `value="1843"`}))
}

func TestProfileSubmit(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		h, svc := newTestHandlers(t)
		form := url.Values{"name": {""}, "avatar": {"not a url"}}
		rec := httptest.NewRecorder()
		h.ProfileSubmit(rec, withSession(postForm("/dashboard/profile", form), newSession(t, testIdentity(domainauth.RoleMember))))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.True(t, ContainsAll(rec.Body.String(), []string{"Name is required.", "Enter a valid URL."}))
		assert.Nil(t, svc.profile.updated)
	})

	t.Run("saved", func(t *testing.T) {
		h, svc := newTestHandlers(t)
		svc.profile.identity = *testIdentity(domainauth.RoleMember)
		form := url.Values{"name": {"Ada King"}, "department": {"Mathematics"}}
		rec := httptest.NewRecorder()
		h.ProfileSubmit(rec, withSession(postForm("/dashboard/profile", form), newSession(t, testIdentity(domainauth.RoleMember))))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard/profile?flash=profile-saved", rec.Header().Get("Location"))
		require.NotNil(t, svc.profile.updated)
		assert.Equal(t, "Ada King", svc.profile.updated.Name)
	})

	t.Run("backend failure over htmx", func(t *testing.T) {
		h, svc := newTestHandlers(t)
		svc.profile.err = errBackendDown
		form := url.Values{"name": {"Ada King"}}
		rec := httptest.NewRecorder()
		r := asHTMX(postForm("/dashboard/profile", form))
		h.ProfileSubmit(rec, withSession(r, newSession(t, testIdentity(domainauth.RoleMember))))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Hx-Trigger"), "showToast")
	})
}

func TestInitiatePayment(t *testing.T) {
	t.Run("redirects to gateway", func(t *testing.T) {
		h, svc := newTestHandlers(t)
		svc.payments.session = model.PaymentSession{PaymentID: "p-1", GatewayURL: "https://sandbox.gateway.example/pay/p-1"}

		form := url.Values{"purpose": {"membership"}, "amount": {"1,500.00"}}
		rec := httptest.NewRecorder()
		h.InitiatePayment(rec, withSession(postForm("/dashboard/payments", form), newSession(t, testIdentity(domainauth.RoleMember))))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "https://sandbox.gateway.example/pay/p-1", rec.Header().Get("Location"))
		require.NotNil(t, svc.payments.initiated)
		assert.InDelta(t, 1500.0, svc.payments.initiated.Amount, 0.001)
	})

	tests := []struct {
		name   string
		form   url.Values
		expect string
	}{
		{name: "unparseable amount", form: url.Values{"purpose": {"membership"}, "amount": {"five hundred"}}, expect: "Enter an amount like 500 or 500.00."},
		{name: "missing amount", form: url.Values{"purpose": {"membership"}}, expect: "Amount is required."},
		{name: "too large", form: url.Values{"purpose": {"donation"}, "amount": {"250000"}}, expect: "Amount must be at most 100000."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newTestHandlers(t)
			rec := httptest.NewRecorder()
			h.InitiatePayment(rec, withSession(postForm("/dashboard/payments", tt.form), newSession(t, testIdentity(domainauth.RoleMember))))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expect)
			assert.Nil(t, svc.payments.initiated)
		})
	}
}

func TestPaymentResult(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "status=completed&tran_id=TXN-42", want: "Payment received."},
		{query: "status=FAILED", want: "The payment failed."},
		{query: "status=cancelled", want: "The payment was cancelled."},
		{query: "status=weird", want: "Your payment is being processed."},
		{query: "", want: "Your payment is being processed."},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			h, _ := newTestHandlers(t)
			r := httptest.NewRequest(http.MethodGet, "/dashboard/payments/result?"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.PaymentResult(rec, withSession(r, newSession(t, testIdentity(domainauth.RoleMember))))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestMemberEventsPage(t *testing.T) {
	h, svc := newTestHandlers(t)
	svc.events.schedule = service.Schedule{Upcoming: testSchedule().Upcoming}

	r := httptest.NewRequest(http.MethodGet, "/dashboard/events", nil)
	rec := httptest.NewRecorder()
	h.MemberEventsPage(rec, withSession(r, newSession(t, testIdentity(domainauth.RoleMember))))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), testSchedule().Upcoming[0].Title)
}
