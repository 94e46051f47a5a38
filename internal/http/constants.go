package httpx

// Page identifiers used in templates and navigation.
const (
	// Public pages.
	PageHome     = "home"
	PageAbout    = "about"
	PageEvents   = "events"
	PageEvent    = "event"
	PageGallery  = "gallery"
	PageLightbox = "lightbox"
	PageContact  = "contact"
	PageLogin    = "login"
	PageRegister = "register"

	// Member dashboard.
	PageDashboard     = "dashboard"
	PageProfile       = "profile"
	PageMyPayments    = "my-payments"
	PagePaymentResult = "payment-result"
	PageMemberEvents  = "member-events"

	// Management.
	PageManageUsers     = "manage-users"
	PageManagePayments  = "manage-payments"
	PageManageEvents    = "manage-events"
	PageManageEventForm = "manage-event-form"
	PageManageGallery   = "manage-gallery"

	// Admin console.
	PageAdmin      = "admin"
	PageAdminRoles = "admin-roles"
)

const (
	genericErrorMessage = "Something went wrong. Please try again."
	errMsgFixBelow      = "Please fix the errors below."

	// homeEventCount is how many upcoming events the landing page teases.
	homeEventCount = 3
	// membersPageSize is the page size of the member tables.
	membersPageSize = 20
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"
	TemplatePathFromTest = "../../frontend/templates"
)

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	FormModeEdit   FormMode = "edit"
	FormModeCreate FormMode = "create"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageHome:            "home-content",
	PageAbout:           "about-content",
	PageEvents:          "events-content",
	PageEvent:           "event-content",
	PageGallery:         "gallery-content",
	PageLightbox:        "lightbox-content",
	PageContact:         "contact-content",
	PageLogin:           "login-content",
	PageRegister:        "register-content",
	PageDashboard:       "dashboard-content",
	PageProfile:         "profile-content",
	PageMyPayments:      "my-payments-content",
	PagePaymentResult:   "payment-result-content",
	PageMemberEvents:    "member-events-content",
	PageManageUsers:     "manage-users-content",
	PageManagePayments:  "manage-payments-content",
	PageManageEvents:    "manage-events-content",
	PageManageEventForm: "manage-event-form-content",
	PageManageGallery:   "manage-gallery-content",
	PageAdmin:           "admin-content",
	PageAdminRoles:      "admin-roles-content",
}

// dashboardPages render inside the dashboard chrome with the role menu.
//
//nolint:gochecknoglobals // static read-only lookup
var dashboardPages = map[string]bool{
	PageDashboard:       true,
	PageProfile:         true,
	PageMyPayments:      true,
	PagePaymentResult:   true,
	PageMemberEvents:    true,
	PageManageUsers:     true,
	PageManagePayments:  true,
	PageManageEvents:    true,
	PageManageEventForm: true,
	PageManageGallery:   true,
	PageAdmin:           true,
	PageAdminRoles:      true,
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Unknown pages fall back to the landing page.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "home-content"
}

// flashMessages are the notices a redirect may ask the next page to show.
// Only keys travel in the URL so the text cannot be injected.
//
//nolint:gochecknoglobals // static read-only lookup
var flashMessages = map[string]string{
	"signed-out":      "You have been signed out.",
	"profile-saved":   "Your profile has been updated.",
	"message-sent":    "Thanks! Your message has been sent.",
	"user-deleted":    "The member was removed.",
	"payment-updated": "Payment status updated.",
	"event-created":   "Event published.",
	"event-updated":   "Event updated.",
	"event-deleted":   "Event deleted.",
	"image-added":     "Image added to the gallery.",
	"image-deleted":   "Image removed from the gallery.",
	"role-assigned":   "Role updated.",
	"welcome":         "Welcome to the club portal!",
}
