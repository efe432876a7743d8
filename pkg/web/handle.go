package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"

	"github.com/tendant/device-trust-demo/pkg/device"
	"github.com/tendant/device-trust-demo/pkg/loginflow"
	"github.com/tendant/device-trust-demo/pkg/tokengenerator"
	"github.com/tendant/device-trust-demo/pkg/user"
)

// Handle serves the demo pages
type Handle struct {
	flow     *loginflow.FlowService
	users    *user.UserService
	devices  *device.DeviceService
	tokens   *tokengenerator.TokenService
	renderer *Renderer
}

// NewHandle creates a new page handler
func NewHandle(flow *loginflow.FlowService, users *user.UserService, devices *device.DeviceService, tokens *tokengenerator.TokenService, renderer *Renderer) Handle {
	return Handle{
		flow:     flow,
		users:    users,
		devices:  devices,
		tokens:   tokens,
		renderer: renderer,
	}
}

// RouterConfig configures the route tree
type RouterConfig struct {
	// CredentialLimiter, when set, wraps the credential-accepting POST
	// endpoints (login, register, register-device)
	CredentialLimiter func(http.Handler) http.Handler
}

// Handler builds the route tree for the demo pages
func Handler(h Handle, ja *jwtauth.JWTAuth, config RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(Verifier(ja))

	r.Get("/", h.Index)
	r.Get("/login", h.LoginPage)
	r.Get("/register", h.RegisterPage)
	r.Get("/register-device", h.RegisterDevicePage)
	r.Get("/dashboard", h.Dashboard)
	r.Post("/dashboard", h.DashboardAction)

	limited := func(r chi.Router) {
		if config.CredentialLimiter != nil {
			r.Use(config.CredentialLimiter)
		}
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/register-device", h.RegisterDevice)
	}
	r.Group(limited)

	return r
}

// Index shows the welcome page, or the dashboard for a logged-in browser
func (h Handle) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionFromContext(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.renderer.Render(w, "index.html", nil)
}

// LoginPage shows the login form
func (h Handle) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionFromContext(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.renderer.Render(w, "login.html", LoginView{})
}

// Login checks the submitted credentials and routes by device recognition
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	visitorData := r.FormValue("visitorData")

	if username == "" || password == "" {
		plainError(w, r, http.StatusBadRequest, "Username and password are required")
		return
	}
	if visitorData == "" {
		plainError(w, r, http.StatusBadRequest, "Visitor data is required")
		return
	}

	result, err := h.flow.Login(r.Context(), username, password, visitorData)
	switch {
	case errors.Is(err, device.ErrInvalidVisitorData):
		plainError(w, r, http.StatusBadRequest, "Invalid visitor data format")
		return
	case errors.Is(err, user.ErrInvalidCredentials):
		plainError(w, r, http.StatusUnauthorized, "Invalid credentials or user does not exist")
		return
	case err != nil:
		slog.Error("Login failed", "err", err)
		plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	switch result.State {
	case loginflow.StateAuthenticated:
		if err := h.tokens.IssueSessionCookie(w, result.Session); err != nil {
			slog.Error("Failed to issue session cookie", "err", err)
			plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		h.tokens.ClearPendingDeviceCookie(w)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	case loginflow.StateDeviceChallengePending:
		if err := h.tokens.IssuePendingDeviceCookie(w, result.Pending); err != nil {
			slog.Error("Failed to issue pending device cookie", "err", err)
			plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		http.Redirect(w, r, "/register-device", http.StatusFound)
	default:
		slog.Error("Login ended in unexpected state", "state", result.State)
		plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// RegisterPage shows the registration form
func (h Handle) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionFromContext(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.renderer.Render(w, "register.html", RegisterView{})
}

// Register creates a new account and sends the browser to the login page
func (h Handle) Register(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	username := r.FormValue("username")
	password := r.FormValue("password")

	if name == "" || username == "" || password == "" {
		plainError(w, r, http.StatusBadRequest, "All fields are required")
		return
	}

	_, err := h.users.Register(r.Context(), name, username, password)
	var dupErr user.ErrUsernameAlreadyExists
	switch {
	case errors.As(err, &dupErr):
		plainError(w, r, http.StatusUnauthorized, "User exists")
		return
	case err != nil:
		slog.Error("Registration failed", "err", err)
		plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

// RegisterDevicePage shows the passcode challenge form. A browser whose
// device became trusted in the meantime is promoted straight to the
// dashboard.
func (h Handle) RegisterDevicePage(w http.ResponseWriter, r *http.Request) {
	pending, ok := h.tokens.ReadPendingDeviceClaims(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	result, err := h.flow.ResumeChallenge(r.Context(), pending)
	switch {
	case errors.Is(err, loginflow.ErrNoChallengePending):
		h.tokens.ClearPendingDeviceCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	case errors.Is(err, device.ErrInvalidVisitorData):
		h.tokens.ClearPendingDeviceCookie(w)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	case err != nil:
		slog.Error("Failed to resume device challenge", "err", err)
		plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	if result.State == loginflow.StateAuthenticated {
		if err := h.tokens.IssueSessionCookie(w, result.Session); err != nil {
			slog.Error("Failed to issue session cookie", "err", err)
			plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		h.tokens.ClearPendingDeviceCookie(w)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	u, err := h.flow.ResolvePending(r.Context(), pending)
	if err != nil {
		h.tokens.ClearPendingDeviceCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	h.renderer.Render(w, "register_device.html", RegisterDeviceView{
		Name:        u.Name,
		VisitorData: pending.VisitorData,
	})
}

// RegisterDevice completes or cancels the passcode challenge
func (h Handle) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("action") == "cancel" {
		if pending, ok := h.tokens.ReadPendingDeviceClaims(r); ok {
			if _, err := h.flow.CancelChallenge(r.Context(), pending); err != nil {
				slog.Warn("Failed to cancel device challenge", "err", err)
			}
		}
		h.tokens.ClearPendingDeviceCookie(w)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	pending, ok := h.tokens.ReadPendingDeviceClaims(r)
	if !ok {
		h.tokens.ClearPendingDeviceCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if _, err := h.flow.ResolvePending(r.Context(), pending); err != nil {
		h.tokens.ClearPendingDeviceCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	result, err := h.flow.CompleteDeviceChallenge(r.Context(), pending, r.FormValue("otp"))
	switch {
	case errors.Is(err, loginflow.ErrInvalidPasscode):
		plainError(w, r, http.StatusBadRequest, "Invalid otp")
		return
	case errors.Is(err, device.ErrInvalidVisitorData):
		plainError(w, r, http.StatusBadRequest, "Invalid visitor data format")
		return
	case err != nil:
		slog.Error("Failed to complete device challenge", "err", err)
		plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	if err := h.tokens.IssueSessionCookie(w, result.Session); err != nil {
		slog.Error("Failed to issue session cookie", "err", err)
		plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	h.tokens.ClearPendingDeviceCookie(w)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Dashboard shows the logged-in page. A stale session, one whose user or
// device has disappeared, is cleared and sent back to the welcome page.
func (h Handle) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r)
	if !ok {
		h.clearAllCookies(w)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	u, d, err := h.flow.ResolveSession(r.Context(), session)
	if err != nil {
		h.clearAllCookies(w)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	devices, err := h.devices.ListDevices(r.Context(), u.ID)
	if err != nil {
		slog.Error("Failed to list devices", "userID", u.ID, "err", err)
		plainError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.renderer.Render(w, "dashboard.html", newDashboardView(u, d, devices))
}

// DashboardAction handles dashboard form submissions (currently only logout)
func (h Handle) DashboardAction(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("action") == "logout" {
		if session, ok := sessionFromContext(r); ok {
			if _, err := h.flow.Logout(r.Context(), session); err != nil {
				slog.Warn("Logout failed", "err", err)
			}
		}
		h.tokens.ClearSessionCookie(w)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h Handle) clearAllCookies(w http.ResponseWriter) {
	h.tokens.ClearSessionCookie(w)
	h.tokens.ClearPendingDeviceCookie(w)
}

func plainError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.PlainText(w, r, message)
}
