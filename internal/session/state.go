// Package session models one user's session: the navigation/auth state
// machine and the per-session data the dashboard renders.
package session

import (
	"strings"

	"github.com/Dan9191/bankshot/internal/models"
)

// AuthState is where a session is in the sign-in flow
type AuthState string

const (
	AuthLoading         AuthState = "loading"
	AuthAuthenticated   AuthState = "authenticated"
	AuthUnauthenticated AuthState = "unauthenticated"
)

// Page is the page a session asked for
type Page string

const (
	PageStart     Page = "start"
	PageSignIn    Page = "signin"
	PageDashboard Page = "dashboard"
)

// View is what the presentation layer should render
type View string

const (
	ViewLoading   View = "loading"
	ViewTutorial  View = "tutorial"
	ViewStart     View = "start"
	ViewSignIn    View = "signin"
	ViewDashboard View = "dashboard"
)

// State is the navigation and auth context of a session. Transitions are
// pure: each takes a State and returns the next one.
type State struct {
	User              *models.User `json:"user,omitempty"`
	Auth              AuthState    `json:"auth"`
	Page              Page         `json:"page"`
	ShowTutorial      bool         `json:"show_tutorial"`
	TutorialCompleted bool         `json:"tutorial_completed"`
}

// Initial is the state before the auth check has finished.
func Initial() State {
	return State{Auth: AuthLoading, Page: PageStart}
}

// AuthChecked ends the loading phase. Nothing persists between sessions, so
// an unauthenticated landing page is the only outcome.
func AuthChecked(st State) State {
	if st.Auth != AuthLoading {
		return st
	}
	st.Auth = AuthUnauthenticated
	st.Page = PageStart
	return st
}

// SignIn authenticates the session and opens the dashboard, showing the
// tutorial when it has not been completed.
func SignIn(st State, user models.User) State {
	st.User = &user
	st.Auth = AuthAuthenticated
	st.Page = PageDashboard
	st.ShowTutorial = !st.TutorialCompleted
	return st
}

// SignOut clears everything the sign-in established.
func SignOut(State) State {
	return State{Auth: AuthUnauthenticated, Page: PageStart}
}

// CompleteTutorial hides the tutorial for the rest of the session.
func CompleteTutorial(st State) State {
	st.TutorialCompleted = true
	st.ShowTutorial = false
	return st
}

// Navigate handles a navigation request. Only the start and sign-in pages
// can be navigated to; the dashboard is reached by signing in.
func Navigate(st State, path string) State {
	switch strings.TrimPrefix(strings.TrimSpace(path), "/") {
	case "signin":
		st.Page = PageSignIn
	case "start", "":
		st.Page = PageStart
	}
	return st
}

// Route decides which view to render for st. Combinations that make no
// sense land on the start page.
func Route(st State) View {
	switch {
	case st.Auth == AuthLoading:
		return ViewLoading
	case st.Auth == AuthAuthenticated && st.ShowTutorial:
		return ViewTutorial
	case st.Page == PageStart:
		return ViewStart
	case st.Page == PageSignIn && st.Auth == AuthUnauthenticated:
		return ViewSignIn
	case st.Page == PageDashboard && st.Auth == AuthAuthenticated:
		return ViewDashboard
	default:
		return ViewStart
	}
}
