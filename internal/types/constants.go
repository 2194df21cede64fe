package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Role is a per-project capability level.
type Role string

const (
	RoleNone   Role = "none"
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// Action is what a caller wants to do with a project-scoped resource.
type Action string

const (
	ActionRead       Action = "read"
	ActionWrite      Action = "write"
	ActionAdminister Action = "administer"
)

// Task statuses.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDebt       = "Debt"
	StatusDone       = "Done"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDebt, StatusDone:
		return true
	}
	return false
}

// Dependency types.
const (
	DepFinishToStart  = "FS"
	DepFinishToFinish = "FF"
	DepStartToStart   = "SS"
	DepStartToFinish  = "SF"
)

func ValidDependencyType(t string) bool {
	switch t {
	case DepFinishToStart, DepFinishToFinish, DepStartToStart, DepStartToFinish:
		return true
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
