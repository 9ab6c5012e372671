package echoapi

import (
	"github.com/trezcool/shiksha/core/appstate"
	"github.com/trezcool/shiksha/core/navigation"
)

type (
	NavigateRequest struct {
		Screen string `json:"screen" validate:"required"`
	}

	RoleRequest struct {
		Role string `json:"role" validate:"required"`
	}

	LanguageRequest struct {
		Language string `json:"language" validate:"required"`
	}

	ConnectivityRequest struct {
		Online *bool `json:"online" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		navigation.State
	}

	DashboardResponse struct {
		Role      navigation.Role      `json:"role,omitempty"`
		Dashboard navigation.Dashboard `json:"dashboard"`
	}

	NotificationsResponse struct {
		Notifications []appstate.Notification `json:"notifications"`
		Unread        int                     `json:"unread"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}
)
