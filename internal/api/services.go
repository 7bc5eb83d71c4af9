package api

import (
	"github.com/nutritrackapp/nutritrack-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth *service.AuthService
	Food *service.FoodService
	Day  *service.DayService
}
