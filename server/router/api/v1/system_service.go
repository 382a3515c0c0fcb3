package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oncobrief/oncobrief/internal/profile"
)

type statusResponse struct {
	Message       string `json:"message"`
	MemoryEnabled bool   `json:"memory_enabled"`
	Storage       string `json:"storage"`
	ModelBackend  string `json:"model_backend"`
}

type healthResponse struct {
	Status string `json:"status"`
	UseS3  bool   `json:"use_s3"`
}

// getRoot returns the static service status.
// GET /
func (s *APIV1Service) getRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Message:       "Oncobrief API is running.",
		MemoryEnabled: true,
		Storage:       storageLabel(s.Profile),
		ModelBackend:  "Groq",
	})
}

// getHealth reports liveness.
// GET /health
func (s *APIV1Service) getHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status: "healthy",
		UseS3:  s.Profile.UseS3(),
	})
}

func storageLabel(p *profile.Profile) string {
	switch p.Driver {
	case profile.DriverS3:
		return "S3"
	case profile.DriverSQLite:
		return "sqlite"
	default:
		return "local"
	}
}
