package booking

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicq/clinicq/internal/platform/auth"
	"github.com/clinicq/clinicq/pkg/apperr"
	"github.com/clinicq/clinicq/pkg/pagination"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes attaches booking endpoints. Availability is public; every
// other route requires an authenticated caller.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.GET("/doctors/:doctorId/availability", h.Availability)

	patientGroup := authed.Group("", auth.RequireRole(auth.RolePatient))
	patientGroup.POST("/doctors/:doctorId/appointments", h.Book)
	patientGroup.GET("/appointments", h.ListMine)

	doctorGroup := authed.Group("", auth.RequireRole(auth.RoleDoctor))
	doctorGroup.GET("/doctor/appointments", h.ListForDoctor)
	doctorGroup.PUT("/appointments/:id/status", h.UpdateStatus)

	authed.GET("/appointments/:id", h.Get)
	authed.PUT("/appointments/:id/cancel", h.Cancel)
}

// httpError converts service errors into echo responses using the apperr
// classification, masking internal details.
func httpError(err error) error {
	return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
}

func callerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid caller identity")
	}
	return id, nil
}

func (h *Handler) Availability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	dateStr := c.QueryParam("date")
	if dateStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	offers, err := h.svc.Availability(c.Request().Context(), doctorID, date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"doctor_id": doctorID,
		"date":      dateStr,
		"locations": offers,
	})
}

type bookPayload struct {
	LocationID string `json:"location_id"`
	Date       string `json:"appointment_date"`
	Symptoms   string `json:"symptoms"`
	Notes      string `json:"notes"`
}

// bookedResponse decorates a fresh reservation with its queue estimate.
type bookedResponse struct {
	*Appointment
	EstimatedWaitMinutes int `json:"estimated_wait_minutes"`
}

func (h *Handler) Book(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	patientID, err := callerID(c)
	if err != nil {
		return err
	}

	var payload bookPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	locationID, err := uuid.Parse(payload.LocationID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid location_id")
	}
	date, err := time.Parse(dateLayout, payload.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	a, err := h.svc.Book(c.Request().Context(), BookRequest{
		PatientID:  patientID,
		DoctorID:   doctorID,
		LocationID: locationID,
		Date:       date,
		Symptoms:   payload.Symptoms,
		Notes:      payload.Notes,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, bookedResponse{
		Appointment:          a,
		EstimatedWaitMinutes: a.EstimatedWaitMinutes(),
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	a, err := h.svc.Get(c.Request().Context(), id, caller)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListMine(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}
	f, err := filterFromContext(c)
	if err != nil {
		return err
	}

	items, total, err := h.svc.PatientAppointments(c.Request().Context(), patientID, f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, f.Limit, f.Offset))
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}
	f, err := filterFromContext(c)
	if err != nil {
		return err
	}

	items, total, err := h.svc.DoctorAppointments(c.Request().Context(), doctorID, f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, f.Limit, f.Offset))
}

func filterFromContext(c echo.Context) (ListFilter, error) {
	pg := pagination.FromContext(c)
	f := ListFilter{Limit: pg.Limit, Offset: pg.Offset}

	if statusStr := c.QueryParam("status"); statusStr != "" {
		status, err := ParseStatus(statusStr)
		if err != nil {
			return f, httpError(err)
		}
		f.Status = status
	}
	if dateStr := c.QueryParam("date"); dateStr != "" {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		f.Date = &date
	}
	if locStr := c.QueryParam("location_id"); locStr != "" {
		locID, err := uuid.Parse(locStr)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid location_id")
		}
		f.LocationID = &locID
	}
	return f, nil
}

type cancelPayload struct {
	Reason string `json:"reason"`
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	var payload cancelPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.Cancel(c.Request().Context(), id, caller, payload.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type statusPayload struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	doctorID, err := callerID(c)
	if err != nil {
		return err
	}

	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	status, err := ParseStatus(payload.Status)
	if err != nil {
		return httpError(err)
	}

	a, err := h.svc.UpdateStatus(c.Request().Context(), id, doctorID, status, payload.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}
