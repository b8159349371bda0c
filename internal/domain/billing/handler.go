package billing

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicq/clinicq/internal/platform/auth"
	"github.com/clinicq/clinicq/pkg/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes attaches payment endpoints. All of them act on the
// caller's own appointments, so the patient role is required throughout.
func (h *Handler) RegisterRoutes(authed *echo.Group) {
	payGroup := authed.Group("", auth.RequireRole(auth.RolePatient))
	payGroup.POST("/payments/create-order", h.CreateOrder)
	payGroup.POST("/payments/verify", h.Verify)
	payGroup.POST("/payments/failure", h.RecordFailure)
	payGroup.GET("/payments/:appointmentId", h.Details)
}

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

type createOrderPayload struct {
	AppointmentID string `json:"appointment_id"`
}

func (h *Handler) CreateOrder(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}

	var payload createOrderPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appointmentID, err := uuid.Parse(payload.AppointmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_id")
	}

	details, err := h.svc.CreateOrder(c.Request().Context(), appointmentID, patientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, details)
}

type verifyPayload struct {
	AppointmentID string `json:"appointment_id"`
	OrderID       string `json:"razorpay_order_id"`
	PaymentID     string `json:"razorpay_payment_id"`
	Signature     string `json:"razorpay_signature"`
}

func (h *Handler) Verify(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}

	var payload verifyPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appointmentID, err := uuid.Parse(payload.AppointmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_id")
	}

	result, err := h.svc.Verify(c.Request().Context(), VerifyRequest{
		AppointmentID: appointmentID,
		PatientID:     patientID,
		OrderID:       payload.OrderID,
		PaymentID:     payload.PaymentID,
		Signature:     payload.Signature,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type failurePayload struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

func (h *Handler) RecordFailure(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}

	var payload failurePayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appointmentID, err := uuid.Parse(payload.AppointmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_id")
	}

	if err := h.svc.RecordFailure(c.Request().Context(), appointmentID, patientID, payload.Reason); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *Handler) Details(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	details, err := h.svc.Details(c.Request().Context(), appointmentID, patientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, details)
}
