// README: Booking handlers for create/get/edit, the unallocated pool, and
// claim/release.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxihub/internal/config"
	"taxihub/internal/http/middleware"
	"taxihub/internal/modules/booking"
	"taxihub/internal/types"
)

type BookingHandler struct {
	booking *booking.Service
	cfg     config.BookingConfig
}

func NewBookingHandler(svc *booking.Service, cfg config.BookingConfig) *BookingHandler {
	return &BookingHandler{booking: svc, cfg: cfg}
}

type bookingView struct {
	ID             types.ID  `json:"id"`
	PickupLocation string    `json:"pickup_location"`
	Destination    string    `json:"destination"`
	Time           time.Time `json:"time"`
	Passengers     int       `json:"passengers"`
	Notes          []string  `json:"notes"`
	Status         string    `json:"status"`
	CustomerID     types.ID  `json:"customer_id"`
	DriverID       *types.ID `json:"driver_id,omitempty"`
	CompanyID      *types.ID `json:"company_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toBookingView(b booking.Booking) bookingView {
	return bookingView{
		ID:             b.ID,
		PickupLocation: b.PickupLocation,
		Destination:    b.Destination,
		Time:           b.Time,
		Passengers:     b.Passengers,
		Notes:          b.Notes,
		Status:         string(b.Status),
		CustomerID:     b.CustomerID,
		DriverID:       b.DriverID,
		CompanyID:      b.CompanyID,
		CreatedAt:      b.CreatedAt,
	}
}

type createBookingReq struct {
	PickupLocation string    `json:"pickup_location"`
	Destination    string    `json:"destination"`
	Time           time.Time `json:"time"`
	Passengers     int       `json:"passengers"`
	Notes          []string  `json:"notes"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.PickupLocation == "" || req.Destination == "" || req.Passengers < 1 {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	now := time.Now()
	if req.Time.Before(now.Add(h.cfg.MinNotice)) || req.Time.After(now.Add(h.cfg.MaxHorizon)) {
		writeError(c, http.StatusBadRequest, "booking time outside the schedulable window")
		return
	}

	id, err := h.booking.Create(c.Request.Context(), booking.CreateCommand{
		CustomerID:     middleware.CallerID(c),
		PickupLocation: req.PickupLocation,
		Destination:    req.Destination,
		Time:           req.Time,
		Passengers:     req.Passengers,
		Notes:          req.Notes,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"booking_id": id, "status": booking.StatusPending})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	d, err := h.booking.GetByID(c.Request.Context(), middleware.CallerID(c), types.ID(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	resp := gin.H{
		"booking":       toBookingView(d.Booking),
		"customer_name": d.CustomerName,
	}
	if d.DriverName != "" {
		resp["driver_name"] = d.DriverName
	}
	if d.RouteDistance != "" {
		resp["route_distance"] = d.RouteDistance
		resp["route_duration"] = d.RouteDuration.String()
	}
	writeJSON(c, http.StatusOK, resp)
}

type editBookingReq struct {
	DriverID *string    `json:"driver_id"`
	Status   *string    `json:"status"`
	Time     *time.Time `json:"time"`
	Note     *string    `json:"note"`
}

func (h *BookingHandler) Edit(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req editBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	cmd := booking.EditCommand{
		EditorID:  middleware.CallerID(c),
		BookingID: types.ID(id),
		Time:      req.Time,
		Note:      req.Note,
	}
	if req.DriverID != nil {
		d := types.ID(*req.DriverID)
		cmd.Driver = &d
	}
	if req.Status != nil {
		s := booking.Status(*req.Status)
		cmd.Status = &s
	}

	if err := h.booking.Edit(c.Request.Context(), cmd); err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"updated": true})
}

func (h *BookingHandler) ListUnallocated(c *gin.Context) {
	bookings, err := h.booking.ListUnallocated(c.Request.Context())
	if err != nil {
		writeBookingError(c, err)
		return
	}
	out := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingView(b))
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": out})
}

type claimReq struct {
	CompanyID string `json:"company_id"`
}

func (h *BookingHandler) Claim(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req claimReq
	if err := c.ShouldBindJSON(&req); err != nil || !isValidID(req.CompanyID) {
		writeError(c, http.StatusBadRequest, "invalid company id")
		return
	}
	err := h.booking.Claim(c.Request.Context(), booking.ClaimCommand{
		ActorID:   middleware.CallerID(c),
		BookingID: types.ID(id),
		CompanyID: types.ID(req.CompanyID),
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": booking.StatusInProgress})
}

func (h *BookingHandler) Release(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	err := h.booking.Release(c.Request.Context(), booking.ReleaseCommand{
		ActorID:   middleware.CallerID(c),
		BookingID: types.ID(id),
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": booking.StatusPending})
}
