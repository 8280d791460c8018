// README: Company handlers for the roster and company-scoped booking views.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taxihub/internal/http/middleware"
	"taxihub/internal/modules/company"
	"taxihub/internal/types"
)

type CompanyHandler struct {
	company *company.Service
}

func NewCompanyHandler(svc *company.Service) *CompanyHandler {
	return &CompanyHandler{company: svc}
}

type createCompanyReq struct {
	Name string `json:"name"`
}

func (h *CompanyHandler) Create(c *gin.Context) {
	var req createCompanyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.company.Create(c.Request.Context(), company.CreateCommand{
		ActorID: middleware.CallerID(c),
		Name:    req.Name,
	})
	if err != nil {
		writeCompanyError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"company_id": id})
}

type companyView struct {
	ID      types.ID   `json:"id"`
	Name    string     `json:"name"`
	Admins  []types.ID `json:"admins"`
	Drivers []types.ID `json:"drivers"`
}

func (h *CompanyHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid company id")
		return
	}
	co, err := h.company.GetByID(c.Request.Context(), middleware.CallerID(c), types.ID(id))
	if err != nil {
		writeCompanyError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, companyView{
		ID:      co.ID,
		Name:    co.Name,
		Admins:  co.Admins,
		Drivers: co.Drivers,
	})
}

func (h *CompanyHandler) Bookings(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid company id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	activeOnly := c.Query("active") == "true"

	bookings, err := h.company.Bookings(c.Request.Context(), middleware.CallerID(c), types.ID(id), limit, activeOnly)
	if err != nil {
		writeCompanyError(c, err)
		return
	}
	out := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingView(b))
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": out})
}

type memberView struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
	Role string   `json:"role"`
}

func (h *CompanyHandler) Drivers(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid company id")
		return
	}
	drivers, err := h.company.Drivers(c.Request.Context(), middleware.CallerID(c), types.ID(id))
	if err != nil {
		writeCompanyError(c, err)
		return
	}
	out := make([]memberView, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, memberView{ID: d.ID, Name: d.Name, Role: string(d.Role)})
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": out})
}

type driverReq struct {
	DriverID string `json:"driver_id"`
}

func (h *CompanyHandler) AddDriver(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid company id")
		return
	}
	var req driverReq
	if err := c.ShouldBindJSON(&req); err != nil || !isValidID(req.DriverID) {
		writeError(c, http.StatusBadRequest, "invalid driver id")
		return
	}
	err := h.company.AddDriver(c.Request.Context(), middleware.CallerID(c), types.ID(id), types.ID(req.DriverID))
	if err != nil {
		writeCompanyError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"added": true})
}

func (h *CompanyHandler) RemoveDriver(c *gin.Context) {
	id := c.Param("id")
	driverID := c.Param("driverID")
	if !isValidID(id) || !isValidID(driverID) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return
	}
	err := h.company.RemoveDriver(c.Request.Context(), middleware.CallerID(c), types.ID(id), types.ID(driverID))
	if err != nil {
		writeCompanyError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"removed": true})
}
