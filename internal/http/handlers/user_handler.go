// README: User handlers for registration, login, profile, and booking history.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taxihub/internal/http/middleware"
	"taxihub/internal/modules/identity"
	"taxihub/internal/types"
)

type UserHandler struct {
	users *identity.Service
}

func NewUserHandler(svc *identity.Service) *UserHandler {
	return &UserHandler{users: svc}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.users.Register(c.Request.Context(), identity.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"user_id": id})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	token, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeUserError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"token": token})
}

type userView struct {
	ID        types.ID  `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CompanyID *types.ID `json:"company_id,omitempty"`
	Available bool      `json:"available"`
}

func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	u, err := h.users.GetByID(c.Request.Context(), middleware.CallerID(c), types.ID(id))
	if err != nil {
		writeUserError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CompanyID: u.CompanyID,
		Available: u.Available,
	})
}

// List returns every registered user; reachable by company admins only, who
// need it to find candidate drivers.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		writeUserError(c, err)
		return
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, userView{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      string(u.Role),
			CompanyID: u.CompanyID,
			Available: u.Available,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"users": out})
}

type editUserReq struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Available   *bool   `json:"available"`
	OldPassword string  `json:"old_password"`
	NewPassword *string `json:"new_password"`
}

func (h *UserHandler) Edit(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	var req editUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.users.Edit(c.Request.Context(), identity.EditCommand{
		ActorID:     middleware.CallerID(c),
		UserID:      types.ID(id),
		Name:        req.Name,
		Email:       req.Email,
		Available:   req.Available,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"updated": true})
}

func (h *UserHandler) Bookings(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	activeOnly := c.Query("active") == "true"

	bookings, err := h.users.Bookings(c.Request.Context(), middleware.CallerID(c), types.ID(id), limit, activeOnly)
	if err != nil {
		writeUserError(c, err)
		return
	}
	out := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingView(b))
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": out})
}
