// README: Address handlers: saved pickup points for the authenticated user.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridedispatch/internal/modules/address"
	"ridedispatch/internal/types"
)

type AddressHandler struct {
	addresses address.Store
}

func NewAddressHandler(addresses address.Store) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

type createAddressReq struct {
	Label  string  `json:"label"`
	Street string  `json:"street"`
	City   string  `json:"city"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

type addressResponse struct {
	ID       types.ID    `json:"id"`
	Label    string      `json:"label"`
	Street   string      `json:"street"`
	City     string      `json:"city"`
	Position types.Point `json:"position"`
}

func toAddressResponse(a *address.Address) addressResponse {
	return addressResponse{
		ID:       a.ID,
		Label:    a.Label,
		Street:   a.Street,
		City:     a.City,
		Position: a.Position,
	}
}

func (h *AddressHandler) Create(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	var req createAddressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	a := &address.Address{
		ID:        types.NewID(),
		UserID:    types.ID(claims.Subject),
		Label:     req.Label,
		Street:    req.Street,
		City:      req.City,
		Position:  types.Point{Lat: req.Lat, Lng: req.Lng},
		CreatedAt: time.Now(),
	}
	if err := h.addresses.Save(c.Request.Context(), a); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toAddressResponse(a))
}

func (h *AddressHandler) List(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	addrs, err := h.addresses.ListByUser(c.Request.Context(), types.ID(claims.Subject))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]addressResponse, len(addrs))
	for i := range addrs {
		out[i] = toAddressResponse(&addrs[i])
	}
	writeJSON(c, http.StatusOK, gin.H{"addresses": out})
}
