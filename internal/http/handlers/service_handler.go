// README: Service handlers: dispatch a pickup request, read records, drive
// lifecycle transitions.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridedispatch/internal/auth"
	"ridedispatch/internal/modules/address"
	"ridedispatch/internal/modules/dispatch"
	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/modules/service"
	"ridedispatch/internal/modules/user"
	"ridedispatch/internal/types"
)

type ServiceHandler struct {
	engine    *dispatch.Engine
	services  *service.Service
	drivers   *driver.Service
	addresses address.Store
}

func NewServiceHandler(engine *dispatch.Engine, services *service.Service, drivers *driver.Service, addresses address.Store) *ServiceHandler {
	return &ServiceHandler{engine: engine, services: services, drivers: drivers, addresses: addresses}
}

// lifecycleActor resolves the acting identity for transitions. Records hold
// driver profile IDs, not account IDs, so driver tokens are mapped to their
// profile first. A driver account without a profile keeps its account ID and
// fails the actor check downstream.
func (h *ServiceHandler) lifecycleActor(c *gin.Context, claims *auth.Claims) service.Actor {
	actor := actorFrom(claims)
	if claims.Role != user.RoleDriver {
		return actor
	}
	if d, err := h.drivers.GetByUser(c.Request.Context(), types.ID(claims.Subject)); err == nil {
		actor.ID = d.ID
	}
	return actor
}

type createServiceReq struct {
	PickupLat *float64 `json:"pickup_lat"`
	PickupLng *float64 `json:"pickup_lng"`
	AddressID string   `json:"address_id"`
}

type recordResponse struct {
	ID           types.ID       `json:"id"`
	RequesterID  types.ID       `json:"requester_id"`
	DriverID     types.ID       `json:"driver_id"`
	Pickup       types.Point    `json:"pickup"`
	Status       service.Status `json:"status"`
	DistanceKm   float64        `json:"distance_km"`
	ETAMinutes   int            `json:"eta_minutes"`
	CancelReason *string        `json:"cancel_reason,omitempty"`
}

func toRecordResponse(r *service.Record) recordResponse {
	return recordResponse{
		ID:           r.ID,
		RequesterID:  r.RequesterID,
		DriverID:     r.DriverID,
		Pickup:       r.Pickup,
		Status:       r.Status,
		DistanceKm:   r.DistanceKm,
		ETAMinutes:   r.ETAMinutes,
		CancelReason: r.CancelReason,
	}
}

// Create dispatches a pickup request for the authenticated user. The pickup
// comes either from inline coordinates or from a saved address.
func (h *ServiceHandler) Create(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	var req createServiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	var pickup types.Point
	switch {
	case req.AddressID != "":
		addr, err := h.addresses.Get(c.Request.Context(), types.ID(req.AddressID))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if addr.UserID != types.ID(claims.Subject) {
			writeError(c, http.StatusForbidden, "address belongs to another user")
			return
		}
		pickup = addr.Position
	case req.PickupLat != nil && req.PickupLng != nil:
		pickup = types.Point{Lat: *req.PickupLat, Lng: *req.PickupLng}
	default:
		writeError(c, http.StatusBadRequest, "pickup coordinates or address_id required")
		return
	}

	preq, err := dispatch.NewPickupRequest(types.ID(claims.Subject), pickup)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out, err := h.engine.Dispatch(c.Request.Context(), preq)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !out.Assigned {
		writeError(c, http.StatusNotFound, "no driver available")
		return
	}
	writeJSON(c, http.StatusCreated, toRecordResponse(out.Record))
}

func (h *ServiceHandler) Get(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	r, err := h.services.Get(c.Request.Context(), h.lifecycleActor(c, claims), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRecordResponse(r))
}

func (h *ServiceHandler) List(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	records, err := h.services.List(c.Request.Context(), h.lifecycleActor(c, claims))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]recordResponse, len(records))
	for i := range records {
		out[i] = toRecordResponse(&records[i])
	}
	writeJSON(c, http.StatusOK, gin.H{"services": out})
}

func (h *ServiceHandler) Start(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	r, err := h.services.Start(c.Request.Context(), service.StartCommand{
		RecordID: types.ID(c.Param("id")),
		Actor:    h.lifecycleActor(c, claims),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRecordResponse(r))
}

func (h *ServiceHandler) Complete(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	r, err := h.services.Complete(c.Request.Context(), service.CompleteCommand{
		RecordID: types.ID(c.Param("id")),
		Actor:    h.lifecycleActor(c, claims),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRecordResponse(r))
}

type cancelServiceReq struct {
	Reason string `json:"reason"`
}

func (h *ServiceHandler) Cancel(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	var req cancelServiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.services.Cancel(c.Request.Context(), service.CancelCommand{
		RecordID: types.ID(c.Param("id")),
		Actor:    h.lifecycleActor(c, claims),
		Reason:   req.Reason,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRecordResponse(r))
}
