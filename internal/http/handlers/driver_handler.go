// README: Driver handlers: registration, location pings and nearby lookups.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridedispatch/internal/modules/driver"
	"ridedispatch/internal/modules/user"
	"ridedispatch/internal/types"
)

type DriverHandler struct {
	drivers        *driver.Service
	nearbyRadiusKm float64
}

func NewDriverHandler(drivers *driver.Service, nearbyRadiusKm float64) *DriverHandler {
	return &DriverHandler{drivers: drivers, nearbyRadiusKm: nearbyRadiusKm}
}

type registerDriverReq struct {
	VehiclePlate string  `json:"vehicle_plate"`
	VehicleModel string  `json:"vehicle_model"`
	VehicleYear  int     `json:"vehicle_year"`
	VehicleColor string  `json:"vehicle_color"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

type driverResponse struct {
	ID           types.ID            `json:"id"`
	UserID       types.ID            `json:"user_id"`
	VehiclePlate string              `json:"vehicle_plate"`
	VehicleModel string              `json:"vehicle_model"`
	Position     types.Point         `json:"position"`
	Availability driver.Availability `json:"availability"`
	Rating       float64             `json:"rating"`
}

func toDriverResponse(d *driver.Driver) driverResponse {
	return driverResponse{
		ID:           d.ID,
		UserID:       d.UserID,
		VehiclePlate: d.VehiclePlate,
		VehicleModel: d.VehicleModel,
		Position:     d.Position,
		Availability: d.Availability,
		Rating:       d.Rating,
	}
}

// Register creates a driver profile owned by the authenticated user.
func (h *DriverHandler) Register(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	var req registerDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.VehiclePlate == "" {
		writeError(c, http.StatusBadRequest, "vehicle_plate required")
		return
	}
	d := &driver.Driver{
		UserID:       types.ID(claims.Subject),
		VehiclePlate: req.VehiclePlate,
		VehicleModel: req.VehicleModel,
		VehicleYear:  req.VehicleYear,
		VehicleColor: req.VehicleColor,
		Position:     types.Point{Lat: req.Lat, Lng: req.Lng},
		Availability: driver.StatusAvailable,
	}
	if err := h.drivers.Register(c.Request.Context(), d); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toDriverResponse(d))
}

func (h *DriverHandler) Get(c *gin.Context) {
	d, err := h.drivers.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toDriverResponse(d))
}

type updateLocationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateLocation accepts pings from the driver who owns the profile, or from
// an admin.
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	claims, ok := mustClaims(c)
	if !ok {
		return
	}
	id := types.ID(c.Param("id"))
	d, err := h.drivers.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if claims.Role != user.RoleAdmin && d.UserID != types.ID(claims.Subject) {
		writeError(c, http.StatusForbidden, "not your driver profile")
		return
	}
	var req updateLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.drivers.UpdateLocation(c.Request.Context(), id, types.Point{Lat: req.Lat, Lng: req.Lng}); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"driver_id": id, "lat": req.Lat, "lng": req.Lng})
}

// Nearby lists available drivers around a point, closest first. Radius is
// optional and defaults to the configured dispatch radius.
func (h *DriverHandler) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "lat and lng query params required")
		return
	}
	radius := h.nearbyRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			writeError(c, http.StatusBadRequest, "radius_km must be a positive number")
			return
		}
		radius = r
	}
	drivers, err := h.drivers.NearbyDrivers(c.Request.Context(), types.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]driverResponse, len(drivers))
	for i := range drivers {
		out[i] = toDriverResponse(&drivers[i])
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": out})
}
