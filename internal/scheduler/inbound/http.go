package inbound

import (
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
	"github.com/shandysiswandi/herald/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}
	admin := router.RequireRole(jwt.RoleAdmin)

	r.GET("/api/v1/jobs/failed", end.ListFailed, admin)
	r.POST("/api/v1/jobs/order-deadline/:id/check", end.CheckOrderDeadline, admin)
	r.POST("/api/v1/jobs/run/:name", end.RunJob, admin)
}
