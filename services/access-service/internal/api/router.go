package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

/*
NewRouter wires every HTTP endpoint of the access service.
Public: apply, accept invite, log in. Bearer: current session.
Admin: the review queue.
*/
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(h.logger))
	// ClientIP feeds rate limiting and audit; do not trust X-Forwarded-For by default.
	_ = r.SetTrustedProxies(nil)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	/* ---------- public endpoints ---------- */
	r.POST("/access-requests", h.submitAccessRequest)
	r.POST("/invites/accept", h.acceptInvite)
	r.POST("/sessions", h.createSession)

	/* ---------- bearer endpoints ---------- */
	authed := r.Group("/")
	authed.Use(h.authRequired())
	{
		authed.GET("/sessions/current", h.currentSession)
		authed.DELETE("/sessions/current", h.deleteSession)

		/* ----- admin sub-group ----- */
		admin := authed.Group("/access-requests")
		admin.Use(adminRequired())
		{
			admin.GET("", h.listAccessRequests)
			admin.GET("/:id", h.getAccessRequest)
			admin.POST("/:id/approve", h.approveAccessRequest)
			admin.POST("/:id/reject", h.rejectAccessRequest)
			admin.POST("/:id/invite", h.reissueInvite)
			admin.DELETE("/:id", h.clearAccessRequest)
		}
	}

	return r
}
