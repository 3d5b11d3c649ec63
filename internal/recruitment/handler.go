package recruitment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/auth"
)

type Guard func(permission string) gin.HandlerFunc

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, guard Guard) {
	h := &Handler{svc: svc}

	r.GET("/recruitment/requests", guard("recruitment.read"), h.List)
	r.POST("/recruitment/requests", guard("recruitment.create"), h.Create)
	r.GET("/recruitment/requests/:id", guard("recruitment.read"), h.Detail)
	r.PATCH("/recruitment/requests/:id", guard("recruitment.update"), h.Update)
	r.DELETE("/recruitment/requests/:id", guard("recruitment.delete"), h.Delete)
	r.GET("/recruitment/requests/:id/activities", guard("recruitment.read"), h.Activities)

	for _, action := range Actions() {
		perm := "recruitment.update"
		if RequiresApproval(action) {
			perm = "recruitment.approve"
		}
		r.POST("/recruitment/requests/:id/"+action, guard(perm), h.transition(action))
	}

	r.GET("/recruitment/requests/:id/candidates", guard("recruitment.read"), h.Candidates)
	r.POST("/recruitment/requests/:id/candidates", guard("recruitment.update"), h.AddCandidate)
	r.PATCH("/recruitment/candidates/:id/status", guard("recruitment.update"), h.SetCandidateStatus)
	r.GET("/recruitment/requests/:id/assessments", guard("recruitment.read"), h.Assessments)
	r.POST("/recruitment/requests/:id/assessments", guard("recruitment.update"), h.CreateAssessment)
	r.GET("/recruitment/requests/:id/hiring-requests", guard("recruitment.read"), h.HiringRequests)
	r.POST("/recruitment/requests/:id/hiring-requests", guard("recruitment.update"), h.CreateHiringRequest)
}

func actor(c *gin.Context) string {
	s, _ := auth.SessionFrom(c)
	return s.UserID
}

// GET /recruitment/requests?status=&department=&requested_by=&limit=&offset=
func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Status:      c.Query("status"),
		Department:  c.Query("department"),
		RequestedBy: c.Query("requested_by"),
	}
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "limit": q.Limit, "offset": q.Offset})
}

func (h *Handler) Create(c *gin.Context) {
	var in RequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.BadJSON(c)
		return
	}
	r, err := h.svc.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) Detail(c *gin.Context) {
	d, err := h.svc.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) Update(c *gin.Context) {
	var in RequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.BadJSON(c)
		return
	}
	r, err := h.svc.Update(c.Request.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Activities(c *gin.Context) {
	out, err := h.svc.Activities(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// POST /recruitment/requests/:id/<action>（本文は任意）
func (h *Handler) transition(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in TransitionInput
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&in); err != nil {
				apperr.BadJSON(c)
				return
			}
		}
		r, err := h.svc.Transition(c.Request.Context(), actor(c), c.Param("id"), action, in)
		if err != nil {
			apperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func (h *Handler) Candidates(c *gin.Context) {
	out, err := h.svc.Candidates(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *Handler) AddCandidate(c *gin.Context) {
	var in CandidateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.BadJSON(c)
		return
	}
	out, err := h.svc.AddCandidate(c.Request.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) SetCandidateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	out, err := h.svc.SetCandidateStatus(c.Request.Context(), actor(c), c.Param("id"), req.Status)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Assessments(c *gin.Context) {
	out, err := h.svc.Assessments(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *Handler) CreateAssessment(c *gin.Context) {
	var in AssessmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.BadJSON(c)
		return
	}
	out, err := h.svc.CreateAssessment(c.Request.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) HiringRequests(c *gin.Context) {
	out, err := h.svc.HiringRequests(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *Handler) CreateHiringRequest(c *gin.Context) {
	var in HiringInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.BadJSON(c)
		return
	}
	out, err := h.svc.CreateHiringRequest(c.Request.Context(), actor(c), c.Param("id"), in)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": out})
}
