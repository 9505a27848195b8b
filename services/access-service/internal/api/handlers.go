package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/app/auth"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/app/commands"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler adapts HTTP to the application commands. It holds no business rules.
type Handler struct {
	submit       *commands.SubmitAccessRequestHandler
	list         *commands.ListAccessRequestsHandler
	approve      *commands.ApproveAccessRequestHandler
	reject       *commands.RejectAccessRequestHandler
	clear        *commands.ClearAccessRequestHandler
	reissue      *commands.ReissueInviteHandler
	accept       *commands.AcceptInvitationHandler
	login        *commands.LoginUserHandler
	authenticate *commands.AuthenticateSessionHandler
	logout       *commands.LogoutUserHandler
	logger       *slog.Logger

	// Invite tokens normally travel only by email. Local setups without the
	// notification service can opt in to seeing them in admin responses.
	exposeInviteTokens bool
}

type Commands struct {
	Submit       *commands.SubmitAccessRequestHandler
	List         *commands.ListAccessRequestsHandler
	Approve      *commands.ApproveAccessRequestHandler
	Reject       *commands.RejectAccessRequestHandler
	Clear        *commands.ClearAccessRequestHandler
	Reissue      *commands.ReissueInviteHandler
	Accept       *commands.AcceptInvitationHandler
	Login        *commands.LoginUserHandler
	Authenticate *commands.AuthenticateSessionHandler
	Logout       *commands.LogoutUserHandler
}

type HandlerOption func(*Handler)

// WithInviteTokens includes raw invite tokens in approve and reissue responses.
func WithInviteTokens(expose bool) HandlerOption {
	return func(h *Handler) { h.exposeInviteTokens = expose }
}

func NewHandler(cmds Commands, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		submit:       cmds.Submit,
		list:         cmds.List,
		approve:      cmds.Approve,
		reject:       cmds.Reject,
		clear:        cmds.Clear,
		reissue:      cmds.Reissue,
		accept:       cmds.Accept,
		login:        cmds.Login,
		authenticate: cmds.Authenticate,
		logout:       cmds.Logout,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

/* ----------------------------------------------------------------
   DTO types
-----------------------------------------------------------------*/

type submitRequestBody struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type rejectRequestBody struct {
	Reason string `json:"reason"`
}

type acceptInviteBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accessRequestDTO struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FullName        string     `json:"fullName"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	ReviewerEmail   *string    `json:"reviewerEmail,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
}

func toAccessRequestDTO(req *access.AccessRequest) accessRequestDTO {
	return accessRequestDTO{
		ID:              req.ID.String(),
		Email:           req.Email,
		FullName:        req.FullName,
		Status:          string(req.Status),
		CreatedAt:       req.CreatedAt,
		ReviewerEmail:   req.ReviewerEmail,
		ReviewedAt:      req.ReviewedAt,
		RejectionReason: req.RejectionReason,
	}
}

// accountDTO never carries the password hash.
type accountDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func toAccountDTO(acc *account.Account) accountDTO {
	return accountDTO{ID: acc.ID.String(), Email: acc.Email, FullName: acc.FullName, Role: string(acc.Role)}
}

/* ================================================================
   INTAKE
================================================================ */

func (h *Handler) submitAccessRequest(c *gin.Context) {
	var in submitRequestBody
	if !h.bind(c, &in) {
		return
	}
	req, err := h.submit.Handle(c.Request.Context(), commands.SubmitAccessRequestParams{
		Email:     in.Email,
		FullName:  in.FullName,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"requestId": req.ID.String()})
}

/* ================================================================
   REVIEW (admin)
================================================================ */

func (h *Handler) listAccessRequests(c *gin.Context) {
	reqs, err := h.list.Handle(c.Request.Context(), commands.ListAccessRequestsParams{
		Actor:  principalFrom(c).Actor(),
		Status: c.Query("status"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]accessRequestDTO, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toAccessRequestDTO(req))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getAccessRequest(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	req, err := h.list.Get(c.Request.Context(), principalFrom(c).Actor(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccessRequestDTO(req))
}

func (h *Handler) approveAccessRequest(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	res, err := h.approve.Handle(c.Request.Context(), commands.ApproveAccessRequestParams{
		RequestID: id,
		Actor:     principalFrom(c).Actor(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.inviteResponse(res.Request, res.Account, res.InviteToken, res.InviteExpiresAt))
}

func (h *Handler) reissueInvite(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	res, err := h.reissue.Handle(c.Request.Context(), commands.ReissueInviteParams{
		RequestID: id,
		Actor:     principalFrom(c).Actor(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.inviteResponse(res.Request, res.Account, res.InviteToken, res.InviteExpiresAt))
}

func (h *Handler) inviteResponse(req *access.AccessRequest, acc *account.Account, token string, expiresAt time.Time) gin.H {
	out := gin.H{
		"request":         toAccessRequestDTO(req),
		"account":         toAccountDTO(acc),
		"inviteExpiresAt": expiresAt,
	}
	if h.exposeInviteTokens {
		out["inviteToken"] = token
	}
	return out
}

func (h *Handler) rejectAccessRequest(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	// The body is optional.
	var in rejectRequestBody
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(c, domainErr.ErrInvalidInput)
		return
	}
	_, err := h.reject.Handle(c.Request.Context(), commands.RejectAccessRequestParams{
		RequestID: id,
		Actor:     principalFrom(c).Actor(),
		Reason:    in.Reason,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) clearAccessRequest(c *gin.Context) {
	id, ok := h.requestID(c)
	if !ok {
		return
	}
	err := h.clear.Handle(c.Request.Context(), commands.ClearAccessRequestParams{
		RequestID: id,
		Actor:     principalFrom(c).Actor(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ================================================================
   CREDENTIALS
================================================================ */

func (h *Handler) acceptInvite(c *gin.Context) {
	var in acceptInviteBody
	if !h.bind(c, &in) {
		return
	}
	acc, err := h.accept.Handle(c.Request.Context(), commands.AcceptInvitationParams{
		Token:     in.Token,
		Password:  in.Password,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": toAccountDTO(acc)})
}

func (h *Handler) createSession(c *gin.Context) {
	var in loginBody
	if !h.bind(c, &in) {
		return
	}
	res, err := h.login.Handle(c.Request.Context(), commands.LoginParams{
		Email:     in.Email,
		Password:  in.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     res.Token,
		"tokenType": "Bearer",
		"expiresAt": res.ExpiresAt,
		"account":   toAccountDTO(res.Account),
	})
}

func (h *Handler) currentSession(c *gin.Context) {
	principal := principalFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"account":   toAccountDTO(principal.Account),
		"expiresAt": principal.Session.ExpiresAt,
	})
}

func (h *Handler) deleteSession(c *gin.Context) {
	err := h.logout.Handle(c.Request.Context(), commands.LogoutParams{
		Principal: principalFrom(c),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ================================================================
   HELPERS
================================================================ */

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.writeError(c, domainErr.ErrInvalidInput)
		return false
	}
	return true
}

// requestID treats an unparsable id like an unknown one.
func (h *Handler) requestID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.writeError(c, domainErr.ErrRequestNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	mapped := auth.MapError(err)
	if mapped.Internal() {
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()), slog.Any("error", err))
	}
	c.AbortWithStatusJSON(mapped.Status, gin.H{"error": mapped.Message})
}
