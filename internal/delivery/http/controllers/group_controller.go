package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	h "joynex/internal/delivery/http/helpers"
	"joynex/internal/delivery/http/middleware"
	"joynex/internal/domain"
)

// uuidRegexGroup matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexGroup = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

const dateLayout = "2006-01-02"

type GroupController struct {
	Logger            *slog.Logger
	GroupService      domain.GroupService
	MembershipService domain.MembershipService
}

func NewGroupController(logger *slog.Logger, groupSvc domain.GroupService, membershipSvc domain.MembershipService) *GroupController {
	return &GroupController{
		Logger:            logger,
		GroupService:      groupSvc,
		MembershipService: membershipSvc,
	}
}

// CreateGroupRequest is the request body for POST /groups
type CreateGroupRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Date          string `json:"date"` // YYYY-MM-DD
	TimeSlot      string `json:"time_slot"`
	Location      string `json:"location"`
	LocationLink  string `json:"location_link"`
	ContactMethod string `json:"contact_method"`
	ContactInfo   string `json:"contact_info"`
	MaxMembers    int    `json:"max_members"`
}

// Validate implements helpers.Validator. Field-level rules live in the
// service; this only rejects bodies the service can't even interpret.
func (g CreateGroupRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(g.Date) == "" {
		errs = append(errs, "date is required")
	} else if _, err := time.Parse(dateLayout, strings.TrimSpace(g.Date)); err != nil {
		errs = append(errs, "date must be in YYYY-MM-DD format")
	}
	return errs
}

// UpdateGroupRequest is the request body for PATCH /groups/{groupID}.
// All fields are optional; only present fields are applied.
type UpdateGroupRequest struct {
	Description  *string `json:"description"`
	Date         *string `json:"date"` // YYYY-MM-DD
	TimeSlot     *string `json:"time_slot"`
	Location     *string `json:"location"`
	LocationLink *string `json:"location_link"`
	ContactInfo  *string `json:"contact_info"`
}

// Validate implements helpers.Validator.
func (g UpdateGroupRequest) Validate() []string {
	var errs []string
	if g.Date != nil {
		if _, err := time.Parse(dateLayout, strings.TrimSpace(*g.Date)); err != nil {
			errs = append(errs, "date must be in YYYY-MM-DD format")
		}
	}
	return errs
}

// Create godoc
// @Summary Create a group
// @Description Create a new group owned by the authenticated user. The owner becomes the first member.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateGroupRequest true "Group data"
// @Success 201 {object} helpers.APIResponse "data contains the created group"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups [post]
func (c *GroupController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	date, _ := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	group, err := c.GroupService.CreateGroup(r.Context(), userID, domain.CreateGroupInput{
		Name:          req.Name,
		Category:      req.Category,
		Description:   req.Description,
		Date:          date,
		TimeSlot:      req.TimeSlot,
		Location:      req.Location,
		LocationLink:  req.LocationLink,
		ContactMethod: req.ContactMethod,
		ContactInfo:   req.ContactInfo,
		MaxMembers:    req.MaxMembers,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	h.WriteJSONSuccess(w, http.StatusCreated, group)
}

// ListAvailable godoc
// @Summary List groups available to join
// @Description Returns groups the authenticated user is not a member of, newest first. Optional search and category query parameters narrow the list.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search term matched against name and description"
// @Param category query string false "Category filter; empty or All matches everything"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data is an array of groups"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups [get]
func (c *GroupController) ListAvailable(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	groups, err := c.GroupService.ListAvailable(r.Context(), userID, q.Get("search"), q.Get("category"), h.ParsePagination(r))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if groups == nil {
		groups = []*domain.Group{}
	}

	h.WriteJSONSuccess(w, http.StatusOK, groups)
}

// ListJoined godoc
// @Summary List groups the current user has joined
// @Description Returns every group the authenticated user is a member of, including groups they own, newest first.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of groups"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/joined [get]
func (c *GroupController) ListJoined(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	groups, err := c.GroupService.ListJoined(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if groups == nil {
		groups = []*domain.Group{}
	}

	h.WriteJSONSuccess(w, http.StatusOK, groups)
}

// ListCreated godoc
// @Summary List groups the current user created
// @Description Returns groups owned by the authenticated user, newest first.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of groups"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/created [get]
func (c *GroupController) ListCreated(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	groups, err := c.GroupService.ListCreated(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if groups == nil {
		groups = []*domain.Group{}
	}

	h.WriteJSONSuccess(w, http.StatusOK, groups)
}

// GetMembers godoc
// @Summary List members of a group
// @Description Returns the members of the group ordered by join time, owner first.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is an array of members"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/members [get]
func (c *GroupController) GetMembers(w http.ResponseWriter, r *http.Request) {
	groupID, ok := c.groupIDFromPath(w, r)
	if !ok {
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	members, err := c.GroupService.GetMembers(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "group not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if members == nil {
		members = []*domain.GroupMember{}
	}

	h.WriteJSONSuccess(w, http.StatusOK, members)
}

// Join godoc
// @Summary Join a group
// @Description Adds the authenticated user to the group. The capacity check and the insert happen in one transaction, so a full group can never be oversubscribed.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains the new membership"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already a member or group is full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/join [post]
func (c *GroupController) Join(w http.ResponseWriter, r *http.Request) {
	groupID, ok := c.groupIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	member, err := c.MembershipService.Join(r.Context(), groupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "group not found")
		case errors.Is(err, domain.ErrAlreadyMember):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "already a member of this group")
		case errors.Is(err, domain.ErrGroupFull):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "group is full")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusCreated, member)
}

// Leave godoc
// @Summary Leave a group
// @Description Removes the authenticated user from the group. The owner cannot leave their own group.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains left: true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not a member or owner cannot leave)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/leave [post]
func (c *GroupController) Leave(w http.ResponseWriter, r *http.Request) {
	groupID, ok := c.groupIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.MembershipService.Leave(r.Context(), groupID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "group not found")
		case errors.Is(err, domain.ErrNotMember):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "not a member of this group")
		case errors.Is(err, domain.ErrOwnerCannotLeave):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "the owner cannot leave their own group")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"left": true})
}

// Update godoc
// @Summary Update a group
// @Description Applies the present fields to the group. Only the owner may update; members are notified of the change.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Param body body UpdateGroupRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated group"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID} [patch]
func (c *GroupController) Update(w http.ResponseWriter, r *http.Request) {
	groupID, ok := c.groupIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateGroupRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	in := domain.UpdateGroupInput{
		Description:  req.Description,
		TimeSlot:     req.TimeSlot,
		Location:     req.Location,
		LocationLink: req.LocationLink,
		ContactInfo:  req.ContactInfo,
	}
	if req.Date != nil {
		date, _ := time.Parse(dateLayout, strings.TrimSpace(*req.Date))
		in.Date = &date
	}

	group, err := c.GroupService.UpdateGroup(r.Context(), groupID, userID, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "group not found")
		case errors.Is(err, domain.ErrForbidden):
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "only the owner can update this group")
		case errors.Is(err, domain.ErrInvalidInput):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, group)
}

// Delete godoc
// @Summary Cancel a group
// @Description Deletes the group and its memberships. Only the owner may cancel; members are notified.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains deleted: true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID} [delete]
func (c *GroupController) Delete(w http.ResponseWriter, r *http.Request) {
	groupID, ok := c.groupIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.GroupService.DeleteGroup(r.Context(), groupID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "group not found")
		case errors.Is(err, domain.ErrForbidden):
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "only the owner can cancel this group")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (c *GroupController) groupIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	groupID := r.PathValue("groupID")
	if groupID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing groupID")
		return "", false
	}
	if !uuidRegexGroup.MatchString(groupID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid groupID")
		return "", false
	}
	return groupID, true
}
