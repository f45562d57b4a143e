package controllers

import (
	"net/http"

	"farmconnect/models"
	"farmconnect/services"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	auth *services.AuthService
}

func NewProfileController(auth *services.AuthService) *ProfileController {
	return &ProfileController{auth: auth}
}

// GetProfile godoc
// @Summary Get profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} models.Response{data=models.Profile}
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{id} [get]
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	profile, err := ctrl.auth.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Profile not found", err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// CreateProfile godoc
// @Summary Create profile
// @Description Store the profile of the caller's own account. Accepts a session or a signup token.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateProfileRequest true "Profile"
// @Success 201 {object} models.Response{data=models.Profile}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /profiles [post]
func (ctrl *ProfileController) CreateProfile(c *gin.Context) {
	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := ctrl.auth.CreateProfile(c.Request.Context(), claims(c), req)
	if err != nil {
		respondError(c, "Failed to create profile", err)
		return
	}
	respond(c, http.StatusCreated, "Profile created successfully", profile)
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Partial update of name, location and phone. The role cannot change.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param request body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.Response{data=models.Profile}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /profiles/{id} [patch]
func (ctrl *ProfileController) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := ctrl.auth.UpdateProfile(c.Request.Context(), claims(c), c.Param("id"), req)
	if err != nil {
		respondError(c, "Failed to update profile", err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", profile)
}
