package controllers

import (
	"net/http"

	"farmconnect/models"
	"farmconnect/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup godoc
// @Summary Sign up
// @Description Create an account. With email confirmation enabled the response carries a signup token that only authorizes the profile insert.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Signup Request"
// @Success 201 {object} models.Response{data=models.SignupResult}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (ctrl *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := ctrl.auth.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Signup failed", err)
		return
	}

	message := "Account created"
	if res.RequiresEmailConfirmation {
		message = "Account created, check your email to confirm it"
	}
	respond(c, http.StatusCreated, message, res)
}

// Login godoc
// @Summary Sign in
// @Description Sign in with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Response{data=models.Session}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	session, err := ctrl.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Login failed", err)
		return
	}
	respond(c, http.StatusOK, "Login successful", session)
}

// Logout godoc
// @Summary Sign out
// @Description Revoke the current access token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (ctrl *AuthController) Logout(c *gin.Context) {
	if err := ctrl.auth.Logout(c.Request.Context(), claims(c)); err != nil {
		respondError(c, "Logout failed", err)
		return
	}
	respond(c, http.StatusOK, "Logged out", nil)
}

// Session godoc
// @Summary Current session
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=models.Session}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/session [get]
func (ctrl *AuthController) Session(c *gin.Context) {
	session, err := ctrl.auth.Session(c.Request.Context(), claims(c), c.GetString("token"))
	if err != nil {
		respondError(c, "Session lookup failed", err)
		return
	}
	respond(c, http.StatusOK, "Session retrieved", session)
}

// ConfirmEmail godoc
// @Summary Confirm email
// @Description Target of the link mailed at sign-up
// @Tags Authentication
// @Produce json
// @Param token query string true "Confirmation token"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/confirm [get]
func (ctrl *AuthController) ConfirmEmail(c *gin.Context) {
	if err := ctrl.auth.ConfirmEmail(c.Request.Context(), c.Query("token")); err != nil {
		respondError(c, "Email confirmation failed", err)
		return
	}
	respond(c, http.StatusOK, "Email confirmed, you can now sign in", nil)
}

// ChangePassword godoc
// @Summary Change password
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChangePasswordRequest true "Change Password Request"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/change-password [post]
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := ctrl.auth.ChangePassword(c.Request.Context(), c.GetString("user_id"), req); err != nil {
		respondError(c, "Failed to change password", err)
		return
	}
	respond(c, http.StatusOK, "Password changed successfully", nil)
}

// DeleteAccount godoc
// @Summary Delete account
// @Description Delete the account together with its profile, listings and orders
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/account [delete]
func (ctrl *AuthController) DeleteAccount(c *gin.Context) {
	if err := ctrl.auth.DeleteAccount(c.Request.Context(), claims(c)); err != nil {
		respondError(c, "Failed to delete account", err)
		return
	}
	respond(c, http.StatusOK, "Account deleted", nil)
}
