package controller

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/internal/app/service"
	apperrors "github.com/meditrack/meditrack-backend/internal/errors"
	"github.com/meditrack/meditrack-backend/internal/middleware"
	"github.com/meditrack/meditrack-backend/pkg/util"
)

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
}

func NewAuthController(authService service.AuthService, passwordResetService service.PasswordResetService) *AuthController {
	useJSONFieldNames()
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
	}
}

type EmergencyContactRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Relation string `json:"relation" binding:"required"`
}

type ShiftTimingRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=patient doctor"`

	// patient
	Age              *int                     `json:"age" binding:"omitempty,min=0,max=150"`
	Disease          string                   `json:"disease"`
	HospitalAdmitted string                   `json:"hospitalAdmitted"`
	EmergencyContact *EmergencyContactRequest `json:"emergencyContact"`

	// doctor
	Specialization  string              `json:"specialization"`
	WorkingHospital string              `json:"workingHospital"`
	ShiftTiming     *ShiftTimingRequest `json:"shiftTiming"`
	LicenseNumber   string              `json:"licenseNumber"`
}

// profile returns the role profile, or the name of the first required
// field of that role that is missing.
func (r *SignupRequest) profile() (model.Profile, string) {
	switch model.UserRole(r.Role) {
	case model.RolePatient:
		switch {
		case r.Age == nil:
			return nil, "age"
		case strings.TrimSpace(r.Disease) == "":
			return nil, "disease"
		case strings.TrimSpace(r.HospitalAdmitted) == "":
			return nil, "hospitalAdmitted"
		case r.EmergencyContact == nil:
			return nil, "emergencyContact"
		}
		return model.PatientProfile{
			Age:              *r.Age,
			Disease:          r.Disease,
			HospitalAdmitted: r.HospitalAdmitted,
			EmergencyContact: model.EmergencyContact(*r.EmergencyContact),
		}, ""
	case model.RoleDoctor:
		switch {
		case strings.TrimSpace(r.Specialization) == "":
			return nil, "specialization"
		case strings.TrimSpace(r.WorkingHospital) == "":
			return nil, "workingHospital"
		case r.ShiftTiming == nil:
			return nil, "shiftTiming"
		case strings.TrimSpace(r.LicenseNumber) == "":
			return nil, "licenseNumber"
		}
		return model.DoctorProfile{
			Specialization:  r.Specialization,
			WorkingHospital: r.WorkingHospital,
			ShiftTiming:     model.ShiftTiming(*r.ShiftTiming),
			LicenseNumber:   r.LicenseNumber,
		}, ""
	}
	return nil, "role"
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"` // accepted in place of password
}

func (r *ResetPasswordRequest) newPassword() string {
	if r.Password != "" {
		return r.Password
	}
	return r.NewPassword
}

// Signup handles user registration
// POST /api/auth/signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg, fields := validationMessages(err)
		log.Warn("Invalid signup request", map[string]interface{}{
			"error": msg,
		})
		apperrors.RespondWithValidationError(c, msg, fields)
		return
	}
	if err := util.CheckPasswordLength(req.Password); err != nil {
		msg := passwordMessage(err)
		log.Warn("Invalid signup request", map[string]interface{}{
			"error": msg,
		})
		apperrors.RespondWithValidationError(c, msg, map[string]string{"password": msg})
		return
	}

	profile, missing := req.profile()
	if profile == nil {
		msg := requiredMessage(missing)
		log.Warn("Invalid signup request", map[string]interface{}{
			"error": msg,
		})
		apperrors.RespondWithValidationError(c, msg, map[string]string{missing: msg})
		return
	}

	user, token, err := ctrl.authService.Signup(c.Request.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Profile:  profile,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.BadRequest(c, apperrors.AuthEmailAlreadyExists, "User already exists with this email")
			return
		case errors.Is(err, service.ErrProfileRequired):
			msg := requiredMessage("role")
			apperrors.RespondWithValidationError(c, msg, map[string]string{"role": msg})
			return
		}
		log.Error("Signup failed", err, nil)
		apperrors.ParseAndRespond(c, err, "Error creating user")
		return
	}

	apperrors.Success(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
			"phone": user.Phone,
		},
	})
}

// Login handles user login
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg, fields := validationMessages(err)
		log.Warn("Invalid login request", map[string]interface{}{
			"error": msg,
		})
		apperrors.RespondWithValidationError(c, msg, fields)
		return
	}

	user, token, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.Unauthorized(c, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, nil)
		apperrors.ParseAndRespond(c, err, "Error logging in")
		return
	}

	apperrors.Success(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    loginProfile(user),
	})
}

// GetMe returns the caller's stored profile
// GET /api/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "", "")
		return
	}

	user, err := ctrl.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, err, "Error fetching user")
		return
	}

	apperrors.Success(c, http.StatusOK, gin.H{"user": fullProfile(user)})
}

// GetAllDoctors lists every doctor in the directory projection
// GET /api/auth/doctors
func (ctrl *AuthController) GetAllDoctors(c *gin.Context) {
	doctors, err := ctrl.authService.GetAllDoctors(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list doctors", err, nil)
		apperrors.ParseAndRespond(c, err, "Error fetching doctors")
		return
	}

	apperrors.Success(c, http.StatusOK, gin.H{"doctors": directory(doctors)})
}

// GetMyDoctors lists the doctors the calling patient has appointments with
// GET /api/auth/my-doctors
func (ctrl *AuthController) GetMyDoctors(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	doctors, err := ctrl.authService.GetMyDoctors(c.Request.Context(), userID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list patient doctors", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, err, "Error fetching your doctors")
		return
	}

	apperrors.Success(c, http.StatusOK, gin.H{"doctors": directory(doctors)})
}

// GetPatients lists the patients with appointments at the calling doctor
// GET /api/auth/patients
func (ctrl *AuthController) GetPatients(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	patients, err := ctrl.authService.GetPatients(c.Request.Context(), userID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list doctor patients", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, err, "Error fetching patients")
		return
	}

	out := make([]gin.H, 0, len(patients))
	for i := range patients {
		out = append(out, fullProfile(&patients[i]))
	}
	apperrors.Success(c, http.StatusOK, gin.H{"patients": out})
}

// ForgotPassword mails a one-time reset code
// POST /api/auth/forgotpassword
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Please provide an email")
		return
	}

	err := ctrl.passwordResetService.RequestReset(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		apperrors.Success(c, http.StatusOK, gin.H{"message": "Email sent"})
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "There is no user with that email address")
	case errors.Is(err, service.ErrResetEmailNotSent):
		apperrors.RespondWithDetail(c, http.StatusInternalServerError, apperrors.MailDeliveryFailed, "Email could not be sent", err)
	default:
		log.Error("Forgot password failed", err, nil)
		apperrors.ParseAndRespond(c, err, "Server Error")
	}
}

// ResetPassword exchanges a reset code for a new password and a token
// PUT /api/auth/resetpassword
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		msg, fields := validationMessages(err)
		log.Warn("Invalid reset password request", map[string]interface{}{
			"error": msg,
		})
		apperrors.RespondWithValidationError(c, msg, fields)
		return
	}
	password := req.newPassword()
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" || password == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Please provide email, code and new password")
		return
	}
	if err := util.CheckPasswordLength(password); err != nil {
		msg := passwordMessage(err)
		apperrors.RespondWithValidationError(c, msg, map[string]string{"password": msg})
		return
	}

	user, token, err := ctrl.passwordResetService.ResetPassword(c.Request.Context(), req.Email, strings.TrimSpace(req.Code), password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetCode) {
			apperrors.BadRequest(c, apperrors.AuthCodeInvalid, "Invalid code or email, or code expired")
			return
		}
		log.Error("Reset password failed", err, nil)
		apperrors.ParseAndRespond(c, err, "Server Error")
		return
	}

	apperrors.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// loginProfile carries only the fields of the user's own role.
func loginProfile(u *model.User) gin.H {
	out := gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
		"phone": u.Phone,
	}
	switch u.Role {
	case model.RolePatient:
		out["age"] = u.Age
		out["disease"] = u.Disease
		out["hospitalAdmitted"] = u.HospitalAdmitted
	case model.RoleDoctor:
		out["specialization"] = u.Specialization
		out["workingHospital"] = u.WorkingHospital
		out["shiftTiming"] = u.ShiftTiming
	}
	return out
}

// fullProfile is every stored field except credentials and reset state.
func fullProfile(u *model.User) gin.H {
	out := loginProfile(u)
	switch u.Role {
	case model.RolePatient:
		out["emergencyContact"] = u.EmergencyContact
	case model.RoleDoctor:
		out["licenseNumber"] = u.LicenseNumber
	}
	out["createdAt"] = u.CreatedAt
	return out
}

func directory(doctors []model.User) []gin.H {
	out := make([]gin.H, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, gin.H{
			"name":            d.Name,
			"specialization":  d.Specialization,
			"workingHospital": d.WorkingHospital,
			"phone":           d.Phone,
			"shiftTiming":     d.ShiftTiming,
		})
	}
	return out
}
