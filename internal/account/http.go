// Copyright (c) 2026 Sowon. All rights reserved.
// Author: sowon.dev.kr@gmail.com

package account

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sowondev/sowon/internal/platform/apperr"
	"github.com/sowondev/sowon/internal/platform/constants"
	"github.com/sowondev/sowon/internal/platform/middleware"
	requestutil "github.com/sowondev/sowon/internal/platform/request"
	"github.com/sowondev/sowon/internal/platform/respond"
	"github.com/sowondev/sowon/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the account lifecycle HTTP endpoints.
//
// # Scope
//
// This handler manages the entry points of the member lifecycle (registration,
// login, recovery) plus the authenticated self-service surface under /me.
// It is strictly a transport layer: all business rules live in [Service].
type Handler struct {
	accountService *Service
	dailyQuota     int
}

// NewHandler constructs a new [Handler] with its service dependency.
// dailyQuota caps consultations per account per calendar day.
func NewHandler(service *Service, dailyQuota int) *Handler {
	return &Handler{accountService: service, dailyQuota: dailyQuota}
}

// AuthRoutes returns a [chi.Router] with the public authentication routes.
//
// # Endpoints
//   - POST /register        : Creates a new account.
//   - POST /login           : Authenticates and returns a JWT.
//   - POST /logout          : Clears the current session.
//   - POST /forgot-password : Issues a temporary secret.
func (handler *Handler) AuthRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Post("/forgot-password", handler.forgotPassword)

	return router
}

// MeRoutes returns a [chi.Router] with the authenticated self-service routes.
//
// # Endpoints
//   - GET   /me                     : Current account profile.
//   - PATCH /me                     : Partial profile update.
//   - PUT   /me/profile-data        : Stores the computed profile blob.
//   - POST  /me/purchases           : Records a purchase.
//   - GET   /me/purchases           : Purchase history (most recent first).
//   - POST  /me/consultations       : Records a consultation (quota-gated).
//   - GET   /me/consultations       : Consultation history.
//   - GET   /me/consultations/today : Today's consultation count.
func (handler *Handler) MeRoutes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Patch("/me", handler.update)
		r.Put("/me/profile-data", handler.saveProfileData)
		r.Post("/me/purchases", handler.appendPurchase)
		r.Get("/me/purchases", handler.listPurchases)
		r.Post("/me/consultations", handler.appendConsultation)
		r.Get("/me/consultations", handler.listConsultations)
		r.Get("/me/consultations/today", handler.consultationsToday)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	DisplayName  string `json:"display_name"`
	Phone        string `json:"phone"`
	BirthDate    string `json:"birth_date"`
	BirthTime    string `json:"birth_time"`
	Gender       string `json:"gender"`
	CalendarType string `json:"calendar_type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type updateRequest struct {
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	DisplayName  *string `json:"display_name"`
	Phone        *string `json:"phone"`
	BirthDate    *string `json:"birth_date"`
	BirthTime    *string `json:"birth_time"`
	Gender       *string `json:"gender"`
	CalendarType *string `json:"calendar_type"`
}

type saveProfileDataRequest struct {
	ProfileData json.RawMessage `json:"profile_data"`
}

type purchaseRequest struct {
	Type    string         `json:"type"`
	Details map[string]any `json:"details"`
}

type consultationRequest struct {
	Details map[string]any `json:"details"`
}

/*
Register handles the creation of a new member account.

POST /api/v1/auth/register

Description: Decodes the payload and delegates to the service, which runs the
full ordered validation (required fields, email shape, secret length, phone
shape, uniqueness).

Request:
  - Body: registerRequest (Email, Password, DisplayName, optional birth fields)

Response:
  - 201: Account: Created profile (credential verifier redacted)
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: EmailConflict: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	created, err := handler.accountService.Register(request.Context(), RegisterInput{
		Email:        input.Email,
		Secret:       input.Password,
		DisplayName:  input.DisplayName,
		Phone:        input.Phone,
		BirthDate:    input.BirthDate,
		BirthTime:    input.BirthTime,
		Gender:       input.Gender,
		CalendarType: CalendarType(input.CalendarType),
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
Login authenticates a member and establishes the current session.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token and redacted account
  - 401: InvalidCredentials: Wrong secret
  - 404: NotFound: No account with this email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	session, err := handler.accountService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"access_token": session.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   AccessTokenTTL / time.Second,
		"account":      session.Account,
	})
}

/*
Logout clears the current session.

POST /api/v1/auth/logout

Description: Clearing an absent session still succeeds, so logout is safe
to call repeatedly.

Response:
  - 204: No Content: Session cleared
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.Logout(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Rotates the account's credential to a temporary secret and hands
it to the delivery collaborator.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Temporary secret issued
  - 404: NotFound: No account with this email
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).EmailShape(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.accountService.ResetPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "A temporary password has been sent to your email.",
	})
}

/*
Me returns the authenticated member's profile.

GET /api/v1/account/me

Response:
  - 200: Account: Redacted profile
  - 401: Unauthorized: Missing or invalid token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.accountService.GetAccount(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

/*
Update applies a partial profile update to the authenticated member.

PATCH /api/v1/account/me

Description: Only fields present in the payload are changed. A new password
is re-encoded; a new email is checked for uniqueness.

Request:
  - Body: updateRequest (any subset of mutable fields)

Response:
  - 200: Account: Redacted updated profile
  - 400: ErrInvalidJSON: Validation failure
  - 409: EmailConflict: Email taken by another account
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	patch := UpdatePatch{
		Email:       input.Email,
		Secret:      input.Password,
		DisplayName: input.DisplayName,
		Phone:       input.Phone,
		BirthDate:   input.BirthDate,
		BirthTime:   input.BirthTime,
		Gender:      input.Gender,
	}
	if input.CalendarType != nil {
		calendarType := CalendarType(*input.CalendarType)
		patch.CalendarType = &calendarType
	}

	updated, err := handler.accountService.Update(request.Context(), accountID, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
SaveProfileData stores the externally computed profile blob.

PUT /api/v1/account/me/profile-data

Request:
  - Body: saveProfileDataRequest (ProfileData, opaque JSON)

Response:
  - 200: Account: Redacted profile with computation timestamp set
  - 400: ErrInvalidJSON: Missing blob
*/
func (handler *Handler) saveProfileData(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input saveProfileDataRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Custom("profile_data", len(input.ProfileData) == 0, "This field is required")
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.accountService.SaveProfileData(request.Context(), accountID, input.ProfileData)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
AppendPurchase records a purchase for the authenticated member.

POST /api/v1/account/me/purchases

Description: The server assigns the record ID and timestamp. Premium product
types extend the membership in the same operation.

Request:
  - Body: purchaseRequest (Type, Details)

Response:
  - 201: PurchaseRecord: The appended record
  - 400: ErrInvalidJSON: Missing purchase type
*/
func (handler *Handler) appendPurchase(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input purchaseRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Type == "" {
		respond.Error(writer, request, validate.RequiredError("type", "This field is required"))
		return
	}

	record, err := handler.accountService.AppendPurchase(request.Context(), accountID, PurchaseInput{
		Type:    input.Type,
		Details: input.Details,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
ListPurchases returns the member's purchase history, most recent first.

GET /api/v1/account/me/purchases

Response:
  - 200: []PurchaseRecord
*/
func (handler *Handler) listPurchases(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.accountService.GetAccount(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found.PurchaseHistory)
}

/*
AppendConsultation records a consultation for the authenticated member.

POST /api/v1/account/me/consultations

Description: Enforces the per-day quota before appending. The count resets
at midnight in the service's reference time zone.

Request:
  - Body: consultationRequest (Details)

Response:
  - 201: ConsultationRecord: The appended record
  - 429: RateLimited: Daily quota reached
*/
func (handler *Handler) appendConsultation(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input consultationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Quota gate: count is computed against the reference-day boundary.
	if handler.dailyQuota > 0 {
		count, err := handler.accountService.ConsultationsToday(request.Context(), accountID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		if count >= handler.dailyQuota {
			respond.Error(writer, request, apperr.RateLimited("Daily consultation limit reached"))
			return
		}
	}

	record, err := handler.accountService.AppendConsultation(request.Context(), accountID, ConsultationInput{
		Details: input.Details,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
ListConsultations returns the member's consultation history, most recent first.

GET /api/v1/account/me/consultations

Response:
  - 200: []ConsultationRecord
*/
func (handler *Handler) listConsultations(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.accountService.GetAccount(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found.ConsultationHistory)
}

/*
ConsultationsToday returns today's consultation count and the quota.

GET /api/v1/account/me/consultations/today

Response:
  - 200: {count, quota}
*/
func (handler *Handler) consultationsToday(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.accountService.ConsultationsToday(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int{
		"count": count,
		"quota": handler.dailyQuota,
	})
}
