package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/millennialbroker/broker-backend/api/middleware"
	"github.com/millennialbroker/broker-backend/api/responses"
	"github.com/millennialbroker/broker-backend/api/validators"
	"github.com/millennialbroker/broker-backend/internal/movements"
	"github.com/millennialbroker/broker-backend/pkg/enums"
	pkgerrors "github.com/millennialbroker/broker-backend/pkg/errors"
	"github.com/millennialbroker/broker-backend/pkg/logger"
	"github.com/millennialbroker/broker-backend/pkg/pagination"
)

type movementCreateRequest struct {
	Code           string           `json:"code,omitempty"`
	Type           string           `json:"type" validate:"required"`
	PolicyID       uuid.UUID        `json:"policy_id" validate:"required"`
	RequestedDate  time.Time        `json:"requested_date" validate:"required"`
	NewPremium     *decimal.Decimal `json:"new_premium,omitempty"`
	NewInsuredSum  *decimal.Decimal `json:"new_insured_sum,omitempty"`
	NewBeneficiary *string          `json:"new_beneficiary,omitempty"`
	NewAddress     *string          `json:"new_address,omitempty"`
	IssuanceFee    decimal.Decimal  `json:"issuance_fee"`
	OtherCharges   decimal.Decimal  `json:"other_charges"`
	Observations   string           `json:"observations,omitempty"`
}

type movementApplyRequest struct {
	ConfirmVoid  bool `json:"confirm_void"`
	EmitDocument bool `json:"emit_document"`
}

func actorFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return id, nil
}

// MovementCreate registers a requested movement against a policy.
func MovementCreate(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movements service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body movementCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), movements.CreateInput{
			Code:           body.Code,
			Type:           enums.MovementType(body.Type),
			PolicyID:       body.PolicyID,
			RequestedDate:  body.RequestedDate,
			NewPremium:     body.NewPremium,
			NewInsuredSum:  body.NewInsuredSum,
			NewBeneficiary: body.NewBeneficiary,
			NewAddress:     body.NewAddress,
			IssuanceFee:    body.IssuanceFee,
			OtherCharges:   body.OtherCharges,
			Observations:   body.Observations,
			ActorUserID:    actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// MovementGet fetches a movement by id.
func MovementGet(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movements service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "movementId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement id"))
			return
		}

		movement, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, movement)
	}
}

// MovementList returns a cursor page of movements.
func MovementList(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movements service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var filters movements.Filters
		if raw := strings.TrimSpace(r.URL.Query().Get("policy_id")); raw != "" {
			policyID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid policy id filter"))
				return
			}
			filters.PolicyID = &policyID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.MovementStatus(raw)
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			movementType := enums.MovementType(raw)
			filters.Type = &movementType
		}

		page, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// MovementApprove moves a movement from proceso to aprobado.
func MovementApprove(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movements service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "movementId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement id"))
			return
		}

		approved, err := svc.Approve(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, approved)
	}
}

// MovementDelete removes a not-yet-applied movement.
func MovementDelete(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movements service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "movementId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MovementApply executes an approved movement against its policy.
func MovementApply(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movements service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "movementId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement id"))
			return
		}

		var body movementApplyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Apply(r.Context(), movements.ApplyInput{
			MovementID:   id,
			ConfirmVoid:  body.ConfirmVoid,
			EmitDocument: body.EmitDocument,
			ActorUserID:  actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// DocumentList returns a cursor page of financial documents.
func DocumentList(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "movements service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var filters movements.DocumentFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("policy_id")); raw != "" {
			policyID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid policy id filter"))
				return
			}
			filters.PolicyID = &policyID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("movement_id")); raw != "" {
			movementID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid movement id filter"))
				return
			}
			filters.MovementID = &movementID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			documentType := enums.FinancialDocumentType(raw)
			filters.Type = &documentType
		}

		page, err := svc.ListDocuments(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
