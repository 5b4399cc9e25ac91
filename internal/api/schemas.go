package api

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "loandesk/internal/common/errors"
	"loandesk/internal/common/validation"
)

const maxBodyBytes = 1 << 20

var (
	loginSchema = validation.MustCompile("login", `{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string", "minLength": 3, "maxLength": 255},
			"password": {"type": "string", "minLength": 1, "maxLength": 128}
		}
	}`)

	leadSchema = validation.MustCompile("lead", `{
		"type": "object",
		"required": ["clientName", "contactNumber", "loanType"],
		"properties": {
			"leadName": {"type": "string", "maxLength": 200},
			"clientName": {"type": "string", "minLength": 1, "maxLength": 200},
			"contactNumber": {"type": "string", "minLength": 1, "maxLength": 50},
			"email": {"type": "string", "maxLength": 255},
			"address": {"type": "string", "maxLength": 500},
			"loanType": {"type": "string", "minLength": 1, "maxLength": 100},
			"leadType": {"type": "string", "maxLength": 100},
			"leadSource": {"type": "string", "maxLength": 100},
			"branchId": {"type": "string"},
			"loanAmount": {"type": ["number", "null"], "minimum": 0},
			"processingCost": {"type": ["number", "null"], "minimum": 0},
			"creditScore": {"type": ["integer", "null"]},
			"additionalInfo": {"type": "string"},
			"notes": {"type": "string"}
		}
	}`)

	statusSchema = validation.MustCompile("lead-status", `{
		"type": "object",
		"required": ["status"],
		"properties": {
			"status": {"type": "string", "enum": ["login", "pending", "sanctioned", "rejected"]}
		}
	}`)

	assignSchema = validation.MustCompile("lead-assignment", `{
		"type": "object",
		"minProperties": 1,
		"properties": {
			"assignedStaffId": {"type": "string", "minLength": 1},
			"bankId": {"type": "string", "minLength": 1}
		}
	}`)

	staffSchema = validation.MustCompile("staff", `{
		"type": "object",
		"required": ["name", "email", "role"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 200},
			"email": {"type": "string", "minLength": 3, "maxLength": 255},
			"phone": {"type": "string", "maxLength": 50},
			"role": {"type": "string", "enum": ["owner", "branch_head", "manager", "admin", "staff"]},
			"branchId": {"type": "string"},
			"password": {"type": "string", "maxLength": 128},
			"active": {"type": "boolean"}
		}
	}`)

	branchSchema = validation.MustCompile("branch", `{
		"type": "object",
		"required": ["name", "code"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 200},
			"code": {"type": "string", "minLength": 1, "maxLength": 20},
			"address": {"type": "string"},
			"phone": {"type": "string"}
		}
	}`)

	bankSchema = validation.MustCompile("bank", `{
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 200},
			"contactPerson": {"type": "string"},
			"contactNumber": {"type": "string"},
			"email": {"type": "string"}
		}
	}`)
)

// decodeBody validates the request body against schema and decodes it into dst.
func decodeBody(r *http.Request, schema *validation.Schema, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewInvalidPayloadError(err.Error())
	}
	if len(body) == 0 {
		return apperrors.NewInvalidPayloadError("request body is required")
	}
	if !json.Valid(body) {
		return apperrors.NewInvalidPayloadError("request body is not valid JSON")
	}
	if result := schema.ValidateJSON(body); !result.Valid {
		return apperrors.NewValidationError(result.Error()).WithMetadata("schema", schema.Name())
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewInvalidPayloadError(err.Error())
	}
	return nil
}
