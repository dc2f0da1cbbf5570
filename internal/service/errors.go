package service

import apperrors "github.com/davidblanco1407/pma-frequency-backend/pkg/errors"

// ── business errors ──

var (
	ErrForbidden             = apperrors.Forbidden(40300, "you do not have permission to perform this action")
	ErrMemberDeleteForbidden = apperrors.Forbidden(40313, "members cannot be deleted; deactivate them instead")

	ErrMemberNotFound        = apperrors.NotFound(40401, "member not found")
	ErrSanctionNotFound      = apperrors.NotFound(40402, "sanction not found")
	ErrCorrectionNotFound    = apperrors.NotFound(40403, "correction request not found")
	ErrMemberProfileNotFound = apperrors.NotFound(40404, "no member profile is linked to this account")
	ErrAccountNotFound       = apperrors.NotFound(40405, "account not found")

	ErrEmailTaken         = apperrors.Conflict(40901, "email already in use").WithField("email", "already registered")
	ErrCorrectionResolved = apperrors.Conflict(40902, "the request is already resolved; only the response can change")
	ErrUsernameTaken      = apperrors.Conflict(40903, "username already in use").WithField("username", "already taken")

	ErrInvalidPhone      = apperrors.Validation(40011, "invalid phone number").WithField("phone", "enter a valid number, with country code if outside Colombia")
	ErrWeakPassword      = apperrors.Validation(40012, "password does not meet the policy")
	ErrPasswordMismatch  = apperrors.Validation(40013, "passwords do not match").WithField("confirm_password", "must match the new password")
	ErrInvalidResetToken = apperrors.Validation(40014, "the reset link is invalid or has expired").WithField("token", "invalid or expired")
	ErrWrongPassword     = apperrors.Validation(40016, "current password is incorrect").WithField("current_password", "incorrect")
	ErrBlankText         = apperrors.Validation(40017, "text must not be empty")
	ErrUnknownBulkAction = apperrors.Validation(40018, "unknown bulk action")
	ErrInvalidStatus     = apperrors.Validation(40019, "invalid status").WithField("status", "must be pending, approved or rejected")
	ErrInvalidMember     = apperrors.Validation(40020, "invalid member data")

	ErrInvalidCredentials = apperrors.Unauthorized(40101, "invalid username or password")
	ErrTokenInvalid       = apperrors.Unauthorized(40102, "invalid or expired token")
	ErrAccountInactive    = apperrors.Unauthorized(40103, "this account is inactive")
	ErrNoMemberProfile    = apperrors.Unauthorized(40104, "no member profile is linked to this account")

	ErrWelcomeNotSent = apperrors.Unavailable(50301, "the welcome email could not be sent; the member was not created")
)

// weakPassword carries the failed rule on field.
func weakPassword(field string, err error) error {
	return ErrWeakPassword.WithField(field, err.Error())
}

func blankText(field string) error {
	return ErrBlankText.WithField(field, "must not be empty")
}
