package handler

import (
	appperiod "github.com/northtrade/backend/internal/application/period"
)

// NormalizePeriodRequest carries a raw semester code for normalization
type NormalizePeriodRequest struct {
	Code string `form:"code" binding:"required"`
}

// PeriodFromDateRequest carries a date string for period resolution
type PeriodFromDateRequest struct {
	Date string `form:"date" binding:"required"`
}

// PeriodURI binds the period path parameter
type PeriodURI struct {
	Code string `uri:"code" binding:"required"`
}

// SubjectLockURI binds the subject lock path parameters
type SubjectLockURI struct {
	Kind      string `uri:"kind" binding:"required,oneof=customer supplier"`
	SubjectID int64  `uri:"subject_id" binding:"required,min=1"`
	Code      string `uri:"code" binding:"required"`
}

// BatchLockStatesRequest asks for lock states of many subjects in one period
type BatchLockStatesRequest struct {
	Kind       string  `json:"kind" binding:"required,oneof=customer supplier"`
	Period     string  `json:"period" binding:"required"`
	SubjectIDs []int64 `json:"subject_ids" binding:"required,min=1,dive,min=1"`
}

// ReplacePeriodListRequest replaces a configured period list wholesale
type ReplacePeriodListRequest struct {
	Periods []string `json:"periods" binding:"required"`
}

// NormalizedPeriodResponse reports the outcome of a normalization attempt
type NormalizedPeriodResponse struct {
	Input  string  `json:"input"`
	Period *string `json:"period"`
}

// CurrentPeriodResponse reports the current period and its predecessor
type CurrentPeriodResponse struct {
	Current  string `json:"current"`
	Previous string `json:"previous"`
}

// PeriodStatusResponse reports a period's activation and closure flags
type PeriodStatusResponse struct {
	Period string `json:"period"`
	Active bool   `json:"active"`
	Closed bool   `json:"closed"`
}

// PeriodListResponse wraps a list of canonical period codes
type PeriodListResponse struct {
	Periods []string `json:"periods"`
}

// BatchLockStatesResponse reports lock states keyed by subject ID
type BatchLockStatesResponse struct {
	Kind   string                `json:"kind"`
	Period string                `json:"period"`
	States []appperiod.LockState `json:"states"`
}
