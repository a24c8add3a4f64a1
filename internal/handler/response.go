package handler

import "github.com/actuallystonmai/internship-recommender/internal/domain"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Msg string `json:"msg"`
}

type ProfileUpdateResponse struct {
	Msg     string          `json:"msg"`
	Profile *domain.Profile `json:"profile"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
