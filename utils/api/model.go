package api

import "github.com/golang-jwt/jwt/v5"

type GenericResponse[T any] struct {
	Status      int    `json:"status"`
	Message     string `json:"message"`
	UpdatedData *T     `json:"updatedData,omitempty"`
}

type SessionClaims struct {
	UserID       string `json:"userId"`
	SessionToken string `json:"sessionToken"`
	jwt.RegisteredClaims
}
