package models

import (
	"time"

	"github.com/google/uuid"
)

// Account roles accepted by the login endpoints.
const (
	RoleStudent = "student"
	RoleWriter  = "writer"
)

// StudentCodePrefix is the fixed prefix of public-facing student codes.
// A full code is the prefix followed by six random digits, e.g. "AS493012".
const StudentCodePrefix = "AS"

// Account is a student account. Writers live in their own table because
// they carry an approval gate and performance counters; see Writer.
type Account struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	StudentCode  string    `json:"student_code"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
