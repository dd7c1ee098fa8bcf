package model

import (
	"time"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        string    `db:"phone" json:"phone"`
	DOB          string    `db:"dob" json:"dob"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
