package models

import "time"

// User represents a patient account.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	PhoneNumber  string    `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	Gender       string    `bson:"gender,omitempty" json:"gender,omitempty"`
	DateOfBirth  string    `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Address      Address   `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
