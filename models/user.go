package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserType string

const (
	UserTypeCliente UserType = "cliente"
	UserTypeAdmin   UserType = "admin"
)

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	Phone     string             `json:"phone" bson:"phone"`
	CPF       string             `json:"cpf" bson:"cpf"`
	CEP       string             `json:"cep" bson:"cep"`
	Type      UserType           `json:"type" bson:"type"`
	IsActive  bool               `json:"is_active" bson:"is_active"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}

type RegisterInput struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	Phone    string   `json:"phone"`
	CPF      string   `json:"cpf"`
	CEP      string   `json:"cep"`
	Type     UserType `json:"type"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	CPF   *string `json:"cpf"`
	CEP   *string `json:"cep"`
}
