package validation

import (
	"strings"

	"github.com/grigta/numbering/services/numbering-service/internal/models"
)

type CreateAccountInput struct {
	Name          string                `json:"name"`
	Email         string                `json:"email"`
	AccountStatus *models.AccountStatus `json:"accountStatus,omitempty"`
}

type UpdateAccountInput struct {
	Name          *string               `json:"name,omitempty"`
	Email         *string               `json:"email,omitempty"`
	AccountStatus *models.AccountStatus `json:"accountStatus,omitempty"`
}

func ValidateCreateAccount(in CreateAccountInput) (CreateAccountInput, error) {
	var c collector

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if runeLen(in.Name) < MinNameLength {
		c.add("name", "Name is required and must be at least 5 characters long")
	}

	switch {
	case in.Email == "":
		c.add("email", "Email is required")
	case !IsEmail(in.Email):
		c.add("email", "Invalid email address")
	}

	if in.AccountStatus != nil && !in.AccountStatus.Valid() {
		c.add("accountStatus", "Account status must be one of active, suspended, inactive")
	}

	if err := c.err(); err != nil {
		return CreateAccountInput{}, err
	}
	return in, nil
}

func ValidateUpdateAccount(in UpdateAccountInput) (UpdateAccountInput, error) {
	var c collector

	if in.Name == nil && in.Email == nil && in.AccountStatus == nil {
		c.add("body", "At least one field must be provided for update")
		return UpdateAccountInput{}, c.err()
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if runeLen(name) < MinNameLength {
			c.add("name", "Name must be at least 5 characters long")
		}
		in.Name = &name
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if !IsEmail(email) {
			c.add("email", "Invalid email format")
		}
		in.Email = &email
	}

	if in.AccountStatus != nil && !in.AccountStatus.Valid() {
		c.add("accountStatus", "Account status must be one of active, suspended, inactive")
	}

	if err := c.err(); err != nil {
		return UpdateAccountInput{}, err
	}
	return in, nil
}

// Update converts a validated input into the store's partial update.
func (in UpdateAccountInput) Update() models.AccountUpdate {
	return models.AccountUpdate{
		Name:          in.Name,
		Email:         in.Email,
		AccountStatus: in.AccountStatus,
	}
}
