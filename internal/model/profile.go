// Package model defines the shared types of the estimation workflow.
package model

// ContactProfile holds the customer's contact details.
type ContactProfile struct {
	Name    string `json:"name" yaml:"name"`
	Phone   string `json:"phone" yaml:"phone"`
	Email   string `json:"email" yaml:"email"`
	Address string `json:"address" yaml:"address"`
}
