package entity

import (
	"time"
)

// Role distinguishes what a user is allowed to report. It is an explicit
// tag rather than something derived from which optional fields happen to
// be filled in.
type Role string

const (
	// RoleFinder is the minimal identity created when someone reports a
	// found object: email and name only.
	RoleFinder Role = "finder"
	// RoleSeeker is a fully registered user with phone and ID number on
	// file, eligible to report lost objects.
	RoleSeeker Role = "seeker"
)

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in Password.
//
// Invariant: Role == RoleSeeker implies PhoneNumber and IDNumber are both
// set; use PromoteToSeeker to cross that line.
type User struct {
	ID          string
	Email       string
	Password    string
	FullName    string
	Role        Role
	PhoneNumber string
	IDNumber    string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewFinder builds the minimal identity used when reporting found objects.
func NewFinder(email, fullName string) *User {
	return &User{
		Email:    email,
		FullName: fullName,
		Role:     RoleFinder,
	}
}

// NewSeeker builds a fully registered user. Incomplete contact data is
// rejected at the service boundary via PromoteToSeeker.
func NewSeeker(email, fullName, phoneNumber, idNumber string) *User {
	return &User{
		Email:       email,
		FullName:    fullName,
		Role:        RoleSeeker,
		PhoneNumber: phoneNumber,
		IDNumber:    idNumber,
	}
}

// PromoteToSeeker upgrades a finder with the contact data required to
// report lost objects. It refuses incomplete data so the Role invariant
// cannot be broken.
func (u *User) PromoteToSeeker(phoneNumber, idNumber string) bool {
	if phoneNumber == "" || idNumber == "" {
		return false
	}
	u.Role = RoleSeeker
	u.PhoneNumber = phoneNumber
	u.IDNumber = idNumber
	return true
}

// IsSeeker reports whether the user may file lost-item reports.
func (u *User) IsSeeker() bool { return u.Role == RoleSeeker }

// IsFinder reports whether the user only carries the minimal identity.
func (u *User) IsFinder() bool { return u.Role == RoleFinder }
