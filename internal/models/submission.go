// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactSubmission is a visitor-submitted contact form entry. Entries are
// never updated or deleted through the API.
type ContactSubmission struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Subject   *string   `json:"subject,omitempty" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ContactInput is the validated payload of the public contact form.
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// SubmissionFilter narrows a submission listing. Either bound may be nil.
type SubmissionFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// SubmissionPage is one page of submissions plus the filtered total.
type SubmissionPage struct {
	Items []ContactSubmission `json:"items"`
	Total int                 `json:"total"`
}

// StatPoint is the number of submissions received on one UTC day.
type StatPoint struct {
	Date  string `json:"date" db:"date"`
	Count int    `json:"count" db:"count"`
}

// SubmissionCounts summarises the submissions table.
type SubmissionCounts struct {
	Total     int `json:"total" db:"total"`
	ThisWeek  int `json:"thisWeek" db:"this_week"`
	ThisMonth int `json:"thisMonth" db:"this_month"`
}
