package models

import (
	"strings"
	"time"
)

// Certificate confirms that a user completed a course. It is never modified after issue.
type Certificate struct {
	ID                CertificateID `json:"id"`
	UserID            UserID        `json:"user_id"`
	CourseID          CourseID      `json:"course_id"`
	UserName          string        `json:"user_name"`
	CourseTitle       string        `json:"course_title"`
	CertificateNumber string        `json:"certificate_number"`
	IssuedAt          time.Time     `json:"issued_at"`
}

// PendingNotification is an issued certificate whose email was never queued
type PendingNotification struct {
	Certificate Certificate
	Email       string
}

// CertificateNumber derives the printed certificate number from its ID
func CertificateNumber(id CertificateID) string {
	s := string(id)
	if len(s) > 8 {
		s = s[:8]
	}
	return "FGGC-" + strings.ToUpper(s)
}

// CompletionCandidate is a (user, course) pair whose lessons are all completed
type CompletionCandidate struct {
	UserID   UserID
	CourseID CourseID
}

// ReconcileReport summarises a certificate reconciliation sweep
type ReconcileReport struct {
	Checked int `json:"checked"`
	Issued  int `json:"issued"`
	Resent  int `json:"resent"`
	Failed  int `json:"failed"`
}
