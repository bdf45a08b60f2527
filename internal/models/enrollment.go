package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Enrollment is a user's membership in a course
type Enrollment struct {
	UserID     UserID    `json:"user_id"`
	CourseID   CourseID  `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// EnrollRequest enrolls the caller in a course
type EnrollRequest struct {
	CourseID CourseID `json:"course_id"`
}

// EnrollResponse confirms an enrollment
type EnrollResponse struct {
	Message  string   `json:"message"`
	CourseID CourseID `json:"course_id"`
}

// AssignResult reports an admin bulk assignment
type AssignResult struct {
	Message  string `json:"message"`
	Assigned int    `json:"assigned"`
	Skipped  int    `json:"skipped"`
}

// AdminStats are the dashboard counters
type AdminStats struct {
	TotalUsers        int `json:"total_users"`
	TotalCourses      int `json:"total_courses"`
	TotalEnrollments  int `json:"total_enrollments"`
	TotalCertificates int `json:"total_certificates"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// AssignRequest assigns a course to several users. The body is either
// {"user_ids": [...]} or a bare array of user IDs.
type AssignRequest struct {
	UserIDs []UserID `json:"user_ids"`
}

// UnmarshalJSON accepts both body shapes. The object form still rejects unknown fields.
func (a *AssignRequest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &a.UserIDs)
	}

	type assignObject AssignRequest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode((*assignObject)(a))
}
