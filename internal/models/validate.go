package models

import (
	"fmt"
	"strings"
)

// ValidationError describes malformed job or candidate input.
type ValidationError struct {
	Entity string
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	id := e.ID
	if id == "" {
		id = "<empty>"
	}
	return fmt.Sprintf("invalid %s %s: %s %s", e.Entity, id, e.Field, e.Reason)
}

// Validate checks the fields the scorers rely on.
func (j Job) Validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return &ValidationError{Entity: "job", Field: "id", Reason: "is required"}
	}
	for i, req := range j.Requirements {
		if strings.TrimSpace(req) == "" {
			return &ValidationError{Entity: "job", ID: j.ID, Field: fmt.Sprintf("requirements[%d]", i), Reason: "must not be blank"}
		}
	}
	return nil
}

func (c CandidateProfile) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return &ValidationError{Entity: "candidate", Field: "id", Reason: "is required"}
	}
	for i, e := range c.EmploymentHistory {
		if strings.TrimSpace(e.Company) == "" && strings.TrimSpace(e.Position) == "" {
			return &ValidationError{Entity: "candidate", ID: c.ID, Field: fmt.Sprintf("employment_history[%d]", i), Reason: "needs a company or a position"}
		}
	}
	for i, cert := range c.Certifications {
		if strings.TrimSpace(cert.Name) == "" {
			return &ValidationError{Entity: "candidate", ID: c.ID, Field: fmt.Sprintf("certifications[%d].name", i), Reason: "is required"}
		}
	}
	return nil
}
