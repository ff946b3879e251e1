package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateField is one form field within a section.
type TemplateField struct {
	Key      string `bson:"key" json:"key"`
	Label    string `bson:"label" json:"label"`
	Type     string `bson:"type" json:"type"`
	Required bool   `bson:"required" json:"required"`
}

// TemplateSection groups fields on the intake form.
type TemplateSection struct {
	Name   string          `bson:"name" json:"name"`
	Fields []TemplateField `bson:"fields" json:"fields"`
}

// Template defines a named intake form and the field keys that must be
// populated before an assigned user's ticket may reach SUBMITTED.
type Template struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                   string             `bson:"name" json:"name"`
	Description            string             `bson:"description,omitempty" json:"description,omitempty"`
	Sections               []TemplateSection  `bson:"sections" json:"sections"`
	SubmissionRequirements []string           `bson:"submissionRequirements" json:"submissionRequirements"`
	AssignedUsers          []string           `bson:"assignedUsers" json:"assignedUsers"`
	Active                 bool               `bson:"active" json:"active"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}
