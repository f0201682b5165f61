package models

import "time"

// Complaint is a submission from the public form. ImagePath is the storage
// path of the attached image, empty when none was uploaded.
type Complaint struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Location  string    `db:"location" json:"location"`
	Message   string    `db:"message" json:"message"`
	ImagePath string    `db:"image_path" json:"image_path,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
