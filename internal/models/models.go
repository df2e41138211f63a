package models

import "time"

// Role is the coarse-grained position of an account. Fine-grained permissions
// travel separately as authority strings; a role's canonical authority form is
// "ROLE_<name>".
type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleProfessor Role = "PROFESSOR"
	RoleAdmin     Role = "ADMIN"
)

const roleAuthorityPrefix = "ROLE_"

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleAdmin:
		return true
	}
	return false
}

// Authority renders the role as an authority string for token claims.
func (r Role) Authority() string {
	return roleAuthorityPrefix + string(r)
}

// RoleFromAuthority reverses Authority. The bool is false for authority
// strings that are not role-shaped.
func RoleFromAuthority(authority string) (Role, bool) {
	if len(authority) <= len(roleAuthorityPrefix) || authority[:len(roleAuthorityPrefix)] != roleAuthorityPrefix {
		return "", false
	}
	r := Role(authority[len(roleAuthorityPrefix):])
	return r, r.Valid()
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         Role   `gorm:"not null"                 json:"role"`
	Active       bool   `gorm:"default:true"             json:"active"`
}

type Student struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint   `gorm:"index"                    json:"user_id"`
	FirstName      string `gorm:"not null"                 json:"first_name"`
	LastName       string `gorm:"not null"                 json:"last_name"`
	Email          string `gorm:"unique;not null"          json:"email"`
	EnrollmentYear int    `json:"enrollment_year"`
}

type Professor struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint   `gorm:"index"                    json:"user_id"`
	FirstName  string `gorm:"not null"                 json:"first_name"`
	LastName   string `gorm:"not null"                 json:"last_name"`
	Email      string `gorm:"unique;not null"          json:"email"`
	Department string `json:"department"`
}

type Course struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string `gorm:"unique;not null"          json:"code"`
	Title       string `gorm:"not null"                 json:"title"`
	Description string `json:"description"`
	Credits     uint   `json:"credits"`
	ProfessorID uint   `gorm:"index"                    json:"professor_id"`
}

type Enrollment struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"                      json:"id"`
	StudentID  uint      `gorm:"index;not null;uniqueIndex:idx_student_course" json:"student_id"`
	CourseID   uint      `gorm:"index;not null;uniqueIndex:idx_student_course" json:"course_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime"                                json:"enrolled_at"`
}

type Grade struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EnrollmentID uint      `gorm:"index;not null"           json:"enrollment_id"`
	Value        float64   `gorm:"not null"                 json:"value"`
	Comment      string    `json:"comment"`
	GradedAt     time.Time `gorm:"autoCreateTime"           json:"graded_at"`
}

type Attendance struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EnrollmentID uint      `gorm:"index;not null"           json:"enrollment_id"`
	Date         time.Time `gorm:"not null"                 json:"date"`
	Present      bool      `json:"present"`
}

type Announcement struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  *uint     `gorm:"index"                    json:"course_id,omitempty"`
	AuthorID  uint      `gorm:"index;not null"           json:"author_id"`
	Title     string    `gorm:"not null"                 json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime"           json:"created_at"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	Title     string    `gorm:"not null"                 json:"title"`
	Body      string    `json:"body"`
	Read      bool      `gorm:"default:false"            json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime"           json:"created_at"`
}
