package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type ShowInput struct {
	Date  string   `json:"date" binding:"required,showdate"`
	Times []string `json:"times" binding:"required,min=1"`
}

type AddShowRequestBody struct {
	MovieID    string      `json:"movieId" binding:"required"`
	ShowsInput []ShowInput `json:"showsInput" binding:"required,min=1"`
	ShowPrice  float64     `json:"showPrice" binding:"required,gt=0"`
	Hall       string      `json:"hall" binding:"required"`
}

type CreateBookingRequestBody struct {
	ShowID        uint     `json:"showId" binding:"required"`
	SelectedSeats []string `json:"selectedSeats" binding:"required,min=1,max=5"`
}

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginUserRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateHallRequestBody struct {
	Name string `json:"name" binding:"required"`
}

type VerifyTicketRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type ShowIDURIParams struct {
	ShowID uint `uri:"showId" binding:"required"`
}

type MovieIDURIParams struct {
	MovieID string `uri:"movieId" binding:"required"`
}

type Role string

const (
	ROLE_USER  Role = "user"
	ROLE_ADMIN Role = "admin"
)

type JobStatus string

const (
	JOB_PENDING JobStatus = "pending"
	JOB_DONE    JobStatus = "done"
	JOB_EXPIRED JobStatus = "expired"
)

// ShowTimeEntry is one screening slot in the per-date grouping returned by the
// show listing endpoints.
type ShowTimeEntry struct {
	Time   time.Time `json:"time"`
	ShowID uint      `json:"showId"`
	Hall   string    `json:"hall"`
	Price  float64   `json:"price"`
}

type GenerateMode string

const (
	GENERATE_WEEK     GenerateMode = "week"
	GENERATE_TOMORROW GenerateMode = "tomorrow"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}
