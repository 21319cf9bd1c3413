package entities

import (
	"time"

	"matchbox.io/application/utils"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// This represents the photo state of a user of the mini app.
// The ID is the external (Telegram) user id.
type User struct {
	ID        string  `bson:"_id" json:"userId" gorm:"primaryKey;column:id"`
	Gender    *string `bson:"gender" json:"gender" gorm:"column:gender"`
	Photo1    string  `bson:"photo1" json:"photo1" gorm:"column:photo1"`
	Photo2    string  `bson:"photo2" json:"photo2" gorm:"column:photo2"`
	Photo3    string  `bson:"photo3" json:"photo3" gorm:"column:photo3"`
	NeedPhoto bool    `bson:"needPhoto" json:"needPhoto" gorm:"column:need_photo;default:true"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (model User) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		if model.ID == "" {
			model.ID = utils.GenerateUULDString()
		}
	}
	model.UpdatedAt = now
	return &model
}

func (model *User) Slots() [3]string {
	return [3]string{model.Photo1, model.Photo2, model.Photo3}
}

func (model *User) SetSlots(slots [3]string) {
	model.Photo1, model.Photo2, model.Photo3 = slots[0], slots[1], slots[2]
}

func (model *User) OccupiedSlots() int {
	count := 0
	for _, slot := range model.Slots() {
		if slot != "" {
			count++
		}
	}
	return count
}

// DeclaredGender returns the onboarding gender or an empty string.
func (model *User) DeclaredGender() string {
	if model.Gender == nil {
		return ""
	}
	return *model.Gender
}

// PhotoUpdate is written in a single statement by the repositories.
type PhotoUpdate struct {
	Slots     [3]string
	NeedPhoto *bool
}
