package model

import "time"

// Intake is a grape intake (crush) event. It is the aggregate root for
// four dependent collections which are created together with the root
// in a single transaction and cascade-deleted with it. A reader never
// observes an intake with only part of its intended children.
type Intake struct {
	ID          uint64    `json:"id"`
	BlockID     *uint64   `json:"block_id"`
	CreatedByID uint64    `json:"created_by_id"`
	WeightKG    *float64  `json:"weight_kg"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	Components []IntakeComponent `json:"components"`
	Additions  []Addition        `json:"additions"`
	Fruits     []Fruit           `json:"fruits"`
	LabResults []LabResult       `json:"lab_results"`
}

// IntakeComponent is a sub-part of an intake (e.g. upper / middle /
// bottom fractions of a press load).
type IntakeComponent struct {
	ID       uint64   `json:"id"`
	IntakeID uint64   `json:"intake_id"`
	Name     string   `json:"name"`
	WeightKG *float64 `json:"weight_kg"`
}

// Addition is a material added at intake time (SO2, nutrients, enzymes).
type Addition struct {
	ID       uint64   `json:"id"`
	IntakeID uint64   `json:"intake_id"`
	Name     string   `json:"name"`
	Amount   *float64 `json:"amount"`
	Unit     *string  `json:"unit"`
}

// Fruit is a granular fruit line within an intake.
type Fruit struct {
	ID            uint64   `json:"id"`
	IntakeID      uint64   `json:"intake_id"`
	ComponentName string   `json:"component_name"`
	VolumeLitres  *float64 `json:"volume_litres"`
}

// LabResult holds juice chemistry measured at intake.
type LabResult struct {
	ID        uint64   `json:"id"`
	IntakeID  uint64   `json:"intake_id"`
	Brix      *float64 `json:"brix"`
	PH        *float64 `json:"ph"`
	TA        *float64 `json:"ta"`
	VA        *float64 `json:"va"`
	RS        *float64 `json:"rs"`
	Alc       *float64 `json:"alc"`
	MalicAcid *float64 `json:"malic_acid"`
	YAN       *float64 `json:"yan"`
	Notes     *string  `json:"notes"`
}

// IntakeCreate is the composite creation payload: the root's own fields
// plus up to four child lists. Absent lists are treated as empty.
// CreatedByID is stamped by the handler from the authenticated user.
type IntakeCreate struct {
	BlockID     *uint64  `json:"block_id"`
	WeightKG    *float64 `json:"weight_kg"`
	Notes       *string  `json:"notes"`
	CreatedByID uint64   `json:"-"`

	Components []IntakeComponentCreate `json:"components"`
	Additions  []AdditionCreate        `json:"additions"`
	Fruits     []FruitCreate           `json:"fruits"`
	LabResults []LabResultCreate       `json:"lab_results"`
}

// IntakeComponentCreate carries one component row; Name is required.
type IntakeComponentCreate struct {
	Name     string   `json:"name"`
	WeightKG *float64 `json:"weight_kg"`
}

// AdditionCreate carries one addition row; Name is required.
type AdditionCreate struct {
	Name   string   `json:"name"`
	Amount *float64 `json:"amount"`
	Unit   *string  `json:"unit"`
}

// FruitCreate carries one fruit line; ComponentName is required.
type FruitCreate struct {
	ComponentName string   `json:"component_name"`
	VolumeLitres  *float64 `json:"volume_litres"`
}

// LabResultCreate carries one lab result row. All measurements are
// optional.
type LabResultCreate struct {
	Brix      *float64 `json:"brix"`
	PH        *float64 `json:"ph"`
	TA        *float64 `json:"ta"`
	VA        *float64 `json:"va"`
	RS        *float64 `json:"rs"`
	Alc       *float64 `json:"alc"`
	MalicAcid *float64 `json:"malic_acid"`
	YAN       *float64 `json:"yan"`
	Notes     *string  `json:"notes"`
}
