package domain

import (
	"strconv"
	"strings"
	"time"
)

// Condition describes how a car entered the market.
type Condition string

const (
	ConditionBrandNew     Condition = "Brand New"
	ConditionTokunbo      Condition = "Tokunbo"
	ConditionNigerianUsed Condition = "Nigerian Used"
)

// Transmission is the gearbox type.
type Transmission string

const (
	TransmissionAutomatic Transmission = "Automatic"
	TransmissionManual    Transmission = "Manual"
)

// Status is the sale state of a listing.
type Status string

const (
	StatusForSale Status = "For Sale"
	StatusSold    Status = "Sold"
)

// Car is a single listing record. ID, CreatedAt and OwnerID are assigned
// when the record is created and never change afterwards; everything else
// is replaceable through an update.
type Car struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	Brand        string       `json:"brand" bson:"brand"`
	Model        string       `json:"model" bson:"model"`
	Year         int          `json:"year" bson:"year"`
	Price        float64      `json:"price" bson:"price"`
	Mileage      float64      `json:"mileage" bson:"mileage"`
	Color        string       `json:"color" bson:"color"`
	VIN          string       `json:"vin" bson:"vin"`
	ImageURL     string       `json:"imageUrl" bson:"imageUrl"`
	Condition    Condition    `json:"condition" bson:"condition"`
	Transmission Transmission `json:"transmission" bson:"transmission"`
	Status       Status       `json:"status" bson:"status"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
	OwnerID      string       `json:"ownerId" bson:"ownerId"`
}

// Fields is the mutable portion of a Car: what a create or update request
// carries. Identity and provenance (id, createdAt, ownerId) are stamped
// elsewhere.
type Fields struct {
	Brand        string       `json:"brand" bson:"brand"`
	Model        string       `json:"model" bson:"model"`
	Year         int          `json:"year" bson:"year"`
	Price        float64      `json:"price" bson:"price"`
	Mileage      float64      `json:"mileage" bson:"mileage"`
	Color        string       `json:"color" bson:"color"`
	VIN          string       `json:"vin" bson:"vin"`
	ImageURL     string       `json:"imageUrl" bson:"imageUrl"`
	Condition    Condition    `json:"condition" bson:"condition"`
	Transmission Transmission `json:"transmission" bson:"transmission"`
	Status       Status       `json:"status" bson:"status"`
}

// CarInput is the form payload as the operator typed it. Numeric fields
// arrive as text and are coerced during validation.
type CarInput struct {
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         string `json:"year"`
	Price        string `json:"price"`
	Mileage      string `json:"mileage"`
	Color        string `json:"color"`
	VIN          string `json:"vin"`
	ImageURL     string `json:"imageUrl"`
	Condition    string `json:"condition"`
	Transmission string `json:"transmission"`
	Status       string `json:"status"`
}

// Validate coerces and checks the input, returning the typed mutable fields.
// Color and VIN are optional; duplicate VINs are deliberately allowed.
// The numeric rules are advisory, client-facing checks: the store itself
// enforces nothing.
func (in CarInput) Validate() (Fields, error) {
	verr := &ValidationError{Fields: map[string]string{}}

	if strings.TrimSpace(in.Brand) == "" {
		verr.Fields["brand"] = "brand is required"
	}
	if strings.TrimSpace(in.Model) == "" {
		verr.Fields["model"] = "model is required"
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		verr.Fields["imageUrl"] = "imageUrl is required"
	}

	year, err := strconv.Atoi(strings.TrimSpace(in.Year))
	if err != nil {
		verr.Fields["year"] = "year must be a number"
	} else if year < 1000 || year > 9999 {
		verr.Fields["year"] = "year must be a 4-digit number"
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil {
		verr.Fields["price"] = "price must be a number"
	} else if price < 0 {
		verr.Fields["price"] = "price cannot be negative"
	}

	// Mileage is optional; an empty field means zero.
	var mileage float64
	if s := strings.TrimSpace(in.Mileage); s != "" {
		mileage, err = strconv.ParseFloat(s, 64)
		if err != nil {
			verr.Fields["mileage"] = "mileage must be a number"
		} else if mileage < 0 {
			verr.Fields["mileage"] = "mileage cannot be negative"
		}
	}

	condition, ok := parseCondition(in.Condition)
	if !ok {
		verr.Fields["condition"] = "unknown condition"
	}
	transmission, ok := parseTransmission(in.Transmission)
	if !ok {
		verr.Fields["transmission"] = "unknown transmission"
	}
	status, ok := parseStatus(in.Status)
	if !ok {
		verr.Fields["status"] = "unknown status"
	}

	if len(verr.Fields) > 0 {
		return Fields{}, verr
	}

	return Fields{
		Brand:        strings.TrimSpace(in.Brand),
		Model:        strings.TrimSpace(in.Model),
		Year:         year,
		Price:        price,
		Mileage:      mileage,
		Color:        strings.TrimSpace(in.Color),
		VIN:          strings.TrimSpace(in.VIN),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Condition:    condition,
		Transmission: transmission,
		Status:       status,
	}, nil
}

// InputFromCar converts a stored record back into form shape. Used when an
// edit draft is opened from the current feed snapshot.
func InputFromCar(car Car) CarInput {
	return CarInput{
		Brand:        car.Brand,
		Model:        car.Model,
		Year:         strconv.Itoa(car.Year),
		Price:        strconv.FormatFloat(car.Price, 'f', -1, 64),
		Mileage:      strconv.FormatFloat(car.Mileage, 'f', -1, 64),
		Color:        car.Color,
		VIN:          car.VIN,
		ImageURL:     car.ImageURL,
		Condition:    string(car.Condition),
		Transmission: string(car.Transmission),
		Status:       string(car.Status),
	}
}

// Empty selector values fall back to the form defaults.

func parseCondition(s string) (Condition, bool) {
	switch Condition(s) {
	case ConditionBrandNew, ConditionTokunbo, ConditionNigerianUsed:
		return Condition(s), true
	case "":
		return ConditionTokunbo, true
	}
	return "", false
}

func parseTransmission(s string) (Transmission, bool) {
	switch Transmission(s) {
	case TransmissionAutomatic, TransmissionManual:
		return Transmission(s), true
	case "":
		return TransmissionAutomatic, true
	}
	return "", false
}

func parseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusForSale, StatusSold:
		return Status(s), true
	case "":
		return StatusForSale, true
	}
	return "", false
}
