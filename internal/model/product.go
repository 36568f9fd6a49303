package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/storelink/products-api/pkg/validator"
)

const (
	StatusDisabled = 0
	StatusEnabled  = 1
)

// TimeLayout is the ISO-8601 layout used for every timestamp on the wire.
const TimeLayout = validator.ISO8601Layout

// Product is the persisted product record. The repository is the only
// component that stamps UpdatedAt and DeletedAt; everything else treats the
// struct as a value passed between layers.
type Product struct {
	ID               string
	Name             string
	LocationID       string
	Price            string
	DiscountPrice    *string
	DiscountFrom     *time.Time
	DiscountTo       *time.Time
	Status           int
	Attributes       map[string]any
	Description      string
	UniqueIdentifier string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
}

// productInput is the validated shape of a creation payload.
type productInput struct {
	Name             string  `validate:"required,min=4,max=200"`
	LocationID       string  `validate:"required,uuid4"`
	Price            string  `validate:"required,numeric"`
	DiscountPrice    *string `validate:"omitempty,numeric"`
	DiscountFrom     *string `validate:"omitempty,iso8601"`
	DiscountTo       *string `validate:"omitempty,iso8601"`
	Status           *int    `validate:"required,oneof=0 1"`
	UniqueIdentifier string  `validate:"required,min=4,max=254"`
}

// inputFieldNames maps productInput struct fields to their wire names.
var inputFieldNames = map[string]string{
	"Name":             "name",
	"LocationID":       "locationId",
	"Price":            "price",
	"DiscountPrice":    "discountPrice",
	"DiscountFrom":     "discountFrom",
	"DiscountTo":       "discountTo",
	"Status":           "status",
	"UniqueIdentifier": "uniqueIdentifier",
}

// The rule set is fixed at startup; the validator itself is immutable and
// safe for concurrent use, so no per-request construction is needed.
var inputValidator = mustValidator()

func mustValidator() *validator.DefaultValidator {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// New builds a Product from a decoded JSON body. Keys are matched
// case-insensitively. All violations are collected into a single
// *ValidationError; on success the product carries a freshly generated id
// and creation timestamp.
func New(data map[string]any) (*Product, error) {
	body := lowerKeys(data)
	verr := &ValidationError{}

	var in productInput
	in.Name, _ = stringField(body, "name", verr)
	in.LocationID, _ = stringField(body, "locationid", verr)
	in.Price, _ = stringField(body, "price", verr)
	in.DiscountPrice = optionalStringField(body, "discountprice", "discountPrice", verr)
	in.DiscountFrom = optionalStringField(body, "discountfrom", "discountFrom", verr)
	in.DiscountTo = optionalStringField(body, "discountto", "discountTo", verr)
	in.Status = intField(body, "status", "status", verr)
	in.UniqueIdentifier, _ = stringField(body, "uniqueidentifier", verr)

	attributes := map[string]any{}
	if raw, ok := body["attributes"]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			verr.Add("attributes", "must be an object")
		} else {
			attributes = m
		}
	}

	description := ""
	if raw, ok := body["description"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			verr.Add("description", "must be a string")
		} else {
			description = s
		}
	}

	if err := inputValidator.Validate(in); err != nil {
		var fieldErrs govalidator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validate product input: %w", err)
		}
		for _, fe := range fieldErrs {
			name, ok := inputFieldNames[fe.StructField()]
			if !ok {
				name = fe.StructField()
			}
			if verr.Has(name) {
				// a type violation already produced a message for this field
				continue
			}
			verr.Add(name, validator.ValidationErrorMessage(fe))
		}
	}

	if !verr.Empty() {
		return nil, verr
	}

	p := &Product{
		ID:               uuid.NewString(),
		Name:             in.Name,
		LocationID:       in.LocationID,
		Price:            in.Price,
		DiscountPrice:    in.DiscountPrice,
		Status:           *in.Status,
		Attributes:       attributes,
		Description:      description,
		UniqueIdentifier: in.UniqueIdentifier,
		CreatedAt:        time.Now(),
	}
	if in.DiscountFrom != nil {
		t, err := time.Parse(TimeLayout, *in.DiscountFrom)
		if err != nil {
			return nil, fmt.Errorf("parse discountFrom: %w", err)
		}
		p.DiscountFrom = &t
	}
	if in.DiscountTo != nil {
		t, err := time.Parse(TimeLayout, *in.DiscountTo)
		if err != nil {
			return nil, fmt.Errorf("parse discountTo: %w", err)
		}
		p.DiscountTo = &t
	}

	return p, nil
}

// Map serializes the product for the wire. Every key is always present;
// timestamps render in the ISO-8601 layout or as null.
func (p *Product) Map() map[string]any {
	return map[string]any{
		"id":               p.ID,
		"name":             p.Name,
		"locationId":       p.LocationID,
		"price":            p.Price,
		"discountPrice":    stringOrNil(p.DiscountPrice),
		"discountFrom":     timeOrNil(p.DiscountFrom),
		"discountTo":       timeOrNil(p.DiscountTo),
		"status":           p.Status,
		"attributes":       p.Attributes,
		"description":      p.Description,
		"uniqueIdentifier": p.UniqueIdentifier,
		"createdAt":        p.CreatedAt.Format(TimeLayout),
		"updatedAt":        timeOrNil(p.UpdatedAt),
		"deletedAt":        timeOrNil(p.DeletedAt),
	}
}

// ApplyChanges applies a partial update. Recognized keys are matched
// case-insensitively; unrecognized keys are silently ignored. The unique
// identifier is not patchable. Nothing is applied unless every provided
// value is well-formed.
func (p *Product) ApplyChanges(changes map[string]any) error {
	verr := &ValidationError{}
	next := *p

	for key, value := range changes {
		switch strings.ToLower(key) {
		case "name":
			if s, ok := value.(string); ok {
				next.Name = s
			} else {
				verr.Add("name", "must be a string")
			}
		case "locationid":
			if s, ok := value.(string); ok {
				next.LocationID = s
			} else {
				verr.Add("locationId", "must be a string")
			}
		case "price":
			if s, ok := value.(string); ok {
				next.Price = s
			} else {
				verr.Add("price", "must be a string")
			}
		case "discountprice":
			if s, ok := value.(string); ok {
				next.DiscountPrice = &s
			} else {
				verr.Add("discountPrice", "must be a string")
			}
		case "discountfrom":
			if t, ok := parseTimeValue(value); ok {
				next.DiscountFrom = t
			} else {
				verr.Add("discountFrom", "must be an ISO-8601 timestamp")
			}
		case "discountto":
			if t, ok := parseTimeValue(value); ok {
				next.DiscountTo = t
			} else {
				verr.Add("discountTo", "must be an ISO-8601 timestamp")
			}
		case "status":
			if n, ok := intValue(value); ok && (n == StatusEnabled || n == StatusDisabled) {
				next.Status = n
			} else {
				verr.Add("status", "must be 0 or 1")
			}
		case "attributes":
			if m, ok := value.(map[string]any); ok {
				next.Attributes = m
			} else {
				verr.Add("attributes", "must be an object")
			}
		case "description":
			if s, ok := value.(string); ok {
				next.Description = s
			} else {
				verr.Add("description", "must be a string")
			}
		}
	}

	if !verr.Empty() {
		return verr
	}

	*p = next
	return nil
}

func lowerKeys(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[strings.ToLower(k)] = v
	}
	return out
}

func stringField(body map[string]any, key string, verr *ValidationError) (string, bool) {
	raw, ok := body[key]
	if !ok || raw == nil {
		// leave the zero value for the "required" rule to report
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		name, mapped := wireName(key)
		if mapped {
			verr.Add(name, "must be a string")
		}
		return "", false
	}
	return s, true
}

func optionalStringField(body map[string]any, key, name string, verr *ValidationError) *string {
	raw, ok := body[key]
	if !ok || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		verr.Add(name, "must be a string")
		return nil
	}
	return &s
}

func intField(body map[string]any, key, name string, verr *ValidationError) *int {
	raw, ok := body[key]
	if !ok || raw == nil {
		return nil
	}
	n, ok := intValue(raw)
	if !ok {
		verr.Add(name, "must be an integer")
		return nil
	}
	return &n
}

// intValue accepts the numeric representations a decoded JSON body can carry.
func intValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func parseTimeValue(raw any) (*time.Time, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func wireName(lowerKey string) (string, bool) {
	for _, name := range inputFieldNames {
		if strings.ToLower(name) == lowerKey {
			return name, true
		}
	}
	return lowerKey, false
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(TimeLayout)
}
