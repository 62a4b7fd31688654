package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"

	"github.com/Chetan2520/RathWale-Backend/internal/model"
	"github.com/Chetan2520/RathWale-Backend/internal/service"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

// Quantities are stored in 32-bit INTEGER columns, so the quantity tag caps
// them at math.MaxInt32.
const (
	maxPriceScale = 2
	maxPriceExp   = 12
)

var maxPrice = decimal.New(1, maxPriceExp)

type itemRequest struct {
	Name     string           `json:"name" validate:"required,notblank"`
	Price    *decimal.Decimal `json:"price" validate:"required,price"`
	Quantity *int             `json:"quantity" validate:"required,gte=0,lte=2147483647"`
}

// entryRequest is the body of POST and PUT /api/entries. A client-sent total
// is not part of it and is dropped by the decoder.
type entryRequest struct {
	CustomerName string        `json:"customerName" validate:"required,notblank"`
	BookingDate  string        `json:"bookingDate" validate:"required"`
	Items        []itemRequest `json:"items" validate:"required,dive"`
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && validPrice(d)
	})
	return v
}

// validPrice reports whether d is a non-negative amount below maxPrice with
// at most maxPriceScale decimal places. The exponent is checked first so
// that no comparison ever expands a value like 1e20000000.
func validPrice(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxPriceExp || exp < -64 {
		return false
	}
	if d.IsNegative() || d.Cmp(maxPrice) >= 0 {
		return false
	}
	return d.Equal(d.Truncate(maxPriceScale))
}

// decode reads a JSON body into dst and validates it. The returned error is
// safe to show to the client.
func (h *Handler) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationMessage(err)
	}
	return nil
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errInvalidBody
	}

	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "notblank":
		return fmt.Errorf("%s must not be blank", field)
	case "gte":
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Errorf("%s must be at most %s", field, fe.Param())
	case "price":
		return fmt.Errorf("%s must be between 0 and %s with at most %d decimal places",
			field, maxPrice.Sub(decimal.New(1, -maxPriceScale)), maxPriceScale)
	case "min":
		return fmt.Errorf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	}
	return fmt.Errorf("%s is invalid", field)
}

// parseBookingDate accepts a calendar date or an RFC 3339 timestamp and
// returns UTC midnight of that date. A timestamp keeps the calendar date of
// its own offset.
func parseBookingDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, errors.New("bookingDate must be YYYY-MM-DD or an RFC 3339 timestamp")
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func (req entryRequest) toInput() (service.EntryInput, error) {
	date, err := parseBookingDate(req.BookingDate)
	if err != nil {
		return service.EntryInput{}, err
	}

	items := make([]model.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = model.Item{Name: strings.TrimSpace(it.Name), Price: *it.Price, Quantity: *it.Quantity}
	}
	return service.EntryInput{
		CustomerName: strings.TrimSpace(req.CustomerName),
		BookingDate:  date,
		Items:        items,
	}, nil
}
