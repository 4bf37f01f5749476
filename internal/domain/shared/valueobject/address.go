package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// Address is a value object representing a physical address in the Indian
// format used for shipping. It is immutable - all operations return new
// Address instances.
type Address struct {
	line1   string
	line2   string
	city    string
	state   string
	pincode string
	country string
	phone   string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithLine2 sets the secondary address line
func WithLine2(line2 string) AddressOption {
	return func(a *Address) {
		a.line2 = strings.TrimSpace(line2)
	}
}

// WithCountry sets the country for the address
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// WithPhone sets the contact phone for the address
func WithPhone(phone string) AddressOption {
	return func(a *Address) {
		a.phone = strings.TrimSpace(phone)
	}
}

// NewAddress creates a new Address. Line1, city, state and pincode are
// required; line2, country and phone are optional. Country defaults to India.
func NewAddress(line1, city, state, pincode string, opts ...AddressOption) (Address, error) {
	line1 = strings.TrimSpace(line1)
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	pincode = strings.TrimSpace(pincode)

	if line1 == "" {
		return Address{}, fmt.Errorf("address line cannot be empty")
	}
	if len(line1) > 200 {
		return Address{}, fmt.Errorf("address line cannot exceed 200 characters")
	}
	if city == "" {
		return Address{}, fmt.Errorf("city cannot be empty")
	}
	if state == "" {
		return Address{}, fmt.Errorf("state cannot be empty")
	}
	if !pincodePattern.MatchString(pincode) {
		return Address{}, fmt.Errorf("invalid pincode: %q", pincode)
	}

	addr := Address{
		line1:   line1,
		city:    city,
		state:   state,
		pincode: pincode,
		country: "India",
	}

	for _, opt := range opts {
		opt(&addr)
	}

	if addr.country == "" {
		addr.country = "India"
	}

	return addr, nil
}

// MustNewAddress creates a new Address, panics on error
func MustNewAddress(line1, city, state, pincode string, opts ...AddressOption) Address {
	addr, err := NewAddress(line1, city, state, pincode, opts...)
	if err != nil {
		panic(err)
	}
	return addr
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

// Line1 returns the primary address line
func (a Address) Line1() string { return a.line1 }

// Line2 returns the secondary address line
func (a Address) Line2() string { return a.line2 }

// City returns the city
func (a Address) City() string { return a.city }

// State returns the state
func (a Address) State() string { return a.state }

// Pincode returns the postal pincode
func (a Address) Pincode() string { return a.pincode }

// Country returns the country
func (a Address) Country() string { return a.country }

// Phone returns the contact phone
func (a Address) Phone() string { return a.phone }

// IsEmpty returns true if the address has no data
func (a Address) IsEmpty() bool {
	return a.line1 == "" && a.city == "" && a.state == "" && a.pincode == ""
}

// IsComplete returns true when every field a courier registration needs is
// present: line1, city, state, pincode and phone.
func (a Address) IsComplete() bool {
	return a.line1 != "" && a.city != "" && a.state != "" && a.pincode != "" && a.phone != ""
}

// Equals returns true if both addresses are identical
func (a Address) Equals(other Address) bool {
	return a == other
}

// String returns a single-line representation
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.line1, a.line2, a.city, a.state, a.pincode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// addressDTO is the serialized form of Address
type addressDTO struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressDTO{
		Line1:   a.line1,
		Line2:   a.line2,
		City:    a.city,
		State:   a.state,
		Pincode: a.pincode,
		Country: a.country,
		Phone:   a.phone,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Fields are assigned directly;
// validation happens at the aggregate boundary via NewAddress.
func (a *Address) UnmarshalJSON(data []byte) error {
	var dto addressDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	a.line1 = dto.Line1
	a.line2 = dto.Line2
	a.city = dto.City
	a.state = dto.State
	a.pincode = dto.Pincode
	a.country = dto.Country
	a.phone = dto.Phone
	return nil
}

// Value implements driver.Valuer, storing the address as JSON
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	if len(data) == 0 {
		*a = Address{}
		return nil
	}
	return json.Unmarshal(data, a)
}
