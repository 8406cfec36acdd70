package kroger

import "encoding/json"

// Location is a store record returned by the locations endpoint.
//
// Only the location identifier is interpreted locally (it keys product
// search); every field the upstream sent is retained in Extra and
// reproduced on marshal, so the record passes through verbatim even when
// the upstream schema grows fields this client has never seen.
type Location struct {
	LocationID string `json:"locationId"`

	// Extra holds the complete upstream record, including LocationID.
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON captures the full upstream record and projects the known fields.
func (l *Location) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["locationId"]; ok {
		if err := json.Unmarshal(raw, &l.LocationID); err != nil {
			return err
		}
	}
	l.Extra = fields
	return nil
}

// MarshalJSON emits the upstream record unchanged.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Extra)
}

// Product is a read-only projection of a product search result.
//
// The typed fields cover the documented shape; Extra retains the complete
// upstream record so results round-trip verbatim.
type Product struct {
	ProductID     string  `json:"product_id"`
	Description   string  `json:"description"`
	Brand         string  `json:"brand,omitempty"`
	Price         float64 `json:"price"`
	AisleLocation string  `json:"aisle_location,omitempty"`
	UPC           string  `json:"upc,omitempty"`

	// Extra holds the complete upstream record, including the fields above.
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON captures the full upstream record and projects the known fields.
func (p *Product) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, dst := range map[string]any{
		"product_id":     &p.ProductID,
		"description":    &p.Description,
		"brand":          &p.Brand,
		"price":          &p.Price,
		"aisle_location": &p.AisleLocation,
		"upc":            &p.UPC,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return err
		}
	}
	p.Extra = fields
	return nil
}

// MarshalJSON emits the upstream record unchanged.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Extra)
}
