package xmlship

import "errors"

var (
	// ErrNoData signals that the collection returned zero records.
	ErrNoData = errors.New("no data found")
	// ErrNoRecords indicates that an empty record list was passed to the encoder.
	ErrNoRecords = errors.New("xmlship: no records to encode")
	// ErrElementNameRequired is returned when an element name is empty.
	ErrElementNameRequired = errors.New("xmlship: element name is required")
	// ErrInvalidElementName is returned when a name cannot be used as an XML element.
	ErrInvalidElementName = errors.New("xmlship: invalid element name")
	// ErrEndpointRequired indicates that no endpoint was supplied or configured.
	ErrEndpointRequired = errors.New("xmlship: endpoint is required")
)
