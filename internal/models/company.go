package models

import (
	"fmt"
	"time"
)

// Segment classifies a company into a logistics sub-sector. The set is
// closed: anything outside Segments() is rejected at the API boundary.
type Segment string

const (
	SegmentPorts           Segment = "PORTS"
	SegmentShipping        Segment = "SHIPPING"
	SegmentRoadsHighways   Segment = "ROADS & HIGHWAYS"
	SegmentContainer       Segment = "CONTAINER"
	SegmentGeneralLogistic Segment = "GENERAL LOGISTICS"
	SegmentParcelExpress   Segment = "PARCEL & EXPRESS"
)

// Segments returns the closed set of valid segments in display order.
func Segments() []Segment {
	return []Segment{
		SegmentPorts,
		SegmentShipping,
		SegmentRoadsHighways,
		SegmentContainer,
		SegmentGeneralLogistic,
		SegmentParcelExpress,
	}
}

// Valid reports whether s is a member of the closed segment set.
func (s Segment) Valid() bool {
	for _, seg := range Segments() {
		if s == seg {
			return true
		}
	}
	return false
}

// ParseSegment validates a raw string against the closed segment set.
func ParseSegment(raw string) (Segment, error) {
	s := Segment(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid segment %q", raw)
	}
	return s, nil
}

// Company is a user-registered listed company tracked on the dashboard.
type Company struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Ticker    string    `json:"ticker"`
	Segment   Segment   `json:"segment"`
	CreatedAt time.Time `json:"created_at"`
}
