package repository

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexNumber decodes a JSON number or a numeric string. Anything else is 0.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		b = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		f = 0
	}
	*n = flexNumber(f)
	return nil
}

// flexString decodes a JSON string or number as text.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	*s = flexString(b)
	return nil
}

type wireBooking struct {
	ID         flexString `json:"id"`
	Client     flexString `json:"client"`
	Service    flexString `json:"service"`
	Date       flexString `json:"date"`
	Time       flexString `json:"time"`
	Price      flexNumber `json:"price"`
	Status     flexString `json:"status"`
	PaidStatus flexString `json:"paidStatus"`
}

type wireService struct {
	Name     flexString `json:"name"`
	Duration flexNumber `json:"duration"`
	Price    flexNumber `json:"price"`
}

type wireBlockout struct {
	Type  flexString `json:"type"`
	Start flexString `json:"start"`
	End   flexString `json:"end"`
}

// wireRange is a stored ["HH:MM","HH:MM"] pair.
type wireRange [2]string
