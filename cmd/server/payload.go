package main

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Simplici0/shadequote/internal/quotes"
)

// number accepts JSON numbers and numeric strings. Anything else, including
// malformed text, reads as zero, which the pricing engine treats as "not given".
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	*n = 0
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = number(v)
	return nil
}

// itemPayload is one line item as posted by the quoting form.
type itemPayload struct {
	Location         string `json:"location"`
	Product          string `json:"product"`
	Valance          string `json:"valance"`
	ValanceColor     string `json:"valance_color"`
	BottomRail       string `json:"bottom_rail"`
	Control          string `json:"control"`
	Fabric           string `json:"fabric"`
	FabricPrice      number `json:"fabric_price"`
	MotorPrice       number `json:"motor_price"`
	WidthInch        number `json:"width_inch"`
	HeightInch       number `json:"height_inch"`
	WidthM           number `json:"width_m"`
	HeightM          number `json:"height_m"`
	InstallationType string `json:"installation_type"`
	Rolling          string `json:"rolling"`
	Quantity         number `json:"quantity"`
}

func (p itemPayload) draft() quotes.ItemDraft {
	return quotes.ItemDraft{
		Location:         strings.TrimSpace(p.Location),
		Product:          strings.TrimSpace(p.Product),
		Valance:          strings.TrimSpace(p.Valance),
		ValanceColor:     strings.TrimSpace(p.ValanceColor),
		BottomRail:       strings.TrimSpace(p.BottomRail),
		Control:          strings.TrimSpace(p.Control),
		Fabric:           strings.TrimSpace(p.Fabric),
		FabricPrice:      float64(p.FabricPrice),
		MotorPrice:       float64(p.MotorPrice),
		WidthInch:        float64(p.WidthInch),
		HeightInch:       float64(p.HeightInch),
		WidthM:           float64(p.WidthM),
		HeightM:          float64(p.HeightM),
		InstallationType: strings.TrimSpace(p.InstallationType),
		Rolling:          strings.TrimSpace(p.Rolling),
		Quantity:         int(math.Trunc(float64(p.Quantity))),
	}
}

// quotePayload is either a single item with customer fields, or customer
// fields plus an items array. A top-level location applies to items without one.
type quotePayload struct {
	CustomerName string        `json:"customer_name"`
	Phone        string        `json:"phone"`
	Email        string        `json:"email"`
	Address      string        `json:"address"`
	Items        []itemPayload `json:"items"`
	itemPayload
}

func (p quotePayload) draft() quotes.Draft {
	d := quotes.Draft{
		Customer: quotes.Customer{
			Name:    strings.TrimSpace(p.CustomerName),
			Phone:   strings.TrimSpace(p.Phone),
			Email:   strings.TrimSpace(p.Email),
			Address: strings.TrimSpace(p.Address),
		},
	}

	if p.Items == nil {
		d.Items = []quotes.ItemDraft{p.itemPayload.draft()}
		return d
	}

	d.Items = make([]quotes.ItemDraft, 0, len(p.Items))
	for _, item := range p.Items {
		if strings.TrimSpace(item.Location) == "" {
			item.Location = p.Location
		}
		d.Items = append(d.Items, item.draft())
	}
	return d
}

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type quoteNumberPayload struct {
	QuoteNumber number `json:"quoteNumber"`
}
