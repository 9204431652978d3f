package render

import "time"

// BillInput is the deterministic input used to render a customer bill.
type BillInput struct {
	Business BusinessView
	Customer CustomerView
	Bill     BillView
	Lines    []LineView
}

type BusinessView struct {
	Name    string
	Address string
	Phone   string
}

type CustomerView struct {
	Name    string
	Address string
	Phone   string
}

type BillView struct {
	Date           time.Time
	BillDay        int
	DueAmount      string
	PendingJar     int64
	PendingCapsule int64
}

type LineView struct {
	Description string
	Quantity    int64
	Rate        string
	Amount      string
}

type Renderer interface {
	RenderHTML(input BillInput) (string, error)
}
