// Package pdf renders a printable invoice for one inspection case.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/ftrhpr/estimator-sub002/internal/analytics"
	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

// InvoiceRenderer turns a case into invoice PDF bytes.
type InvoiceRenderer struct {
	shopName    string
	shopAddress string
	shopPhone   string
}

func NewInvoiceRenderer(shopName, shopAddress, shopPhone string) *InvoiceRenderer {
	return &InvoiceRenderer{
		shopName:    shopName,
		shopAddress: shopAddress,
		shopPhone:   shopPhone,
	}
}

// Render produces the PDF document for a case. Line amounts use the same
// revenue rules the analytics engine applies, so the invoice total and the
// dashboard agree.
func (r *InvoiceRenderer) Render(c *domain.Case) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice: "+invoiceNumber(c), props.Text{Top: 0}),
			text.New("Date: "+c.CreatedAt, props.Text{Top: 4}),
			text.New("Vehicle: "+vehicleLine(c), props.Text{Top: 8}),
			text.New("Plate: "+c.PlateNumber, props.Text{Top: 12}),
		),
		col.New(6).Add(
			text.New(r.shopName, props.Text{Style: fontstyle.Bold}),
			text.New(r.shopAddress, props.Text{Top: 5}),
			text.New(r.shopPhone, props.Text{Top: 9}),
		),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(c.CustomerName, props.Text{Top: 5}),
			text.New(c.CustomerPhone, props.Text{Top: 9}),
		),
		col.New(6),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	var servicesTotal, partsTotal float64
	for _, s := range c.Services {
		amount := analytics.ServiceLineRevenue(s)
		servicesTotal += amount
		m.AddRow(8,
			text.NewCol(6, serviceLabel(s), props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", lineQty(s.Count)), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(s.UnitRate), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(amount), props.Text{Size: 9, Align: align.Right}),
		)
	}
	for _, p := range c.Parts {
		amount := analytics.PartRevenue(p)
		partsTotal += amount
		m.AddRow(8,
			text.NewCol(6, p.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", lineQty(p.Quantity)), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(p.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(amount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Services", props.Text{Size: 9}),
		text.NewCol(2, money(servicesTotal), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Parts", props.Text{Size: 9}),
		text.NewCol(2, money(partsTotal), props.Text{Size: 9, Align: align.Right}),
	)
	if c.IncludeVAT {
		m.AddRow(10,
			col.New(8),
			text.NewCol(2, "VAT", props.Text{Size: 9}),
			text.NewCol(2, money(c.VATAmount), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, money(c.TotalPrice), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func invoiceNumber(c *domain.Case) string {
	if c.CPanelInvoiceID != "" {
		return c.CPanelInvoiceID
	}
	return c.ID
}

func vehicleLine(c *domain.Case) string {
	if c.VehicleMake == "" {
		return c.VehicleModel
	}
	if c.VehicleModel == "" {
		return c.VehicleMake
	}
	return c.VehicleMake + " " + c.VehicleModel
}

func serviceLabel(s domain.ServiceLine) string {
	if s.NameKa != "" {
		return s.NameKa
	}
	return s.NameEn
}

func lineQty(count int) int {
	if count < 1 {
		return 1
	}
	return count
}

func money(v float64) string {
	return fmt.Sprintf("%.2f GEL", analytics.RoundCurrency(v))
}
