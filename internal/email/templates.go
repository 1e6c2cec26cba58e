package email

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CartLine is one line of a checkout email
type CartLine struct {
	Title        string
	VariantLabel string
	Quantity     int
	UnitPrice    string
}

// BuildCheckoutStartedBody builds the HTML body for the checkout started
// email. The redirect URL lets a shopper resume payment from their inbox
// if they closed the hosted page.
func BuildCheckoutStartedBody(redirectURL string, lines []CartLine) string {
	var linesHTML strings.Builder
	for _, line := range lines {
		title := line.Title
		if line.VariantLabel != "" {
			title = fmt.Sprintf("%s (%s)", title, line.VariantLabel)
		}
		linesHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">$%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">$%s</td>
			</tr>`,
			title,
			line.Quantity,
			line.UnitPrice,
			lineTotal(line.UnitPrice, line.Quantity),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Your order is almost ready</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">We have handed your cart to our payment provider. Complete your payment to place the order.</p>

		<h2 style="font-size: 18px; border-bottom: 2px solid #667eea; padding-bottom: 10px;">Your cart</h2>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Item</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Price</th>
					<th style="padding: 12px; text-align: right;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<div style="text-align: center; margin: 30px 0;">
			<a href="%s" style="background: #667eea; color: white; padding: 14px 40px; border-radius: 5px; text-decoration: none; font-weight: bold;">Complete payment</a>
		</div>

		<p style="font-size: 13px; color: #999;">If you did not start this checkout, you can safely ignore this email.</p>
	</div>
</body>
</html>`, linesHTML.String(), redirectURL)
}

func lineTotal(unitPrice string, quantity int) string {
	price, err := decimal.NewFromString(unitPrice)
	if err != nil {
		return unitPrice
	}
	return price.Mul(decimal.NewFromInt(int64(quantity))).StringFixed(2)
}
