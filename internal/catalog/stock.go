package catalog

type Badge string

const (
	BadgeDanger  Badge = "danger"
	BadgeWarning Badge = "warning"
	BadgeSuccess Badge = "success"
)

// StockBadge is the display colour of a stock quantity.
func StockBadge(qty int) Badge {
	switch {
	case qty <= OutOfStockThreshold:
		return BadgeDanger
	case qty <= LowStockThreshold:
		return BadgeWarning
	default:
		return BadgeSuccess
	}
}
