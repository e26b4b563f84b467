package analysis

import (
	"fmt"

	"github.com/yourusername/risk-tracker/internal/models"
)

// CalculateReturns drops incomplete price rows and converts the table to
// period-over-period fractional returns
func CalculateReturns(prices *models.PriceTable) (*models.ReturnTable, error) {
	if prices == nil {
		return nil, fmt.Errorf("calculate returns: %w: nil price table", ErrInsufficientData)
	}
	returns, err := prices.DropIncomplete().Returns()
	if err != nil {
		return nil, fmt.Errorf("calculate returns: %w", err)
	}
	return returns, nil
}
