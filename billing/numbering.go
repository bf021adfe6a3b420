package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/billing/models"
	"gorm.io/gorm"
)

// NextNumber allocates the next invoice number for the prefix, formatted as
// PREFIX-NNN with the suffix zero-padded to at least three digits. The first
// number for an unused prefix is PREFIX-001.
//
// All existing numbers for the prefix are scanned for the highest numeric
// suffix rather than relying on lexical ordering, which breaks down once the
// sequence passes 999. Must run inside the same transaction as the invoice
// insert so concurrent generations cannot allocate the same number.
func NextNumber(tx *gorm.DB, prefix string) (string, error) {
	var numbers []string
	err := tx.Model(&models.Invoice{}).
		Where("number LIKE ?", prefix+"-%").
		Pluck("number", &numbers).Error
	if err != nil {
		return "", fmt.Errorf("failed to query invoice numbers: %w", err)
	}

	highest := 0
	for _, number := range numbers {
		suffix := strings.TrimPrefix(number, prefix+"-")
		seq, err := strconv.Atoi(suffix)
		if err != nil || seq <= 0 {
			return "", &NumberingError{Number: number, Err: err}
		}
		if seq > highest {
			highest = seq
		}
	}

	return fmt.Sprintf("%s-%03d", prefix, highest+1), nil
}
